package app

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-erp/inkwell/internal/ar"
	"github.com/inkwell-erp/inkwell/internal/inventory"
	"github.com/inkwell-erp/inkwell/internal/masterdata/books"
	"github.com/inkwell-erp/inkwell/internal/masterdata/customers"
	"github.com/inkwell-erp/inkwell/internal/masterdata/departments"
	"github.com/inkwell-erp/inkwell/internal/masterdata/publishers"
	"github.com/inkwell-erp/inkwell/internal/masterdata/suppliers"
	"github.com/inkwell-erp/inkwell/internal/observability"
	"github.com/inkwell-erp/inkwell/internal/procurement"
	"github.com/inkwell-erp/inkwell/internal/rbac"
	"github.com/inkwell-erp/inkwell/internal/reports"
	"github.com/inkwell-erp/inkwell/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	RBACHandler        *rbac.Handler
	BooksHandler       *books.Handler
	CustomersHandler   *customers.Handler
	SuppliersHandler   *suppliers.Handler
	PublishersHandler  *publishers.Handler
	DepartmentsHandler *departments.Handler
	InventoryHandler   *inventory.Handler
	ProcurementHandler *procurement.Handler
	ARHandler          *ar.Handler
	ReportsHandler     *reports.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Inkwell defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Roles, users and permissions mount at the root so the assignment
	// screens can consume /roles, /users and /permissions directly.
	params.RBACHandler.MountRoutes(r)

	r.Route("/books", params.BooksHandler.MountRoutes)
	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
	r.Route("/publishers", params.PublishersHandler.MountRoutes)
	r.Route("/departments", params.DepartmentsHandler.MountRoutes)
	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/procurement", params.ProcurementHandler.MountRoutes)
	r.Route("/ar", params.ARHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
