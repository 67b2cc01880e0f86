package procurement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-erp/inkwell/internal/platform/httpx"
	"github.com/inkwell-erp/inkwell/internal/rbac"
	internalShared "github.com/inkwell-erp/inkwell/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/pos", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny("view purchase order"))
			r.Get("/", h.ListPOs)
			r.Get("/{id}", h.ShowPO)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("create purchase order"))
			r.Post("/", h.CreatePO)
			r.Post("/{id}/submit", h.SubmitPO)
			r.Post("/{id}/cancel", h.CancelPO)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("approve purchase order"))
			r.Post("/{id}/approve", h.ApprovePO)
		})
	})
	r.Route("/grns", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny("view goods receipt"))
			r.Get("/", h.ListGRNs)
			r.Get("/{id}", h.ShowGRN)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("create goods receipt"))
			r.Post("/", h.CreateGRN)
			r.Post("/{id}/cancel", h.CancelGRN)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("post goods receipt"))
			r.Post("/{id}/post", h.PostGRN)
		})
	})
}

// POLineRequest carries one order line.
type POLineRequest struct {
	BookID      int64   `json:"book_id" validate:"required,gt=0"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	DiscountPct float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	TaxPct      float64 `json:"tax_pct" validate:"gte=0"`
	Note        string  `json:"note"`
}

// CreatePORequest is the PO creation payload.
type CreatePORequest struct {
	Number       string          `json:"number"`
	SupplierID   int64           `json:"supplier_id" validate:"required,gt=0"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	ExpectedDate string          `json:"expected_date"`
	Note         string          `json:"note"`
	Lines        []POLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// GRNLineRequest carries one received line.
type GRNLineRequest struct {
	BookID   int64   `json:"book_id" validate:"required,gt=0"`
	Qty      float64 `json:"qty" validate:"required,gt=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

// CreateGRNRequest is the GRN creation payload.
type CreateGRNRequest struct {
	POID       int64            `json:"po_id" validate:"required,gt=0"`
	BranchID   int64            `json:"branch_id" validate:"required,gt=0"`
	Number     string           `json:"number"`
	ReceivedAt string           `json:"received_at"`
	Note       string           `json:"note"`
	Lines      []GRNLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) ListPOs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(q.Get("page"), q.Get("limit"))
	filters := ListFilters{
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if v := q.Get("supplier_id"); v != "" {
		filters.SupplierID, _ = strconv.ParseInt(v, 10, 64)
	}
	items, total, err := h.service.ListPurchaseOrders(r.Context(), limit, (page-1)*limit, filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []POListItem{}
	}
	httpx.OK(w, map[string]any{
		"items":      items,
		"pagination": internalShared.NewPagination(page, limit, total),
	})
}

func (h *Handler) ShowPO(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	po, lines, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if lines == nil {
		lines = []POLine{}
	}
	httpx.OK(w, map[string]any{"po": po, "lines": lines})
}

func (h *Handler) CreatePO(w http.ResponseWriter, r *http.Request) {
	var req CreatePORequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreatePOInput{
		Number:     req.Number,
		SupplierID: req.SupplierID,
		Currency:   req.Currency,
		Note:       req.Note,
	}
	if req.ExpectedDate != "" {
		t, err := time.Parse("2006-01-02", req.ExpectedDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "expected_date must be YYYY-MM-DD")
			return
		}
		input.ExpectedDate = t
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, POLineInput{
			BookID:      line.BookID,
			Qty:         line.Qty,
			Price:       line.Price,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
			Note:        line.Note,
		})
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, po)
}

func (h *Handler) SubmitPO(w http.ResponseWriter, r *http.Request) {
	h.transitionPO(w, r, h.service.SubmitPurchaseOrder)
}

func (h *Handler) ApprovePO(w http.ResponseWriter, r *http.Request) {
	h.transitionPO(w, r, h.service.ApprovePurchaseOrder)
}

func (h *Handler) CancelPO(w http.ResponseWriter, r *http.Request) {
	h.transitionPO(w, r, h.service.CancelPurchaseOrder)
}

func (h *Handler) transitionPO(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id, rbac.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) ListGRNs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(q.Get("page"), q.Get("limit"))
	filters := ListFilters{
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if v := q.Get("supplier_id"); v != "" {
		filters.SupplierID, _ = strconv.ParseInt(v, 10, 64)
	}
	items, total, err := h.service.ListGoodsReceipts(r.Context(), limit, (page-1)*limit, filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []GRNListItem{}
	}
	httpx.OK(w, map[string]any{
		"items":      items,
		"pagination": internalShared.NewPagination(page, limit, total),
	})
}

func (h *Handler) ShowGRN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	grn, lines, err := h.service.GetGoodsReceipt(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if lines == nil {
		lines = []GRNLine{}
	}
	httpx.OK(w, map[string]any{"grn": grn, "lines": lines})
}

func (h *Handler) CreateGRN(w http.ResponseWriter, r *http.Request) {
	var req CreateGRNRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateGRNInput{
		POID:     req.POID,
		BranchID: req.BranchID,
		Number:   req.Number,
		Note:     req.Note,
	}
	if req.ReceivedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "received_at must be RFC3339")
			return
		}
		input.ReceivedAt = t
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, GRNLineInput{BookID: line.BookID, Qty: line.Qty, UnitCost: line.UnitCost})
	}
	grn, err := h.service.CreateGoodsReceipt(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, grn)
}

func (h *Handler) PostGRN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.PostGoodsReceipt(r.Context(), id, rbac.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) CancelGRN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.CancelGoodsReceipt(r.Context(), id, rbac.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", "document status does not allow this action")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, internalShared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Already Processed", "this document has already been posted")
	default:
		h.logger.Error("procurement handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return 0, false
	}
	return id, true
}

func pageParams(pageRaw, limitRaw string) (int, int) {
	page, _ := strconv.Atoi(pageRaw)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitRaw)
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
