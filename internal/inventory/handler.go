package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-erp/inkwell/internal/platform/httpx"
	"github.com/inkwell-erp/inkwell/internal/rbac"
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
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("view stock"))
		r.Get("/card", h.StockCard)
		r.Get("/balance", h.Balance)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("adjust stock"))
		r.Post("/adjustments", h.PostAdjustment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("transfer stock"))
		r.Post("/transfers", h.PostTransfer)
	})
}

// AdjustmentRequest is the adjustment payload.
type AdjustmentRequest struct {
	Code     string  `json:"code"`
	BranchID int64   `json:"branch_id" validate:"required,gt=0"`
	BookID   int64   `json:"book_id" validate:"required,gt=0"`
	Qty      float64 `json:"qty" validate:"required"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
	Note     string  `json:"note"`
}

// TransferRequest is the branch transfer payload.
type TransferRequest struct {
	Code      string  `json:"code"`
	BookID    int64   `json:"book_id" validate:"required,gt=0"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
	SrcBranch int64   `json:"src_branch_id" validate:"required,gt=0"`
	DstBranch int64   `json:"dst_branch_id" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
	Note      string  `json:"note"`
}

func (h *Handler) StockCard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	branchID, _ := strconv.ParseInt(q.Get("branch_id"), 10, 64)
	bookID, _ := strconv.ParseInt(q.Get("book_id"), 10, 64)
	if branchID <= 0 || bookID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "branch_id and book_id are required")
		return
	}
	filter := StockCardFilter{BranchID: branchID, BookID: bookID}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	entries, err := h.service.GetStockCard(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if entries == nil {
		entries = []StockCardEntry{}
	}
	httpx.OK(w, entries)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	branchID, _ := strconv.ParseInt(q.Get("branch_id"), 10, 64)
	bookID, _ := strconv.ParseInt(q.Get("book_id"), 10, 64)
	if branchID <= 0 || bookID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "branch_id and book_id are required")
		return
	}
	balance, err := h.service.GetBalance(r.Context(), branchID, bookID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{
		"branch_id": balance.BranchID,
		"book_id":   balance.BookID,
		"qty":       balance.Qty,
		"avg_cost":  balance.AvgCost,
	})
}

func (h *Handler) PostAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.PostAdjustment(r.Context(), AdjustmentInput{
		Code:      req.Code,
		BranchID:  req.BranchID,
		BookID:    req.BookID,
		Qty:       req.Qty,
		UnitCost:  req.UnitCost,
		Note:      req.Note,
		ActorID:   rbac.UserIDFromContext(r.Context()),
		RefModule: "INVENTORY",
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, entry)
}

func (h *Handler) PostTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	outCard, inCard, err := h.service.PostTransfer(r.Context(), TransferInput{
		Code:      req.Code,
		BookID:    req.BookID,
		Qty:       req.Qty,
		SrcBranch: req.SrcBranch,
		DstBranch: req.DstBranch,
		UnitCost:  req.UnitCost,
		Note:      req.Note,
		ActorID:   rbac.UserIDFromContext(r.Context()),
		RefModule: "INVENTORY",
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, map[string]any{"out": outCard, "in": inCard})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Negative Stock", "movement would drive stock below zero")
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidUnitCost):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
