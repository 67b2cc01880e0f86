package ar

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
	r.Route("/advances", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny("view receipt"))
			r.Get("/", h.ListAdvances)
			r.Get("/{id}", h.ShowAdvance)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("create receipt"))
			r.Post("/", h.CreateAdvance)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("void receipt"))
			r.Post("/{id}/void", h.VoidAdvance)
		})
	})
	r.Route("/receipts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny("view receipt"))
			r.Get("/", h.ListReceipts)
			r.Get("/{id}", h.ShowReceipt)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("create receipt"))
			r.Post("/", h.CreateReceipt)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll("void receipt"))
			r.Post("/{id}/void", h.VoidReceipt)
		})
	})
}

// AdvanceRequest is the advance creation payload.
type AdvanceRequest struct {
	Number     string  `json:"number"`
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Method     string  `json:"method"`
	Note       string  `json:"note"`
	ReceivedAt string  `json:"received_at"`
}

// ReceiptRequest is the receipt creation payload.
type ReceiptRequest struct {
	Number         string  `json:"number"`
	CustomerID     int64   `json:"customer_id" validate:"required,gt=0"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	AdvanceID      int64   `json:"advance_id" validate:"omitempty,gt=0"`
	AdvanceApplied float64 `json:"advance_applied" validate:"gte=0"`
	Method         string  `json:"method"`
	Note           string  `json:"note"`
	ReceivedAt     string  `json:"received_at"`
}

func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	advances, err := h.service.ListAdvances(r.Context(), customerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if advances == nil {
		advances = []AdvancePayment{}
	}
	httpx.OK(w, advances)
}

func (h *Handler) ShowAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	advance, err := h.service.GetAdvance(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, advance)
}

func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := AdvanceInput{
		Number:     req.Number,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Method:     req.Method,
		Note:       req.Note,
	}
	if req.ReceivedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "received_at must be RFC3339")
			return
		}
		input.ReceivedAt = t
	}
	advance, err := h.service.CreateAdvance(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, advance)
}

func (h *Handler) VoidAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.VoidAdvance(r.Context(), id, rbac.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, _ := strconv.ParseInt(q.Get("customer_id"), 10, 64)
	var from, to time.Time
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	receipts, err := h.service.ListReceipts(r.Context(), customerID, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if receipts == nil {
		receipts = []CustomerReceipt{}
	}
	httpx.OK(w, receipts)
}

func (h *Handler) ShowReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	receipt, err := h.service.GetReceipt(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, receipt)
}

func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req ReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := ReceiptInput{
		Number:         req.Number,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		AdvanceID:      req.AdvanceID,
		AdvanceApplied: req.AdvanceApplied,
		Method:         req.Method,
		Note:           req.Note,
	}
	if req.ReceivedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "received_at must be RFC3339")
			return
		}
		input.ReceivedAt = t
	}
	receipt, err := h.service.CreateReceipt(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Created(w, receipt)
}

func (h *Handler) VoidReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.VoidReceipt(r.Context(), id, rbac.UserIDFromContext(r.Context())); err != nil {
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
	case errors.Is(err, ErrInsufficientAdvance):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Advance", "advance balance cannot cover the applied amount")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("ar handler", slog.Any("error", err))
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
