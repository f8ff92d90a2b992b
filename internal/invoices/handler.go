package invoices

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Handler manages billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/void", h.void)
	r.Post("/billing/royalty", h.billRoyalty)
	r.Post("/billing/interest", h.billInterest)
}

type invoiceForm struct {
	CustomerID int64   `json:"customer_id" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	Direction  string  `json:"direction"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Date       string  `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form invoiceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var date time.Time
	if form.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", form.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
	}
	inv, err := h.service.CreateInvoice(r.Context(), CreateInvoiceInput{
		CustomerID: form.CustomerID,
		Type:       ledger.InvoiceType(form.Type),
		Direction:  ledger.Direction(form.Direction),
		Amount:     form.Amount,
		Date:       date,
	})
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	invs, err := h.service.ListInvoices(r.Context(), ListInvoicesRequest{
		CustomerID: customerID,
		Type:       ledger.InvoiceType(r.URL.Query().Get("type")),
		Status:     ledger.InvoiceStatus(r.URL.Query().Get("status")),
		OpenOnly:   r.URL.Query().Get("open") == "true",
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return
	}
	if err := h.service.VoidInvoice(r.Context(), id); err != nil {
		h.logger.Error("void invoice", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) billRoyalty(w http.ResponseWriter, r *http.Request) {
	h.runBilling(w, r, h.service.GenerateRoyaltyInvoices)
}

func (h *Handler) billInterest(w http.ResponseWriter, r *http.Request) {
	h.runBilling(w, r, h.service.GenerateInterestInvoices)
}

func (h *Handler) runBilling(w http.ResponseWriter, r *http.Request, run func(context.Context, time.Time) (*BillingRunResult, error)) {
	var period time.Time
	if p := r.URL.Query().Get("period"); p != "" {
		var err error
		period, err = time.Parse("2006-01", p)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "period must be YYYY-MM")
			return
		}
	}
	result, err := run(r.Context(), period)
	if err != nil {
		h.logger.Error("billing run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
