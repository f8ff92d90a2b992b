package vouchers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// PostCounter counts posted vouchers per category.
type PostCounter interface {
	CountVoucher(category string)
}

// Handler manages voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	counter  PostCounter
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// WithMetrics attaches a voucher counter.
func (h *Handler) WithMetrics(c PostCounter) *Handler {
	h.counter = c
	return h
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.post)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type voucherForm struct {
	VoucherType  string  `json:"voucher_type" validate:"required,oneof=RECEIPT PAYMENT CONTRA"`
	Category     string  `json:"category" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	SourceID     int64   `json:"source_id"`
	Mode         string  `json:"mode" validate:"required"`
	TargetMode   string  `json:"target_mode"`
	InvestmentID int64   `json:"investment_id"`
	Date         string  `json:"date"`
	Note         string  `json:"note"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (PostVoucherInput, bool) {
	var form voucherForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return PostVoucherInput{}, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return PostVoucherInput{}, false
	}
	var date time.Time
	if form.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", form.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return PostVoucherInput{}, false
		}
	}
	return PostVoucherInput{
		VoucherType:  ledger.VoucherType(form.VoucherType),
		Category:     ledger.Category(form.Category),
		Amount:       form.Amount,
		SourceID:     form.SourceID,
		Mode:         form.Mode,
		TargetMode:   form.TargetMode,
		InvestmentID: form.InvestmentID,
		Date:         date,
		Note:         form.Note,
	}, true
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	result, err := h.service.PostVoucher(r.Context(), input)
	if err != nil {
		h.logger.Error("post voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.counter != nil {
		h.counter.CountVoucher(string(result.Payment.Category))
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListPaymentsRequest{
		Category: ledger.Category(q.Get("category")),
	}
	if v := q.Get("source_id"); v != "" {
		req.SourceID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("from"); v != "" {
		req.From, _ = time.Parse("2006-01-02", v)
	}
	if v := q.Get("to"); v != "" {
		req.To, _ = time.Parse("2006-01-02", v)
	}
	if v := q.Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("per_page"); v != "" {
		req.PerPage, _ = strconv.Atoi(v)
	}
	page, err := h.service.ListVouchers(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetVoucher(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	result, err := h.service.UpdateVoucher(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteVoucher(r.Context(), id); err != nil {
		h.logger.Error("delete voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ID")
		return 0, false
	}
	return id, true
}
