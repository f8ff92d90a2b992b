package investments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Handler manages investment and liability endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers investment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.remove)
	r.Get("/{id}/balance", h.balance)

	r.Get("/liabilities", h.listLiabilities)
	r.Post("/liabilities", h.createLiability)
	r.Get("/liabilities/{id}", h.getLiability)
}

type investmentForm struct {
	Name               string  `json:"name" validate:"required"`
	Institution        string  `json:"institution"`
	Type               string  `json:"type" validate:"required"`
	Mode               string  `json:"mode"`
	MonthlyInstallment float64 `json:"monthly_installment" validate:"gte=0"`
	DurationMonths     int     `json:"duration_months" validate:"gte=0"`
	AmountInvested     float64 `json:"amount_invested" validate:"gte=0"`
	InterestRate       float64 `json:"interest_rate" validate:"gte=0"`
	StartDate          string  `json:"start_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form investmentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var start time.Time
	if form.StartDate != "" {
		var err error
		start, err = time.Parse("2006-01-02", form.StartDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "startDate must be YYYY-MM-DD")
			return
		}
	}
	inv, err := h.service.OpenInvestment(r.Context(), CreateInvestmentInput{
		Name:               form.Name,
		Institution:        form.Institution,
		Type:               InvestmentType(form.Type),
		Mode:               SavingsMode(form.Mode),
		MonthlyInstallment: form.MonthlyInstallment,
		DurationMonths:     form.DurationMonths,
		AmountInvested:     form.AmountInvested,
		InterestRate:       form.InterestRate,
		StartDate:          start,
	})
	if err != nil {
		h.logger.Error("open investment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invs, err := h.service.ListInvestments(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.GetInvestment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteInvestment(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.GetInvestment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var bal float64
	if inv.Type == TypeChit {
		bal = ChitSavingsBalance(*inv)
	} else {
		bal = SavingsBalance(*inv)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"investmentId": id, "balance": bal})
}

type liabilityForm struct {
	LenderID     int64   `json:"lender_id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Principal    float64 `json:"principal" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	StartDate    string  `json:"start_date"`
}

func (h *Handler) createLiability(w http.ResponseWriter, r *http.Request) {
	var form liabilityForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var start time.Time
	if form.StartDate != "" {
		var err error
		start, err = time.Parse("2006-01-02", form.StartDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "startDate must be YYYY-MM-DD")
			return
		}
	}
	l, err := h.service.RecordLiability(r.Context(), CreateLiabilityInput{
		LenderID:     form.LenderID,
		Name:         form.Name,
		Principal:    form.Principal,
		InterestRate: form.InterestRate,
		StartDate:    start,
	})
	if err != nil {
		h.logger.Error("record liability", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, l)
}

func (h *Handler) listLiabilities(w http.ResponseWriter, r *http.Request) {
	ls, err := h.service.ListLiabilities(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ls)
}

func (h *Handler) getLiability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	l, err := h.service.GetLiability(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ID")
		return 0, false
	}
	return id, true
}
