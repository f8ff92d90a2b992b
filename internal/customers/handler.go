package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Handler manages party registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/deactivate", h.deactivate)
	r.Post("/{id}/activate", h.activate)
	r.Get("/{id}/balance", h.balance)
	r.Get("/{id}/position", h.position)
}

type customerForm struct {
	Name              string  `json:"name" validate:"required"`
	Phone             string  `json:"phone"`
	IsRoyalty         bool    `json:"is_royalty"`
	IsInterest        bool    `json:"is_interest"`
	IsChit            bool    `json:"is_chit"`
	IsGeneral         bool    `json:"is_general"`
	IsLender          bool    `json:"is_lender"`
	RoyaltyAmount     float64 `json:"royalty_amount" validate:"gte=0"`
	InterestPrincipal float64 `json:"interest_principal" validate:"gte=0"`
	InterestRate      float64 `json:"interest_rate" validate:"gte=0"`
	CreditPrincipal   float64 `json:"credit_principal" validate:"gte=0"`
	OpeningBalance    float64 `json:"opening_balance"`
}

func (f customerForm) toInput() CreateCustomerInput {
	return CreateCustomerInput{
		Name:              f.Name,
		Phone:             f.Phone,
		IsRoyalty:         f.IsRoyalty,
		IsInterest:        f.IsInterest,
		IsChit:            f.IsChit,
		IsGeneral:         f.IsGeneral,
		IsLender:          f.IsLender,
		RoyaltyAmount:     f.RoyaltyAmount,
		InterestPrincipal: f.InterestPrincipal,
		InterestRate:      f.InterestRate,
		CreditPrincipal:   f.CreditPrincipal,
		OpeningBalance:    f.OpeningBalance,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cust, err := h.service.RegisterCustomer(r.Context(), form.toInput())
	if err != nil {
		h.logger.Error("register customer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cust)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	custs, err := h.service.ListCustomers(r.Context(), ListCustomersRequest{
		Status: ledger.CustomerStatus(r.URL.Query().Get("status")),
		Role:   r.URL.Query().Get("role"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, custs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	cust, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if cust == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "customer not found")
		return
	}
	httpx.JSON(w, http.StatusOK, cust)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateCustomer(r.Context(), id, form.toInput()); err != nil {
		h.logger.Error("update customer", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeactivateCustomer(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.ActivateCustomer(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	category := ledger.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = ledger.CategoryOverall
	}
	signed := r.URL.Query().Get("signed") != "false"
	net, err := h.service.CategoryBalance(r.Context(), id, category, signed)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customerId": id, "category": category, "balance": net})
}

func (h *Handler) position(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	category := ledger.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = ledger.CategoryOverall
	}
	pos, err := h.service.Position(r.Context(), id, category)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pos)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer ID")
		return 0, false
	}
	return id, true
}
