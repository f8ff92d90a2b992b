package outstanding

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

// Handler manages outstanding report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers outstanding routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.report)
	r.Put("/due-dates", h.setDueDate)
	r.Delete("/due-dates/{customer_id}/{category}", h.clearDueDate)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	category := ledger.Category(r.URL.Query().Get("category"))
	report, err := h.service.Report(r.Context(), category)
	if err != nil {
		h.logger.Error("outstanding report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

type dueDateForm struct {
	CustomerID int64  `json:"customer_id" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Due        string `json:"due" validate:"required"`
}

func (h *Handler) setDueDate(w http.ResponseWriter, r *http.Request) {
	var form dueDateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	due, err := time.Parse("2006-01-02", form.Due)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due must be YYYY-MM-DD")
		return
	}
	d, err := h.service.SetDueDate(r.Context(), form.CustomerID, ledger.Category(form.Category), due)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) clearDueDate(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customer_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer ID")
		return
	}
	category := ledger.Category(chi.URLParam(r, "category"))
	if err := h.service.ClearDueDate(r.Context(), customerID, category); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
