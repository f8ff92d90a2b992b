package chit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Handler manages chit group endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers chit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/members", h.addMember)
	r.Post("/{id}/auctions", h.recordAuction)
	r.Delete("/{id}/auctions/{auction_id}", h.deleteAuction)
	r.Get("/{id}/settlement", h.previewSettlement)
}

type groupForm struct {
	Name           string  `json:"name" validate:"required"`
	TotalValue     float64 `json:"total_value" validate:"required,gt=0"`
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`
	CommissionPct  float64 `json:"commission_pct" validate:"gte=0,lte=100"`
	StartDate      string  `json:"start_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form groupForm
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
	g, err := h.service.CreateGroup(r.Context(), CreateGroupInput{
		Name:           form.Name,
		TotalValue:     form.TotalValue,
		DurationMonths: form.DurationMonths,
		CommissionPct:  form.CommissionPct,
		StartDate:      start,
	})
	if err != nil {
		h.logger.Error("create chit group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	g, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

type memberForm struct {
	CustomerID int64 `json:"customer_id" validate:"required"`
	Seats      int   `json:"seats" validate:"required,gt=0"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	var form memberForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	m, err := h.service.AddMember(r.Context(), id, form.CustomerID, form.Seats)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

type auctionForm struct {
	Month          int     `json:"month" validate:"required,gt=0"`
	WinnerMemberID int64   `json:"winner_member_id" validate:"required"`
	BidAmount      float64 `json:"bid_amount" validate:"gte=0"`
	Date           string  `json:"date"`
}

func (h *Handler) recordAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	var form auctionForm
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
	a, err := h.service.RecordAuction(r.Context(), RecordAuctionInput{
		GroupID:        id,
		Month:          form.Month,
		WinnerMemberID: form.WinnerMemberID,
		BidAmount:      form.BidAmount,
		Date:           date,
	})
	if err != nil {
		h.logger.Error("record auction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) deleteAuction(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	auctionID, ok := parseParam(w, r, "auction_id")
	if !ok {
		return
	}
	if err := h.service.DeleteAuction(r.Context(), groupID, auctionID); err != nil {
		h.logger.Error("delete auction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// previewSettlement dry-runs the split for a hypothetical bid without
// touching the ledger.
func (h *Handler) previewSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	bid, err := strconv.ParseFloat(r.URL.Query().Get("bid"), 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "bid query parameter required")
		return
	}
	g, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	st, err := ComputeSettlement(g.TotalValue, g.CommissionPct, bid, g.DurationMonths)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func parseParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return v, true
}
