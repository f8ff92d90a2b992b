package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arthabooks/arthabooks/internal/chit"
	"github.com/arthabooks/arthabooks/internal/customers"
	"github.com/arthabooks/arthabooks/internal/investments"
	"github.com/arthabooks/arthabooks/internal/invoices"
	"github.com/arthabooks/arthabooks/internal/observability"
	"github.com/arthabooks/arthabooks/internal/outstanding"
	"github.com/arthabooks/arthabooks/internal/vouchers"
	"github.com/arthabooks/arthabooks/internal/wallets"
	"github.com/arthabooks/arthabooks/jobs"
	"github.com/arthabooks/arthabooks/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Metrics            *observability.Metrics
	CustomersHandler   *customers.Handler
	InvoicesHandler    *invoices.Handler
	VouchersHandler    *vouchers.Handler
	ChitHandler        *chit.Handler
	InvestmentsHandler *investments.Handler
	WalletsHandler     *wallets.Handler
	OutstandingHandler *outstanding.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with arthabooks defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.InvoicesHandler != nil {
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)
	}
	if params.VouchersHandler != nil {
		r.Route("/vouchers", params.VouchersHandler.MountRoutes)
	}
	if params.ChitHandler != nil {
		r.Route("/chits", params.ChitHandler.MountRoutes)
	}
	if params.InvestmentsHandler != nil {
		r.Route("/investments", params.InvestmentsHandler.MountRoutes)
	}
	if params.WalletsHandler != nil {
		r.Route("/wallets", params.WalletsHandler.MountRoutes)
	}
	if params.OutstandingHandler != nil {
		r.Route("/outstanding", params.OutstandingHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/reports", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
