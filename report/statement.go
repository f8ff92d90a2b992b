package report

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/outstanding"
)

// OutstandingSource is the slice of the outstanding service the report needs.
type OutstandingSource interface {
	Report(ctx context.Context, category ledger.Category) (*outstanding.Report, error)
}

var statementTmpl = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Outstanding Statement</title>
<style>
body { font-family: sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 2px; }
.meta { color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { border-bottom: 1px solid #ccc; padding: 6px 8px; text-align: left; }
td.amount, th.amount { text-align: right; }
tr.overdue td { color: #b00020; }
tfoot td { font-weight: bold; border-top: 2px solid #333; }
</style>
</head>
<body>
<h1>Outstanding Statement</h1>
<div class="meta">
{{if .Category}}Category: {{.Category}} &middot; {{end}}
Generated {{.GeneratedAt.Format "02 Jan 2006 15:04"}} &middot;
{{.Overdue}} overdue &middot; {{.DueToday}} due today
</div>
<table>
<thead>
<tr><th>Party</th><th>Category</th><th>Due date</th><th>Status</th><th class="amount">Outstanding</th></tr>
</thead>
<tbody>
{{range .Entries}}
<tr{{if eq .DueStatus "OVERDUE"}} class="overdue"{{end}}>
<td>{{.CustomerName}}</td>
<td>{{.Category}}</td>
<td>{{if .DueDate}}{{.DueDate.Format "02 Jan 2006"}}{{else}}&ndash;{{end}}</td>
<td>{{.DueStatus}}</td>
<td class="amount">{{.AmountDisplay}}</td>
</tr>
{{end}}
</tbody>
<tfoot>
<tr><td colspan="4">Total</td><td class="amount">{{.TotalDisplay}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

// Handler renders outstanding statements as PDF documents.
type Handler struct {
	client *Client
	source OutstandingSource
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, source OutstandingSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, source: source, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/outstanding", h.outstanding)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	category := ledger.Category(r.URL.Query().Get("category"))
	rep, err := h.source.Report(r.Context(), category)
	if err != nil {
		h.logger.Error("build outstanding report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var html bytes.Buffer
	if err := statementTmpl.Execute(&html, rep); err != nil {
		h.logger.Error("render statement html", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html.String())
	if err != nil {
		h.logger.Error("render statement pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	name := "outstanding"
	if category != "" {
		name += "-" + string(category)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename=`+name+`-`+time.Now().Format("20060102")+`.pdf`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
