package reports

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	accounts "smartwaste-cloud/internal/accounts/domain"
	bins "smartwaste-cloud/internal/bins/domain"
	"smartwaste-cloud/internal/observability/metrics"
)

// SnapshotSource serves the current bin table.
type SnapshotSource interface {
	Snapshot() []bins.Bin
}

// TicketLister loads the support ticket backlog.
type TicketLister interface {
	List(ctx context.Context) ([]accounts.SupportRequest, error)
}

// Handler serves operator report exports.
type Handler struct {
	source  SnapshotSource
	tickets TicketLister
	logger  *log.Logger
}

// NewHandler constructs the report handler.
func NewHandler(source SnapshotSource, tickets TicketLister, logger *log.Logger) (*Handler, error) {
	if source == nil {
		return nil, errors.New("report handler: nil snapshot source")
	}
	if tickets == nil {
		return nil, errors.New("report handler: nil ticket lister")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{source: source, tickets: tickets, logger: logger}, nil
}

// ServeHTTP routes the report endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/report/bins.pdf":
		h.handleBinsPDF(w, r)
	case "/api/report/tickets.xlsx":
		h.handleTicketsXLSX(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleBinsPDF(w http.ResponseWriter, _ *http.Request) {
	data, err := BuildBinStatusPDF(h.source.Snapshot(), time.Now())
	if err != nil {
		h.logger.Printf("report handler: bins pdf: %v", err)
		metrics.IncReportExport("pdf", metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncReportExport("pdf", metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bins.pdf"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleTicketsXLSX(w http.ResponseWriter, r *http.Request) {
	requests, err := h.tickets.List(r.Context())
	if err != nil {
		h.logger.Printf("report handler: list tickets: %v", err)
		metrics.IncReportExport("xlsx", metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	data, err := BuildTicketsXLSX(requests)
	if err != nil {
		h.logger.Printf("report handler: tickets xlsx: %v", err)
		metrics.IncReportExport("xlsx", metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncReportExport("xlsx", metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tickets.xlsx"`)
	_, _ = w.Write(data)
}
