package apihttp

import (
	"encoding/json"
	"net/http"

	bins "smartwaste-cloud/internal/bins/domain"
)

// SnapshotSource serves the current bin table.
type SnapshotSource interface {
	Snapshot() []bins.Bin
}

// DataHandler serves the on-demand bin snapshot.
type DataHandler struct {
	source SnapshotSource
}

// NewDataHandler constructs a DataHandler.
func NewDataHandler(source SnapshotSource) *DataHandler {
	return &DataHandler{source: source}
}

// ServeHTTP handles GET /api/data.
func (h *DataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.source == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.source.Snapshot())
}
