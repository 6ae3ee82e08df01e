package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/config"
	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/services"
)

// Handlers handles analysis HTTP requests
type Handlers struct {
	analysis *services.AnalysisService
	importer *services.ImportService
	cfg      *config.Config
	log      zerolog.Logger
}

// NewHandlers creates new analysis handlers
func NewHandlers(analysis *services.AnalysisService, importer *services.ImportService, cfg *config.Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		analysis: analysis,
		importer: importer,
		cfg:      cfg,
		log:      log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleGetAssets returns the asset catalog
// GET /api/assets
func (h *Handlers) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, domain.Catalog)
}

// HandleRunAnalysis runs one analysis request
// POST /api/analysis
func (h *Handlers) HandleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	req := services.AnalysisRequest{
		Assets:       h.cfg.DefaultAssets,
		Step:         h.cfg.DefaultStep,
		PurchaseDate: h.cfg.DefaultPurchaseDate,
		Investment:   h.cfg.DefaultInvestment,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.analysis.Run(req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleRefreshSeries re-imports available raw CSV files
// POST /api/series/refresh
func (h *Handlers) HandleRefreshSeries(w http.ResponseWriter, r *http.Request) {
	imported, err := h.importer.ImportAvailable()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported,
	})
}

// writeDomainError maps the failure taxonomy to HTTP statuses: input problems
// are 400, missing data 404, anything else is a server-side defect.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAssetSelection),
		errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrInvalidDateFormat),
		errors.Is(err, domain.ErrDateOutOfRange),
		errors.Is(err, domain.ErrInvalidInvestment):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrMissingSeriesData):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Analysis request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
