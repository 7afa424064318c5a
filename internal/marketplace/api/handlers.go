package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maltedev/marketplace-scraper/internal/marketplace/scraper"
	"github.com/maltedev/marketplace-scraper/internal/models"
)

const (
	healthMessage      = "Facebook Marketplace Scraper API is running"
	renderTimeoutError = "Timeout waiting for page to load"
)

type Scraper interface {
	Scrape(ctx context.Context, req models.ScrapeRequest) (*models.ScrapeResult, error)
}

type Handlers struct {
	scraper Scraper
	logger  *slog.Logger
}

func NewHandlers(s Scraper, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: s,
		logger:  logger.With("component", "api"),
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ScrapeErrorResponse is returned on 500s; products is always an empty list
type ScrapeErrorResponse struct {
	Error    string           `json:"error"`
	Products []models.Listing `json:"products"`
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: healthMessage,
	})
}

// Scrape handles marketplace search scraping
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("unreadable scrape request body", "error", err)
		h.respondError(w, http.StatusBadRequest, scraper.ErrSearchTermRequired.Error())
		return
	}

	// A scrape runs to completion once started, even if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	result, err := h.scraper.Scrape(ctx, req)
	switch {
	case errors.Is(err, scraper.ErrSearchTermRequired):
		h.respondError(w, http.StatusBadRequest, scraper.ErrSearchTermRequired.Error())
	case errors.Is(err, scraper.ErrRenderTimeout):
		h.logger.Error("scrape timed out", "error", err, "search_term", req.SearchTerm)
		h.respondScrapeError(w, renderTimeoutError)
	case err != nil:
		h.logger.Error("scrape failed", "error", err, "search_term", req.SearchTerm)
		h.respondScrapeError(w, err.Error())
	default:
		h.respondJSON(w, http.StatusOK, result)
	}
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) respondScrapeError(w http.ResponseWriter, message string) {
	h.respondJSON(w, http.StatusInternalServerError, ScrapeErrorResponse{
		Error:    message,
		Products: make([]models.Listing, 0),
	})
}
