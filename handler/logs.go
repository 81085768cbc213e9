package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/posgate/infra/opensearch"
	"github.com/mstgnz/posgate/infra/response"
)

// SignatureLogQuerier defines the interface for signature log queries
type SignatureLogQuerier interface {
	SearchLogs(ctx context.Context, provider string, query map[string]any) ([]opensearch.SignatureLog, error)
	GetOrderLogs(ctx context.Context, provider, orderID string) ([]opensearch.SignatureLog, error)
	GetRecentUnverifiedLogs(ctx context.Context, provider string, hours int) ([]opensearch.SignatureLog, error)
	GetProviderStats(ctx context.Context, provider string, hours int) (map[string]any, error)
}

// LogsHandler handles signature log related HTTP requests
type LogsHandler struct {
	querier SignatureLogQuerier
}

// NewLogsHandler creates a new logs handler. The querier may be nil when
// OpenSearch logging is disabled; every endpoint then answers 503.
func NewLogsHandler(querier SignatureLogQuerier) *LogsHandler {
	return &LogsHandler{
		querier: querier,
	}
}

// ListLogs lists signature events for a provider with optional filtering
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	// Parse query parameters
	var query map[string]any = make(map[string]any)

	// Order ID filter
	if orderID := r.URL.Query().Get("orderId"); orderID != "" {
		query = map[string]any{
			"match": map[string]any{
				"order_id": orderID,
			},
		}
	}

	// Operation filter ("sign" or "verify")
	if operation := r.URL.Query().Get("operation"); operation != "" {
		operationFilter := map[string]any{
			"term": map[string]any{
				"operation": operation,
			},
		}

		if len(query) == 0 {
			query = operationFilter
		} else {
			// Combine with bool query if order ID is also present
			existing := query
			query = map[string]any{
				"bool": map[string]any{
					"must": []map[string]any{
						existing,
						operationFilter,
					},
				},
			}
		}
	}

	// Time range filter
	hours := parseHours(r, 24)

	timeFilter := map[string]any{
		"range": map[string]any{
			"timestamp": map[string]any{
				"gte": fmt.Sprintf("now-%dh", hours),
			},
		},
	}

	if len(query) == 0 {
		query = timeFilter
	} else {
		// Combine with existing query
		existing := query
		query = map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					existing,
					timeFilter,
				},
			},
		}
	}

	// Search logs
	logs, err := h.querier.SearchLogs(ctx, providerName, query)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to search logs", err)
		return
	}

	// Prepare response data
	responseData := map[string]any{
		"provider": providerName,
		"filters": map[string]any{
			"hours":     hours,
			"orderId":   r.URL.Query().Get("orderId"),
			"operation": r.URL.Query().Get("operation"),
		},
		"count": len(logs),
		"logs":  logs,
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", responseData)
}

// GetOrderLogs retrieves signature events for a specific order ID
func (h *LogsHandler) GetOrderLogs(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	providerName := chi.URLParam(r, "provider")
	orderID := chi.URLParam(r, "orderID")

	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "provider parameter is required", nil)
		return
	}

	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "orderID parameter is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get logs for specific order
	logs, err := h.querier.GetOrderLogs(ctx, providerName, orderID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve logs", err)
		return
	}

	responseData := map[string]any{
		"logs":     logs,
		"count":    len(logs),
		"provider": providerName,
		"order_id": orderID,
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", responseData)
}

// GetUnverifiedLogs retrieves recent failed verification events for a
// provider. A burst here usually means a rotated store key or forgeries.
func (h *LogsHandler) GetUnverifiedLogs(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	hours := parseHours(r, 24)

	// Get unverified callback events
	logs, err := h.querier.GetRecentUnverifiedLogs(ctx, providerName, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get unverified logs", err)
		return
	}

	responseData := map[string]any{
		"provider": providerName,
		"hours":    hours,
		"count":    len(logs),
		"logs":     logs,
	}

	response.Success(w, http.StatusOK, "Unverified logs retrieved successfully", responseData)
}

// GetLogStats retrieves signing and verification statistics for a provider
func (h *LogsHandler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "provider parameter is required", nil)
		return
	}

	hours := parseHours(r, 24)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get stats from the signature event indices
	stats, err := h.querier.GetProviderStats(ctx, providerName, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve log statistics", err)
		return
	}

	responseData := map[string]any{
		"stats":    stats,
		"provider": providerName,
		"hours":    hours,
	}

	response.Success(w, http.StatusOK, "Log statistics retrieved successfully", responseData)
}

// parseHours reads the hours query parameter, capped at 7 days.
func parseHours(r *http.Request, def int) int {
	hours := def
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 && h <= 168 {
			hours = h
		}
	}
	return hours
}
