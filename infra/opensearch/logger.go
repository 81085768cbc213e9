package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// SignatureLog represents a structured signing or verification event.
// Canonical strings, digests and secrets never appear here; the diagnostic
// value lives in the outcome and the field names, not the field values.
type SignatureLog struct {
	Timestamp        time.Time `json:"timestamp"`
	Provider         string    `json:"provider"`
	Operation        string    `json:"operation"` // "sign" or "verify"
	OrderID          string    `json:"order_id,omitempty"`
	RequestID        string    `json:"request_id"`
	ClientIP         string    `json:"client_ip,omitempty"`
	Verified         bool      `json:"verified"`
	Approved         bool      `json:"approved"`
	MDStatus         string    `json:"md_status,omitempty"`
	ReasonCode       string    `json:"reason_code,omitempty"`
	Amount           string    `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Error            ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// sanitized masks secret material in the free-text parts of the event.
// Structured fields carry no secrets by construction; the error message can,
// when a config or gateway error echoes request detail.
func (log SignatureLog) sanitized() SignatureLog {
	if log.Error.Message != "" {
		log.Error.Message = SanitizeForLog(log.Error.Message)
	}
	return log
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogSignatureEvent logs a signing or verification event to OpenSearch
func (l *Logger) LogSignatureEvent(ctx context.Context, log SignatureLog) error {
	if !l.client.IsEnabled() {
		return nil // Logging disabled
	}

	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	if log.RequestID == "" {
		log.RequestID = uuid.New().String()
	}

	log = log.sanitized()

	indexName := l.client.GetLogIndexName(log.Provider)

	logJSON, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchLogs searches for signature logs based on criteria
func (l *Logger) SearchLogs(ctx context.Context, provider string, query map[string]any) ([]SignatureLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	indexName := l.client.GetLogIndexName(provider)

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100, // Limit results
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source SignatureLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]SignatureLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetOrderLogs retrieves logs for a specific order ID
func (l *Logger) GetOrderLogs(ctx context.Context, provider, orderID string) ([]SignatureLog, error) {
	query := map[string]any{
		"match": map[string]any{
			"order_id": orderID,
		},
	}

	return l.SearchLogs(ctx, provider, query)
}

// GetRecentUnverifiedLogs retrieves recent failed verification events for a
// gateway. A burst of unverified callbacks usually means a rotated store
// key or a forgery attempt.
func (l *Logger) GetRecentUnverifiedLogs(ctx context.Context, provider string, hours int) ([]SignatureLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{
					"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					},
				},
				{
					"term": map[string]any{
						"operation": "verify",
					},
				},
				{
					"term": map[string]any{
						"verified": false,
					},
				},
			},
		},
	}

	return l.SearchLogs(ctx, provider, query)
}

// GetProviderStats retrieves signing and verification statistics for a gateway
func (l *Logger) GetProviderStats(ctx context.Context, provider string, hours int) (map[string]any, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	indexName := l.client.GetLogIndexName(provider)

	aggQuery := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{
					"gte": fmt.Sprintf("now-%dh", hours),
				},
			},
		},
		"aggs": map[string]any{
			"total_events": map[string]any{
				"value_count": map[string]any{
					"field": "request_id",
				},
			},
			"verified_count": map[string]any{
				"filter": map[string]any{
					"term": map[string]any{
						"verified": true,
					},
				},
			},
			"approved_count": map[string]any{
				"filter": map[string]any{
					"term": map[string]any{
						"approved": true,
					},
				},
			},
			"avg_processing_time": map[string]any{
				"avg": map[string]any{
					"field": "processing_time_ms",
				},
			},
			"reason_codes": map[string]any{
				"terms": map[string]any{
					"field": "reason_code",
					"size":  10,
				},
			},
		},
		"size": 0, // We only want aggregations
	}

	queryJSON, err := json.Marshal(aggQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregation query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("aggregation search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch aggregation error: %s", res.String())
	}

	var result map[string]any
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}

	return result, nil
}

// SanitizeForLog removes sensitive information from data before logging
func SanitizeForLog(data string) string {
	sensitiveFields := []string{
		"storeKey", "store_key", "storekey", "password", "provisionPassword",
		"hashedPassword", "hash", "secure3dhash", "secretKey", "secret_key",
		"apiKey", "api_key", "token", "authorization",
	}

	result := data
	for _, field := range sensitiveFields {
		// Regex patterns for different formats
		patterns := []string{
			fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, field), // JSON format with double quotes
			fmt.Sprintf(`"%s"\s*:\s*'[^']*'`, field), // JSON format with single quotes
			fmt.Sprintf(`%s=[^&\s]+`, field),         // URL parameter format
		}

		for _, pattern := range patterns {
			re := regexp.MustCompile(pattern)
			result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		}
	}

	return result
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, log any) error {
	if !l.client.IsEnabled() {
		return nil // Logging disabled
	}

	indexName := "posgate-system-logs"

	logJSON, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal system log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index system log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch system log error: %s", res.String())
	}

	return nil
}
