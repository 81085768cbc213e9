package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/posgate/infra/logger"
	"github.com/mstgnz/posgate/infra/middle"
	"github.com/mstgnz/posgate/infra/opensearch"
	"github.com/mstgnz/posgate/infra/response"
	"github.com/mstgnz/posgate/provider"
)

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	Create3DPayment(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResponse, error)
	VerifyCallback(ctx context.Context, providerName string, data map[string]string) bool
	Complete3DPayment(ctx context.Context, providerName string, data map[string]string) (*provider.PaymentResponse, error)
	Providers() []string
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
	osLogger       *opensearch.Logger
}

// NewPaymentHandler creates a new payment handler. The OpenSearch logger
// may be nil; signature diagnostics are then skipped.
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate, osLogger *opensearch.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
		osLogger:       osLogger,
	}
}

// Initiate3DPayment builds the signed redirect form for a hosted-page
// payment. With ?format=html the auto-submit page is returned directly so
// the merchant can hand it to the browser unchanged.
func (h *PaymentHandler) Initiate3DPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()

	var req provider.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if req.CustomerIP == "" {
		req.CustomerIP = middle.GetClientIP(r)
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	resp, err := h.paymentService.Create3DPayment(ctx, providerName, req)
	h.logSignatureEvent(providerName, "sign", req.OrderID, middle.GetClientIP(r), resp, err, time.Since(start))
	if err != nil {
		status := http.StatusInternalServerError
		if provider.IsConfigError(err) || provider.IsInvalidAmountError(err) {
			status = http.StatusBadRequest
		}
		logger.Error("3D payment initiation failed", err, logger.LogContext{
			Provider: providerName,
			OrderID:  req.OrderID,
		})
		response.Error(w, status, "Payment initiation failed", err)
		return
	}

	logger.Info("3D payment redirect built", logger.LogContext{
		Provider: providerName,
		OrderID:  req.OrderID,
	})

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(resp.HTML))
		return
	}

	response.Success(w, http.StatusOK, "3D Secure redirect ready", resp)
}

// VerifyCallback answers whether a callback payload carries a valid
// signature, without classifying or completing anything.
func (h *PaymentHandler) VerifyCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	var data map[string]string
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	verified := h.paymentService.VerifyCallback(ctx, providerName, data)
	response.Success(w, http.StatusOK, "Callback checked", map[string]any{
		"verified": verified,
	})
}

// HandleCallback receives the bank's POST after 3D authentication,
// verifies and classifies it, then forwards the customer to the merchant's
// success or fail URL when one rides on the callback URL.
func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	// Combine form and query parameters, keeping original key casing.
	callbackData := make(map[string]string)
	for key, values := range r.Form {
		if len(values) > 0 {
			callbackData[key] = values[0]
		}
	}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			callbackData[key] = values[0]
		}
	}

	resp, err := h.paymentService.Complete3DPayment(ctx, providerName, callbackData)
	h.logSignatureEvent(providerName, "verify", orderIDFromCallback(callbackData), middle.GetClientIP(r), resp, err, time.Since(start))
	if err != nil {
		logger.Error("Callback completion failed", err, logger.LogContext{Provider: providerName})
		h.redirectOrRespond(w, r, r.URL.Query().Get("errorUrl"), map[string]string{
			"success":   "false",
			"errorCode": provider.ErrCodeGeneral,
		}, func() {
			response.Error(w, http.StatusInternalServerError, "Failed to complete payment", err)
		})
		return
	}

	if resp.Success {
		h.redirectOrRespond(w, r, r.URL.Query().Get("successUrl"), map[string]string{
			"success": "true",
			"orderId": resp.OrderID,
			"status":  string(resp.Status),
		}, func() {
			response.Success(w, http.StatusOK, "Payment completed successfully", resp)
		})
		return
	}

	h.redirectOrRespond(w, r, r.URL.Query().Get("errorUrl"), map[string]string{
		"success":    "false",
		"orderId":    resp.OrderID,
		"status":     string(resp.Status),
		"reasonCode": resp.ReasonCode,
		"message":    resp.Message,
	}, func() {
		response.Success(w, http.StatusOK, "Payment failed", resp)
	})
}

// redirectOrRespond sends a 302 to target with params as query string, or
// falls back to the given JSON writer when no target URL is configured.
func (h *PaymentHandler) redirectOrRespond(w http.ResponseWriter, r *http.Request, target string, params map[string]string, fallback func()) {
	if target == "" {
		fallback()
		return
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	redirectURL := target
	if encoded := q.Encode(); encoded != "" {
		sep := "?"
		if u, err := url.Parse(target); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		redirectURL = fmt.Sprintf("%s%s%s", target, sep, encoded)
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// ListProviders returns the configured providers and the config fields
// each one requires.
func (h *PaymentHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	type providerInfo struct {
		Name           string                 `json:"name"`
		RequiredConfig []provider.ConfigField `json:"requiredConfig"`
	}

	var infos []providerInfo
	for _, name := range h.paymentService.Providers() {
		prov, err := provider.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, providerInfo{
			Name:           name,
			RequiredConfig: prov.GetRequiredConfig(),
		})
	}

	response.Success(w, http.StatusOK, "Providers retrieved", infos)
}

func orderIDFromCallback(data map[string]string) string {
	payload := provider.CallbackPayload(data)
	if oid := payload.Get("oid"); oid != "" {
		return oid
	}
	return payload.Get("orderid")
}

// logSignatureEvent records a sign or verify outcome to OpenSearch.
func (h *PaymentHandler) logSignatureEvent(providerName, operation, orderID, clientIP string, resp *provider.PaymentResponse, err error, elapsed time.Duration) {
	if h.osLogger == nil {
		return
	}

	entry := opensearch.SignatureLog{
		Timestamp:        time.Now().UTC(),
		Provider:         providerName,
		Operation:        operation,
		OrderID:          orderID,
		ClientIP:         clientIP,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	if resp != nil {
		entry.Approved = resp.Success
		entry.Verified = operation == "verify" && resp.ErrorCode != provider.ErrCodeGeneral
		entry.ReasonCode = resp.ReasonCode
	}
	if err != nil {
		entry.Error = opensearch.ErrorInfo{Message: opensearch.SanitizeForLog(err.Error())}
		if provider.IsConfigError(err) {
			entry.Error.Code = provider.ErrCodeConfig
		} else if provider.IsInvalidAmountError(err) {
			entry.Error.Code = provider.ErrCodeInvalidAmount
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if logErr := h.osLogger.LogSignatureEvent(ctx, entry); logErr != nil {
			logger.Warn("Failed to log signature event", logger.LogContext{
				Provider: providerName,
				Fields:   map[string]any{"error": logErr.Error()},
			})
		}
	}()
}
