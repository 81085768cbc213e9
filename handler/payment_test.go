package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mstgnz/posgate/infra/response"
	"github.com/mstgnz/posgate/provider"
)

type fakePaymentService struct {
	createResp   *provider.PaymentResponse
	createErr    error
	verified     bool
	completeResp *provider.PaymentResponse
	completeErr  error
	lastData     map[string]string
}

func (f *fakePaymentService) Create3DPayment(_ context.Context, _ string, _ provider.PaymentRequest) (*provider.PaymentResponse, error) {
	return f.createResp, f.createErr
}

func (f *fakePaymentService) VerifyCallback(_ context.Context, _ string, data map[string]string) bool {
	f.lastData = data
	return f.verified
}

func (f *fakePaymentService) Complete3DPayment(_ context.Context, _ string, data map[string]string) (*provider.PaymentResponse, error) {
	f.lastData = data
	return f.completeResp, f.completeErr
}

func (f *fakePaymentService) Providers() []string {
	return []string{"nestpay", "garanti"}
}

func newTestRouter(svc PaymentServiceInterface) *chi.Mux {
	h := NewPaymentHandler(svc, validator.New(), nil)
	r := chi.NewRouter()
	r.Post("/v1/payments/{provider}", h.Initiate3DPayment)
	r.Post("/v1/verify/{provider}", h.VerifyCallback)
	r.HandleFunc("/callback/{provider}", h.HandleCallback)
	r.Get("/v1/providers", h.ListProviders)
	return r
}

func validRequestBody() string {
	body, _ := json.Marshal(provider.PaymentRequest{
		OrderID:     "ORDER-1",
		AmountMinor: 12345,
		Currency:    "TRY",
		SuccessURL:  "https://shop.example/ok",
		FailURL:     "https://shop.example/fail",
	})
	return string(body)
}

func TestInitiate3DPayment(t *testing.T) {
	svc := &fakePaymentService{
		createResp: &provider.PaymentResponse{
			Success: true,
			Status:  provider.StatusPending,
			OrderID: "ORDER-1",
			Redirect: &provider.RedirectDescriptor{
				ActionURL:  "https://bank.example/fim/est3Dgate",
				FormFields: map[string]string{"oid": "ORDER-1"},
			},
			HTML: "<form></form>",
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/v1/payments/nestpay", strings.NewReader(validRequestBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp response.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
}

func TestInitiate3DPaymentHTMLFormat(t *testing.T) {
	svc := &fakePaymentService{
		createResp: &provider.PaymentResponse{
			Success: true,
			Status:  provider.StatusPending,
			HTML:    "<form id=\"threeDForm\"></form>",
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/v1/payments/nestpay?format=html", strings.NewReader(validRequestBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), "threeDForm") {
		t.Error("expected the auto-submit form in the body")
	}
}

func TestInitiate3DPaymentValidation(t *testing.T) {
	router := newTestRouter(&fakePaymentService{})

	// Missing required fields
	req := httptest.NewRequest("POST", "/v1/payments/nestpay", strings.NewReader(`{"orderId":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestInitiate3DPaymentConfigError(t *testing.T) {
	svc := &fakePaymentService{
		createErr: provider.NewConfigError("store key missing", nil),
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/v1/payments/nestpay", strings.NewReader(validRequestBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("config error should map to 400, got %d", w.Code)
	}
}

func TestVerifyCallbackEndpoint(t *testing.T) {
	svc := &fakePaymentService{verified: true}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/v1/verify/garanti", strings.NewReader(`{"orderid":"ORD1","hash":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"verified":true`) {
		t.Errorf("expected verified true in body: %s", w.Body.String())
	}
	if svc.lastData["orderid"] != "ORD1" {
		t.Error("callback data must reach the service")
	}
}

func TestHandleCallbackRedirectsToSuccessURL(t *testing.T) {
	svc := &fakePaymentService{
		completeResp: &provider.PaymentResponse{
			Success: true,
			Status:  provider.StatusSuccessful,
			OrderID: "ORDER-1",
		},
	}
	router := newTestRouter(svc)

	form := url.Values{}
	form.Set("oid", "ORDER-1")
	form.Set("mdStatus", "1")
	req := httptest.NewRequest("POST", "/callback/nestpay?successUrl=https://shop.example/ok", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "https://shop.example/ok") {
		t.Errorf("Location = %q", location)
	}
	if !strings.Contains(location, "orderId=ORDER-1") {
		t.Errorf("redirect must carry the order id: %q", location)
	}

	// Form fields must reach the service with original casing.
	if svc.lastData["mdStatus"] != "1" {
		t.Errorf("form field casing must be preserved, got %v", svc.lastData)
	}
}

func TestHandleCallbackRedirectsToErrorURL(t *testing.T) {
	svc := &fakePaymentService{
		completeResp: &provider.PaymentResponse{
			Success:    false,
			Status:     provider.StatusFailed,
			OrderID:    "ORDER-1",
			ReasonCode: "05",
			Message:    "İşlem reddedildi.",
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/callback/nestpay?errorUrl=https://shop.example/fail", strings.NewReader("oid=ORDER-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "https://shop.example/fail") {
		t.Errorf("Location = %q", location)
	}
	if !strings.Contains(location, "reasonCode=05") {
		t.Errorf("redirect must carry the reason code: %q", location)
	}
}

func TestHandleCallbackJSONFallback(t *testing.T) {
	svc := &fakePaymentService{
		completeResp: &provider.PaymentResponse{
			Success: true,
			Status:  provider.StatusSuccessful,
			OrderID: "ORDER-1",
		},
	}
	router := newTestRouter(svc)

	// No successUrl query parameter: respond with JSON instead of a redirect.
	req := httptest.NewRequest("POST", "/callback/nestpay", strings.NewReader("oid=ORDER-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Error("expected JSON fallback response")
	}
}

func TestListProviders(t *testing.T) {
	router := newTestRouter(&fakePaymentService{})

	req := httptest.NewRequest("GET", "/v1/providers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
