package nestpay

import (
	"context"
	"strings"
	"testing"

	"github.com/mstgnz/posgate/provider"
)

type mapSecretStore map[string]string

func (m mapSecretStore) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", provider.ErrSecretNotFound
}

func testSecrets() provider.SecretStore {
	return mapSecretStore{"NESTPAY_STORE_KEY": "TRPS1234"}
}

func testConfig() map[string]string {
	return map[string]string{
		"clientId":       "190001000",
		"storeKeySecret": "NESTPAY_STORE_KEY",
		"gatewayBaseUrl": "https://sanalpos2.ziraatbank.com.tr",
	}
}

func newTestProvider(t *testing.T, conf map[string]string) *NestpayProvider {
	t.Helper()
	p := NewProvider().(*NestpayProvider)
	if err := p.ValidateConfig(conf); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	if err := p.Initialize(conf, testSecrets()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return p
}

func TestValidateConfig(t *testing.T) {
	p := NewProvider()

	if err := p.ValidateConfig(testConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	conf := testConfig()
	delete(conf, "clientId")
	if err := p.ValidateConfig(conf); err == nil {
		t.Error("missing clientId must fail validation")
	}

	conf = testConfig()
	conf["hashMode"] = "md5"
	if err := p.ValidateConfig(conf); err == nil {
		t.Error("unknown hashMode must fail validation")
	}
}

func TestCreate3DPaymentLegacyHash(t *testing.T) {
	p := newTestProvider(t, testConfig())

	resp, err := p.Create3DPayment(context.Background(), provider.PaymentRequest{
		OrderID:     "ORDER-1",
		AmountMinor: 12345,
		Currency:    "TRY",
		SuccessURL:  "https://shop.example/ok",
		FailURL:     "https://shop.example/fail",
	})
	if err != nil {
		t.Fatalf("Create3DPayment: %v", err)
	}
	if !resp.Success || resp.Status != provider.StatusPending {
		t.Errorf("unexpected response state: %+v", resp)
	}
	if resp.Redirect == nil {
		t.Fatal("redirect descriptor missing")
	}
	if resp.Redirect.ActionURL != "https://sanalpos2.ziraatbank.com.tr/fim/est3Dgate" {
		t.Errorf("action URL = %q", resp.Redirect.ActionURL)
	}

	fields := resp.Redirect.FormFields
	want := map[string]string{
		"clientid":  "190001000",
		"oid":       "ORDER-1",
		"amount":    "123.45",
		"currency":  "949",
		"islemtipi": "Auth",
		"taksit":    "",
		"storetype": "3d_pay",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("form field %s = %q, want %q", k, fields[k], v)
		}
	}
	if fields["rnd"] == "" {
		t.Error("rnd nonce missing")
	}
	if fields["hash"] == "" {
		t.Error("hash missing")
	}
	// The store key must never ride along in the form.
	for k, v := range fields {
		if v == "TRPS1234" {
			t.Errorf("store key leaked into form field %s", k)
		}
	}
	if !strings.Contains(resp.HTML, resp.Redirect.ActionURL) {
		t.Error("auto-submit HTML must post to the action URL")
	}
}

// Pinned signing vector: a fixed rnd drives the full canonical string
// through SHA-512/Base64.
func TestLegacySignVector(t *testing.T) {
	p := newTestProvider(t, testConfig())

	hash, err := p.sign(map[string]string{
		"clientId":     "190001000",
		"orderId":      "ORDER-1",
		"amountMajor":  "123.45",
		"okUrl":        "https://shop.example/ok",
		"failUrl":      "https://shop.example/fail",
		"txnType":      "Auth",
		"installments": "",
		"rnd":          "RND123",
	}, "TRPS1234")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	want := "OJgI1VDrvXfolEVOXAl5FDuqeAOBzEmFhykExdjrwuj1aLLVKKc/Gr72l/AnLy8QBZ3ftnEDgMK3CUHxoAENRw=="
	if hash != want {
		t.Errorf("legacy hash = %q, want %q", hash, want)
	}
}

// In HMAC mode the store key keys the MAC and its canonical slot stays
// empty, so the two modes can never produce the same digest.
func TestHMACSignVector(t *testing.T) {
	conf := testConfig()
	conf["hashMode"] = HashModeHMAC
	p := newTestProvider(t, conf)

	hash, err := p.sign(map[string]string{
		"clientId":     "190001000",
		"orderId":      "ORDER-1",
		"amountMajor":  "123.45",
		"okUrl":        "https://shop.example/ok",
		"failUrl":      "https://shop.example/fail",
		"txnType":      "Auth",
		"installments": "",
		"rnd":          "RND123",
	}, "TRPS1234")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	want := "ohbSxPVgpEy5Vk5dD/7QuGgeUjXzcfyMIVKJXNbY5f9iGwPTA0goh5ushNg3pXpLX7qg6p3TIuLJutYovL8fIg=="
	if hash != want {
		t.Errorf("hmac hash = %q, want %q", hash, want)
	}
}

func TestCreate3DPaymentInvalidAmount(t *testing.T) {
	p := newTestProvider(t, testConfig())

	_, err := p.Create3DPayment(context.Background(), provider.PaymentRequest{
		OrderID:     "ORDER-1",
		AmountMinor: 0,
		Currency:    "TRY",
		SuccessURL:  "https://shop.example/ok",
		FailURL:     "https://shop.example/fail",
	})
	if !provider.IsInvalidAmountError(err) {
		t.Errorf("expected invalid amount error, got %v", err)
	}
}

func TestCreate3DPaymentMissingSecret(t *testing.T) {
	p := NewProvider().(*NestpayProvider)
	conf := testConfig()
	conf["storeKeySecret"] = "MISSING_KEY"
	if err := p.Initialize(conf, testSecrets()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, err := p.Create3DPayment(context.Background(), provider.PaymentRequest{
		OrderID:     "ORDER-1",
		AmountMinor: 100,
		Currency:    "TRY",
		SuccessURL:  "https://shop.example/ok",
		FailURL:     "https://shop.example/fail",
	})
	if !provider.IsConfigError(err) {
		t.Errorf("missing secret must be a config error, got %v", err)
	}
}

func validCallback() map[string]string {
	return map[string]string{
		"clientid":       "190001000",
		"oid":            "ORDER-1",
		"AuthCode":       "P58160",
		"ProcReturnCode": "00",
		"mdStatus":       "1",
		"amount":         "123.45",
		"currency":       "949",
		"rnd":            "RND123",
		"HASH":           "cZPlDBbv7cY1daR8gzTf7Es362CVevG5CiDs6HTHWI3pd+BnrjPxGwSGJ2nwE/Oz6Zgajyq1IjQpN9hoRYpO0g==",
	}
}

func TestVerifyCallbackFixedOrder(t *testing.T) {
	p := newTestProvider(t, testConfig())

	if !p.VerifyCallback(context.Background(), validCallback()) {
		t.Error("valid fixed-order callback must verify")
	}

	tampered := validCallback()
	tampered["amount"] = "999.99"
	if p.VerifyCallback(context.Background(), tampered) {
		t.Error("tampered amount must fail verification")
	}

	noHash := validCallback()
	delete(noHash, "HASH")
	if p.VerifyCallback(context.Background(), noHash) {
		t.Error("callback without hash must fail verification")
	}
}

func TestVerifyCallbackLowercaseHashKey(t *testing.T) {
	p := newTestProvider(t, testConfig())

	data := validCallback()
	data["hash"] = data["HASH"]
	delete(data, "HASH")
	if !p.VerifyCallback(context.Background(), data) {
		t.Error("hash field casing must not matter")
	}
}

// Banks re-case field names between platform versions; a payload with all
// keys upper-cased and one with all keys lower-cased must verify exactly
// like the original.
func TestVerifyCallbackRecasedPayload(t *testing.T) {
	p := newTestProvider(t, testConfig())

	for name, recase := range map[string]func(string) string{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	} {
		t.Run(name, func(t *testing.T) {
			data := make(map[string]string)
			for k, v := range validCallback() {
				data[recase(k)] = v
			}
			if !p.VerifyCallback(context.Background(), data) {
				t.Errorf("%s-cased payload must verify like the original", name)
			}

			data[recase("amount")] = "999.99"
			if p.VerifyCallback(context.Background(), data) {
				t.Errorf("tampered %s-cased payload must still fail", name)
			}
		})
	}
}

func TestVerifyCallbackDynamicHashParams(t *testing.T) {
	p := newTestProvider(t, testConfig())

	data := map[string]string{
		"clientid":       "190001000",
		"oid":            "ORDER-1",
		"AuthCode":       "P58160",
		"ProcReturnCode": "00",
		"mdStatus":       "1",
		"HASHPARAMS":     "clientid:oid:AuthCode:ProcReturnCode:mdStatus",
		"HASH":           "h2L0jrWP97lQhYCAQ/zipa6M7MbjcgK4pjcBaafu816pS/hvQQD/fqZY0hoghkElOw1bLnaVOrSoNzqRsXnGSQ==",
	}
	if !p.VerifyCallback(context.Background(), data) {
		t.Error("valid dynamic-order callback must verify")
	}

	data["AuthCode"] = "FORGED"
	if p.VerifyCallback(context.Background(), data) {
		t.Error("tampered dynamic callback must fail verification")
	}
}

func TestVerifyCallbackMissingSecretReadsFalse(t *testing.T) {
	p := NewProvider().(*NestpayProvider)
	conf := testConfig()
	conf["storeKeySecret"] = "MISSING_KEY"
	if err := p.Initialize(conf, testSecrets()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if p.VerifyCallback(context.Background(), validCallback()) {
		t.Error("missing store key must read as unverified, not as an error")
	}
}

func TestComplete3DPayment(t *testing.T) {
	p := newTestProvider(t, testConfig())

	resp, err := p.Complete3DPayment(context.Background(), validCallback())
	if err != nil {
		t.Fatalf("Complete3DPayment: %v", err)
	}
	if !resp.Success || resp.Status != provider.StatusSuccessful {
		t.Errorf("verified approved callback: %+v", resp)
	}
	if resp.OrderID != "ORDER-1" {
		t.Errorf("OrderID = %q", resp.OrderID)
	}

	// An unverified callback is terminal: no classification happens even
	// though its fields look approved.
	forged := validCallback()
	forged["HASH"] = "Zm9yZ2Vk"
	resp, err = p.Complete3DPayment(context.Background(), forged)
	if err != nil {
		t.Fatalf("Complete3DPayment: %v", err)
	}
	if resp.Success || resp.Status != provider.StatusFailed {
		t.Errorf("forged callback must fail: %+v", resp)
	}
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	if _, err := provider.Get("nestpay"); err != nil {
		t.Errorf("nestpay must self-register: %v", err)
	}
}
