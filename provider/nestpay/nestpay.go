package nestpay

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mstgnz/posgate/provider"
)

// Hash modes supported by est-based gateways. Legacy deployments sign with
// a plain SHA-512 over canonical+storeKey; API-key deployments sign with
// HMAC-SHA512 keyed by the store key, leaving the storeKey slot empty.
const (
	HashModeLegacy = "legacy"
	HashModeHMAC   = "hmac"
)

const (
	defaultTxnType   = "Auth"
	defaultStoreType = "3d_pay"
	defaultLang      = "tr"

	// Callback field that declares the signed field list, colon separated.
	hashParamsField = "HASHPARAMS"
	hashParamsDelim = ":"
)

// NestpayProvider implements the est (NestPay) hosted-page 3D Secure flow
// used by Ziraat, İş Bankası, Akbank and other est-licensed banks.
type NestpayProvider struct {
	clientID       string
	storeKeySecret string
	baseURL        string
	txnType        string
	hashMode       string
	storeType      string
	lang           string
	secrets        provider.SecretStore
}

// NewProvider creates a new uninitialized NestPay provider.
func NewProvider() provider.PaymentProvider {
	return &NestpayProvider{}
}

// GetRequiredConfig returns the configuration fields required for NestPay.
func (p *NestpayProvider) GetRequiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "clientId",
			Required:    true,
			Type:        "string",
			Description: "Merchant number assigned by the bank (Client ID)",
			Example:     "190001000",
			MinLength:   6,
			MaxLength:   20,
		},
		{
			Key:         "storeKeySecret",
			Required:    true,
			Type:        "string",
			Description: "Secret store name under which the 3D store key is kept",
			Example:     "NESTPAY_STORE_KEY",
		},
		{
			Key:         "gatewayBaseUrl",
			Required:    true,
			Type:        "url",
			Description: "Bank 3D gateway base URL",
			Example:     "https://sanalpos2.ziraatbank.com.tr",
		},
		{
			Key:         "txnType",
			Required:    false,
			Type:        "string",
			Description: "Transaction type sent to the gateway (default Auth)",
			Example:     "Auth",
		},
		{
			Key:         "hashMode",
			Required:    false,
			Type:        "string",
			Description: "Signing mode: legacy or hmac (default legacy)",
			Example:     "legacy",
		},
	}
}

// ValidateConfig validates the provided configuration.
func (p *NestpayProvider) ValidateConfig(conf map[string]string) error {
	if err := provider.ValidateConfigFields(p.GetRequiredConfig(), conf); err != nil {
		return err
	}
	if mode := conf["hashMode"]; mode != "" && mode != HashModeLegacy && mode != HashModeHMAC {
		return provider.NewConfigError("hashMode must be legacy or hmac", nil)
	}
	return nil
}

// Initialize applies the merchant configuration and attaches the secret
// store. The store key itself is never copied into the provider; it is
// fetched fresh on every signing and verification.
func (p *NestpayProvider) Initialize(conf map[string]string, secrets provider.SecretStore) error {
	if secrets == nil {
		return provider.NewConfigError("secret store is required", nil)
	}
	p.clientID = conf["clientId"]
	p.storeKeySecret = conf["storeKeySecret"]
	p.baseURL = conf["gatewayBaseUrl"]
	p.txnType = conf["txnType"]
	if p.txnType == "" {
		p.txnType = defaultTxnType
	}
	p.hashMode = conf["hashMode"]
	if p.hashMode == "" {
		p.hashMode = HashModeLegacy
	}
	p.storeType = defaultStoreType
	p.lang = defaultLang
	p.secrets = secrets
	return nil
}

func installmentField(count int) string {
	if count >= 2 {
		return strconv.Itoa(count)
	}
	// Single payments send an empty taksit field, not "1".
	return ""
}

// sign computes the outbound hash for an already ordered canonical field
// map. In legacy mode the store key occupies its canonical slot; in HMAC
// mode the slot stays empty and the key drives the MAC.
func (p *NestpayProvider) sign(fields map[string]string, storeKey string) (string, error) {
	if p.hashMode == HashModeHMAC {
		fields["storeKey"] = ""
		canonical, err := provider.BuildCanonical(provider.GatewayNestpay, provider.OpSign, fields)
		if err != nil {
			return "", err
		}
		return provider.HMACSHA512Base64(canonical, storeKey), nil
	}
	fields["storeKey"] = storeKey
	canonical, err := provider.BuildCanonical(provider.GatewayNestpay, provider.OpSign, fields)
	if err != nil {
		return "", err
	}
	return provider.SHA512Base64(canonical), nil
}

// Create3DPayment builds the signed auto-submit form for the bank's 3D
// Secure page.
func (p *NestpayProvider) Create3DPayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResponse, error) {
	amount, err := provider.FormatMajor(request.AmountMinor)
	if err != nil {
		return nil, err
	}
	storeKey, err := p.secrets.GetSecret(ctx, p.storeKeySecret)
	if err != nil {
		return nil, provider.NewConfigError("store key could not be resolved", err)
	}
	actionURL, err := provider.ResolveActionURL(p.baseURL, "servlet", "/est3Dgate", "/fim/est3Dgate")
	if err != nil {
		return nil, err
	}

	rnd := uuid.New().String()
	taksit := installmentField(request.InstallmentCount)

	hash, err := p.sign(map[string]string{
		"clientId":     p.clientID,
		"orderId":      request.OrderID,
		"amountMajor":  amount,
		"okUrl":        request.SuccessURL,
		"failUrl":      request.FailURL,
		"txnType":      p.txnType,
		"installments": taksit,
		"rnd":          rnd,
	}, storeKey)
	if err != nil {
		return nil, err
	}

	formFields := map[string]string{
		"clientid":  p.clientID,
		"oid":       request.OrderID,
		"amount":    amount,
		"currency":  provider.NumericCurrencyCode(request.Currency),
		"okurl":     request.SuccessURL,
		"failurl":   request.FailURL,
		"islemtipi": p.txnType,
		"taksit":    taksit,
		"rnd":       rnd,
		"hash":      hash,
		"storetype": p.storeType,
		"lang":      p.lang,
	}

	now := time.Now()
	return &provider.PaymentResponse{
		Success: true,
		Status:  provider.StatusPending,
		Message: "3D Secure redirect ready",
		OrderID: request.OrderID,
		Redirect: &provider.RedirectDescriptor{
			ActionURL:  actionURL,
			FormFields: formFields,
		},
		HTML:       provider.AutoSubmitHTML(actionURL, formFields),
		SystemTime: &now,
	}, nil
}

// VerifyCallback recomputes the callback hash and compares it to the
// received HASH value. Deployments that send a HASHPARAMS field declare
// the signed field order themselves; older ones imply the fixed legacy
// order. Any failure, including a missing store key, reads as unverified.
func (p *NestpayProvider) VerifyCallback(ctx context.Context, data map[string]string) bool {
	payload := provider.CallbackPayload(data)

	received, ok := payload.Lookup("HASH")
	if !ok || received == "" {
		return false
	}
	storeKey, err := p.secrets.GetSecret(ctx, p.storeKeySecret)
	if err != nil {
		return false
	}

	var canonical string
	if list, ok := payload.Lookup(hashParamsField); ok && strings.TrimSpace(list) != "" {
		names := provider.ParseHashParams(list, hashParamsDelim)
		canonical = provider.BuildDynamicCanonical(payload, names)
		if p.hashMode != HashModeHMAC {
			canonical += storeKey
		}
	} else {
		fields := map[string]string{
			"clientId":       payload.Get("clientid"),
			"orderId":        payload.Get("oid"),
			"AuthCode":       payload.Get("AuthCode"),
			"ProcReturnCode": payload.Get("ProcReturnCode"),
			"MDStatus":       payload.Get("mdStatus"),
			"amount":         payload.Get("amount"),
			"currency":       payload.Get("currency"),
			"rnd":            payload.Get("rnd"),
		}
		if p.hashMode == HashModeHMAC {
			fields["storeKey"] = ""
		} else {
			fields["storeKey"] = storeKey
		}
		canonical, err = provider.BuildCanonical(provider.GatewayNestpay, provider.OpVerify, fields)
		if err != nil {
			return false
		}
	}

	var expected string
	if p.hashMode == HashModeHMAC {
		expected = provider.HMACSHA512Base64(canonical, storeKey)
	} else {
		expected = provider.SHA512Base64(canonical)
	}
	return provider.DigestEqual(expected, received)
}

// Complete3DPayment verifies the callback and classifies the outcome.
// An unverified callback is terminal and never classified.
func (p *NestpayProvider) Complete3DPayment(ctx context.Context, data map[string]string) (*provider.PaymentResponse, error) {
	payload := provider.CallbackPayload(data)
	now := time.Now()

	if !p.VerifyCallback(ctx, data) {
		return &provider.PaymentResponse{
			Success:    false,
			Status:     provider.StatusFailed,
			Message:    "callback signature could not be verified",
			ErrorCode:  provider.ErrCodeGeneral,
			OrderID:    payload.Get("oid"),
			SystemTime: &now,
		}, nil
	}

	result := provider.ClassifyApproval(payload)
	resp := &provider.PaymentResponse{
		Success:    result.Approved,
		OrderID:    payload.Get("oid"),
		ReasonCode: result.ReasonCode,
		Message:    result.ReasonMessage,
		SystemTime: &now,
	}
	if result.Approved {
		resp.Status = provider.StatusSuccessful
		resp.Message = "payment approved"
	} else {
		resp.Status = provider.StatusFailed
	}
	return resp, nil
}
