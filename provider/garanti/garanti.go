package garanti

import (
	"context"
	"strconv"
	"time"

	"github.com/mstgnz/posgate/provider"
)

const (
	defaultTxnType     = "sales"
	defaultMode        = "PROD"
	defaultAPIVersion  = "v0.01"
	defaultSecureLevel = "3D"

	// Callback field that declares the signed field list, plus separated.
	// Unlike est gateways there is no fixed fallback order: a callback
	// without hashparams cannot be verified.
	hashParamsField = "hashparams"
	hashParamsDelim = "+"
)

// GarantiProvider implements the Garanti VPOS hosted-page 3D Secure flow.
type GarantiProvider struct {
	terminalID     string
	merchantID     string
	provUserID     string
	storeKeySecret string
	passwordSecret string
	baseURL        string
	txnType        string
	mode           string
	secrets        provider.SecretStore
}

// NewProvider creates a new uninitialized Garanti provider.
func NewProvider() provider.PaymentProvider {
	return &GarantiProvider{}
}

// GetRequiredConfig returns the configuration fields required for Garanti.
func (p *GarantiProvider) GetRequiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "terminalId",
			Required:    true,
			Type:        "number",
			Description: "VPOS terminal id, at most 9 digits",
			Example:     "10380183",
			MinLength:   1,
			MaxLength:   9,
		},
		{
			Key:         "merchantId",
			Required:    true,
			Type:        "number",
			Description: "Merchant number assigned by the bank",
			Example:     "7000679",
		},
		{
			Key:         "provUserId",
			Required:    true,
			Type:        "string",
			Description: "Provisioning user id",
			Example:     "PROVAUT",
		},
		{
			Key:         "storeKeySecret",
			Required:    true,
			Type:        "string",
			Description: "Secret store name under which the 3D store key is kept",
			Example:     "GARANTI_STORE_KEY",
		},
		{
			Key:         "passwordSecret",
			Required:    true,
			Type:        "string",
			Description: "Secret store name under which the provision password is kept",
			Example:     "GARANTI_PROVISION_PASSWORD",
		},
		{
			Key:         "gatewayBaseUrl",
			Required:    true,
			Type:        "url",
			Description: "Bank 3D gateway base URL",
			Example:     "https://sanalposprov.garanti.com.tr",
		},
		{
			Key:         "txnType",
			Required:    false,
			Type:        "string",
			Description: "Transaction type sent to the gateway (default sales)",
			Example:     "sales",
		},
		{
			Key:         "mode",
			Required:    false,
			Type:        "string",
			Description: "Gateway mode: PROD or TEST (default PROD)",
			Example:     "PROD",
		},
	}
}

// ValidateConfig validates the provided configuration.
func (p *GarantiProvider) ValidateConfig(conf map[string]string) error {
	return provider.ValidateConfigFields(p.GetRequiredConfig(), conf)
}

// Initialize applies the merchant configuration and attaches the secret
// store. Neither the store key nor the provision password is cached.
func (p *GarantiProvider) Initialize(conf map[string]string, secrets provider.SecretStore) error {
	if secrets == nil {
		return provider.NewConfigError("secret store is required", nil)
	}
	p.terminalID = conf["terminalId"]
	p.merchantID = conf["merchantId"]
	p.provUserID = conf["provUserId"]
	p.storeKeySecret = conf["storeKeySecret"]
	p.passwordSecret = conf["passwordSecret"]
	p.baseURL = conf["gatewayBaseUrl"]
	p.txnType = conf["txnType"]
	if p.txnType == "" {
		p.txnType = defaultTxnType
	}
	p.mode = conf["mode"]
	if p.mode == "" {
		p.mode = defaultMode
	}
	p.secrets = secrets
	return nil
}

func installmentField(count int) string {
	if count >= 2 {
		return strconv.Itoa(count)
	}
	return ""
}

// hashedPassword derives the security hash ingredient from the provision
// password: SHA-1 uppercase hex over password + terminal id zero-padded to
// nine characters.
func hashedPassword(password, terminalID string) string {
	return provider.SHA1HexUpper(password + provider.PadTerminalID(terminalID))
}

// Create3DPayment builds the signed auto-submit form for the bank's 3D
// Secure page. Amounts go on the wire as raw minor units, unconverted.
func (p *GarantiProvider) Create3DPayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResponse, error) {
	amount, err := provider.FormatMinor(request.AmountMinor)
	if err != nil {
		return nil, err
	}
	storeKey, err := p.secrets.GetSecret(ctx, p.storeKeySecret)
	if err != nil {
		return nil, provider.NewConfigError("store key could not be resolved", err)
	}
	password, err := p.secrets.GetSecret(ctx, p.passwordSecret)
	if err != nil {
		return nil, provider.NewConfigError("provision password could not be resolved", err)
	}
	actionURL, err := provider.ResolveActionURL(p.baseURL, "servlet", "/gt3dengine", "/servlet/gt3dengine")
	if err != nil {
		return nil, err
	}

	installments := installmentField(request.InstallmentCount)
	canonical, err := provider.BuildCanonical(provider.GatewayGaranti, provider.OpSign, map[string]string{
		"terminalId":     p.terminalID,
		"orderId":        request.OrderID,
		"amountMinor":    amount,
		"okUrl":          request.SuccessURL,
		"failUrl":        request.FailURL,
		"txnType":        p.txnType,
		"installments":   installments,
		"storeKey":       storeKey,
		"hashedPassword": hashedPassword(password, p.terminalID),
	})
	if err != nil {
		return nil, err
	}
	hash := provider.SHA1HexUpper(canonical)

	formFields := map[string]string{
		"mode":                  p.mode,
		"apiversion":            defaultAPIVersion,
		"secure3dsecuritylevel": defaultSecureLevel,
		"terminalprovuserid":    p.provUserID,
		"terminaluserid":        p.provUserID,
		"terminalmerchantid":    p.merchantID,
		"terminalid":            p.terminalID,
		"orderid":               request.OrderID,
		"txnamount":             amount,
		"txncurrencycode":       provider.NumericCurrencyCode(request.Currency),
		"txntype":               p.txnType,
		"txninstallmentcount":   installments,
		"successurl":            request.SuccessURL,
		"errorurl":              request.FailURL,
		"customeripaddress":     request.CustomerIP,
		"customeremailaddress":  request.CustomerEmail,
		"secure3dhash":          hash,
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

// VerifyCallback recomputes the callback hash from the field order the
// callback itself declares in hashparams. The store key is appended after
// the declared fields; the inbound digest is SHA-1 Base64, unlike the
// uppercase hex used outbound. A callback without hashparams is
// unverifiable and reads as false.
func (p *GarantiProvider) VerifyCallback(ctx context.Context, data map[string]string) bool {
	payload := provider.CallbackPayload(data)

	received := payload.Get("hash")
	if received == "" {
		received = payload.Get("secure3dhash")
	}
	if received == "" {
		return false
	}
	list, ok := payload.Lookup(hashParamsField)
	if !ok || list == "" {
		return false
	}
	storeKey, err := p.secrets.GetSecret(ctx, p.storeKeySecret)
	if err != nil {
		return false
	}

	names := provider.ParseHashParams(list, hashParamsDelim)
	canonical := provider.BuildDynamicCanonical(payload, names) + storeKey
	expected := provider.SHA1Base64(canonical)
	return provider.DigestEqual(expected, received)
}

// Complete3DPayment verifies the callback and classifies the outcome.
func (p *GarantiProvider) Complete3DPayment(ctx context.Context, data map[string]string) (*provider.PaymentResponse, error) {
	payload := provider.CallbackPayload(data)
	now := time.Now()

	if !p.VerifyCallback(ctx, data) {
		return &provider.PaymentResponse{
			Success:    false,
			Status:     provider.StatusFailed,
			Message:    "callback signature could not be verified",
			ErrorCode:  provider.ErrCodeGeneral,
			OrderID:    payload.Get("orderid"),
			SystemTime: &now,
		}, nil
	}

	result := provider.ClassifyApproval(payload)
	resp := &provider.PaymentResponse{
		Success:    result.Approved,
		OrderID:    payload.Get("orderid"),
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
