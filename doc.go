// Package posgate provides a multi-gateway 3-D Secure signing and callback
// verification engine for Turkish bank virtual POS integrations. It builds the
// signed hosted-page redirect forms, verifies the hashes banks send back on
// the return leg, and classifies the final authorization outcome behind a
// single, standardized API.
//
// # Overview
//
// Every Turkish bank virtual POS speaks one of a few protocol dialects, each
// with its own canonical string layout, digest algorithm, and callback hash
// scheme. PosGate standardizes NestPay-style gateways (Ziraat, İşbank,
// Halkbank and others) and Garanti VPOS into one consistent interface so the
// calling application never touches a bank-specific hash rule.
//
// # Architecture
//
// The 3-D Secure hosted-page flow follows this pattern:
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   Your Apps     │◄──►│    PosGate      │◄──►│   Bank 3-D      │
//	│   (Merchants)   │    │   (Gateway)     │    │   Secure Pages  │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// # Supported Providers
//
// Currently supported gateway protocols include:
//   - NestPay: shared platform of Ziraat, İşbank, Halkbank, Akbank and more,
//     with both the legacy SHA-512 and the HMAC-SHA512 hash versions
//   - Garanti VPOS: Garanti BBVA's gateway with its SHA-1 based scheme and
//     hashed provision password
//
// # Quick Start
//
// Basic usage example:
//
//	package main
//
//	import (
//	    "context"
//	    "github.com/mstgnz/posgate/infra/config"
//	    "github.com/mstgnz/posgate/provider"
//	    _ "github.com/mstgnz/posgate/provider/nestpay" // Import to register provider
//	)
//
//	func main() {
//	    // Create payment service
//	    service := provider.NewPaymentService()
//
//	    // Configure provider (secret material stays in the secret store)
//	    conf := map[string]string{
//	        "clientId":       "190001000",
//	        "storeKeySecret": "NESTPAY_STORE_KEY",
//	        "gatewayBaseUrl": "https://sanalpos2.ziraatbank.com.tr",
//	    }
//	    secrets := config.NewEnvSecretStore("")
//
//	    // Add provider
//	    err := service.AddProvider("nestpay", conf, secrets)
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // Create payment request
//	    paymentReq := provider.PaymentRequest{
//	        OrderID:     "ORDER-1",
//	        AmountMinor: 12345, // 123.45 TRY
//	        Currency:    "TRY",
//	        SuccessURL:  "https://shop.example/ok",
//	        FailURL:     "https://shop.example/fail",
//	    }
//
//	    // Build the signed redirect
//	    ctx := context.Background()
//	    response, err := service.Create3DPayment(ctx, "nestpay", paymentReq)
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // Handle response
//	    if response.Success {
//	        // Serve response.HTML to the shopper's browser; it auto-submits
//	        // the signed form to the bank's 3-D Secure page.
//	        fmt.Println(response.Redirect.ActionURL)
//	    }
//	}
//
// # Callback Verification
//
// When the bank posts the shopper back, verify before trusting anything:
//
//	verified := service.VerifyCallback(ctx, "nestpay", callbackData)
//	if !verified {
//	    // Treat as forged; never read approval fields from an unverified callback.
//	}
//
//	// Or let Complete3DPayment verify and classify in one step
//	resp, err := service.Complete3DPayment(ctx, "nestpay", callbackData)
//
// # Secret Handling
//
// Store keys and provision passwords are never placed in provider
// configuration maps. Configuration carries secret names; the actual values
// are resolved per request through a SecretStore, so key rotation takes
// effect without restarting anything. Two stores ship out of the box:
//
//   - EnvSecretStore: reads secrets from environment variables
//   - SQLiteSecretStore: persists secrets in a local SQLite database
//
// # HTTP API
//
// PosGate also provides a REST API for integration:
//
//	# Build a signed 3-D payment form
//	POST /v1/payments/{provider}
//	Content-Type: application/json
//
//	# Verify a callback payload without completing it
//	POST /v1/verify/{provider}
//
//	# List configured providers
//	GET /v1/providers
//
// # Callbacks
//
// Bank return legs are handled automatically:
//
//   - Callback URLs: /callback/{provider}?successUrl={url}&errorUrl={url}
//
// The handler verifies the hash, classifies approval, and redirects the
// shopper to the merchant's success or error URL with the outcome attached.
//
// # Logging and Analytics
//
// PosGate integrates with OpenSearch for signature event logging:
//
//   - Per-provider signing and verification events
//   - Unverified callback tracking
//   - Reason code and latency aggregations
//
// Secret material is masked before anything reaches a log sink.
//
// # Configuration
//
// Configuration can be done via environment variables or programmatically:
//
//	# Environment variables
//	NESTPAY_CLIENT_ID=190001000
//	NESTPAY_STORE_KEY_SECRET=NESTPAY_STORE_KEY
//	NESTPAY_GATEWAY_BASE_URL=https://sanalpos2.ziraatbank.com.tr
//
//	# Or programmatically
//	conf := map[string]string{
//	    "clientId":       "190001000",
//	    "storeKeySecret": "NESTPAY_STORE_KEY",
//	    "gatewayBaseUrl": "https://sanalpos2.ziraatbank.com.tr",
//	}
//
// # Security Features
//
// PosGate includes several security features:
//
//   - Constant-shape digest comparison on callback hashes
//   - Boolean-only verification results, no oracle detail leakage
//   - Per-request secret resolution for rotation safety
//   - IP whitelisting and request validation middleware
//   - Log masking for store keys, passwords, and hashes
//
// # Development and Testing
//
// Both providers support the banks' published test terminals. Golden hash
// vectors for every digest mode live alongside the provider tests.
//
// # Contributing
//
// To add a new gateway protocol:
//
//  1. Implement the provider.PaymentProvider interface
//  2. Add the provider package under provider/{provider}/
//  3. Register the provider in provider/{provider}/register.go
//  4. Add hash vector tests covering sign and verify
//  5. Submit a pull request
//
// For more information, visit: https://github.com/mstgnz/posgate
package posgate
