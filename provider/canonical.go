package provider

import (
	"fmt"
	"strings"
)

// Gateway identifies a bank protocol family. A canonical string is never
// built without first fixing the concatenation order by gateway identity.
type Gateway string

const (
	GatewayNestpay Gateway = "nestpay"
	GatewayGaranti Gateway = "garanti"
)

// Operation distinguishes the outbound signing order from the inbound
// callback verification order for the same gateway.
type Operation string

const (
	OpSign   Operation = "sign"
	OpVerify Operation = "verify"
)

// fieldOrders is the declarative order table: gateway x operation -> the
// exact field list the protocol concatenates. The storeKey and
// hashedPassword entries are slots like any other; the provider fills
// them with the resolved secret before building.
//
// Gateways with a dynamically declared order (garanti callbacks) have no
// entry here; their order comes from the callback's hashparams field.
var fieldOrders = map[Gateway]map[Operation][]string{
	GatewayNestpay: {
		OpSign:   {"clientId", "orderId", "amountMajor", "okUrl", "failUrl", "txnType", "installments", "rnd", "storeKey"},
		OpVerify: {"clientId", "orderId", "AuthCode", "ProcReturnCode", "MDStatus", "amount", "currency", "rnd", "storeKey"},
	},
	GatewayGaranti: {
		OpSign: {"terminalId", "orderId", "amountMinor", "okUrl", "failUrl", "txnType", "installments", "storeKey", "hashedPassword"},
	},
}

// FieldOrder returns the declared field order for a gateway/operation pair.
func FieldOrder(gateway Gateway, operation Operation) ([]string, error) {
	ops, ok := fieldOrders[gateway]
	if !ok {
		return nil, fmt.Errorf("unknown gateway %q", gateway)
	}
	order, ok := ops[operation]
	if !ok {
		return nil, fmt.Errorf("gateway %q has no fixed field order for operation %q", gateway, operation)
	}
	return order, nil
}

// BuildCanonical concatenates field values with no separators in the exact
// order the gateway declares for the operation. Missing fields are emitted
// as empty strings, never omitted: dropping a slot would shift the
// concatenation and silently break the signature.
func BuildCanonical(gateway Gateway, operation Operation, fields map[string]string) (string, error) {
	order, err := FieldOrder(gateway, operation)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, name := range order {
		sb.WriteString(fields[name])
	}
	return sb.String(), nil
}

// CallbackPayload is the raw key/value map received from a gateway.
// Gateways vary field letter-casing across deployments, so all lookups
// resolve keys case-insensitively.
type CallbackPayload map[string]string

// Get returns the value for key, resolving case-insensitively. Exact
// matches win over case-folded ones.
func (p CallbackPayload) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Lookup returns the value for key and whether any casing of it exists.
func (p CallbackPayload) Lookup(key string) (string, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// ParseHashParams splits a gateway-declared signed-field list on the given
// delimiter, dropping empty entries.
func ParseHashParams(list, delim string) []string {
	parts := strings.Split(list, delim)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// BuildDynamicCanonical concatenates payload values in the order declared
// by a parsed hashparams list, resolving each name case-insensitively.
// Names absent from the payload contribute an empty string.
func BuildDynamicCanonical(payload CallbackPayload, names []string) string {
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(payload.Get(name))
	}
	return sb.String()
}

// PadTerminalID left-pads a terminal id with zeros to 9 characters, the
// width the VPOS password pre-hash requires.
func PadTerminalID(id string) string {
	if len(id) >= 9 {
		return id
	}
	return strings.Repeat("0", 9-len(id)) + id
}
