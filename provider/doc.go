// Package provider defines the payment provider contract and the shared
// signing machinery used by the bank gateway implementations: canonical
// string construction, digest primitives, amount and currency formatting,
// callback approval classification and the provider registry.
//
// Gateway implementations live in subpackages and register themselves into
// DefaultRegistry from their init functions; importing a subpackage for
// side effects is enough to make its provider available.
package provider
