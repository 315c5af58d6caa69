// Package ports defines the interfaces between the change detection engine and
// its adapters: weather source, stores, messaging transport and
// infrastructure. Adapters implement them; tests replace them with mocks from
// internal/mocks.
package ports
