// Package mocks holds testify mocks and lightweight fakes for the ports
// package, shared by the unit tests of core, scheduler and adapters.
package mocks
