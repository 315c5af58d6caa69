// Package testmode provides in-process stand-ins for the user store, the
// weather source and the chat transport. TEST_MODE swaps them in without
// changing the cycle's control flow.
package testmode
