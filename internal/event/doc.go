// Package event defines the immutable facts recorded in the client history
// log: the event envelope, its payload variants, and the value types they
// carry (civil dates, money, rates, taxes, billing periods, invoices).
//
// Events are the sole unit of mutation. State is never stored; it is always
// derived by folding the ordered event sequence (see internal/project).
package event
