// Package ratelimit implements fixed-window request admission.
//
// A window is a counter keyed by client identity that a CounterStore increments
// atomically and expires after the window length. The store is shared by every
// process instance, so no in-process locking is involved in the decision.
//
// Callers treat a store error as "no decision" and admit the request.
package ratelimit
