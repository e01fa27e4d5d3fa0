// Package resource bounds the concurrency, memory and IO bandwidth used by
// bitmap store operations.
//
// A nil *Controller imposes no limits.
package resource
