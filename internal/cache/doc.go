// Package cache holds recently read blobs in memory under a byte budget.
//
// Entries are whole blobs keyed by name. Eviction is least-recently-used.
// When a resource.Controller is attached, cached bytes count against its
// memory limit and entries that do not fit are simply not cached.
package cache
