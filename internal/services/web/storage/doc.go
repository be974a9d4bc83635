// Package storage declares persistence interfaces for web-owned cache data.
//
// Cached config API responses are always derived and can be discarded and
// refetched; the config API stays the source of truth.
package storage
