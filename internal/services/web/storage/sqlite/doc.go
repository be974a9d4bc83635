// Package sqlite provides the web cache persistence adapter backed by SQLite.
//
// The store only holds derived config API responses that can be refetched.
package sqlite
