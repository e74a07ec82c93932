// Package storage defines the persisted slot abstraction: a flat mapping
// from slot keys to opaque byte values.
package storage

// Well-known slot keys.
const (
	KeyArticles   = "admin_blog_posts"
	KeyAdminToken = "admin_token"
	KeyThemeMode  = "themeMode"
)

// Slots is the interface for slot operations. Get returns an error
// wrapping apperr.ErrNotFound when the key has never been set.
type Slots interface {
	// Get returns the value stored under key.
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every key currently set.
	Keys() ([]string, error)
}
