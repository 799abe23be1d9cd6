// Package i18n keys user facing command text so it can be replaced without
// touching the commands.
package i18n

import "sync"

var overrides sync.Map

// T returns the text registered for key, or defaultValue.
func T(key string, defaultValue string) string {
	if v, ok := overrides.Load(key); ok {
		return v.(string)
	}
	return defaultValue
}

// Override registers text for key. Commands read their text when they are
// built, so overrides must be registered before that.
func Override(key, text string) {
	overrides.Store(key, text)
}
