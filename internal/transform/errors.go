package transform

import "fmt"

// MissingPageError is returned when a page has not been fetched into the cache.
type MissingPageError struct {
	Slug string
	Path string
}

func (e *MissingPageError) Error() string {
	return fmt.Sprintf("cached wiki page %q not found at %s (run the fetch stage first)", e.Slug, e.Path)
}

// ConfigError reports a wiki config that cannot drive a transform.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("transform config error: %s", e.Message)
}
