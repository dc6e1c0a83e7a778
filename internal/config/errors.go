package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid settings. It is always fatal
// and never retried.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Problems[0])
	}
	var sb strings.Builder
	sb.WriteString("configuration error:")
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p)
	}
	return sb.String()
}
