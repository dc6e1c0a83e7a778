package markdown

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// SplitFrontMatter separates a leading YAML block delimited by "---" lines
// from the markdown body. When there is no block, or it is unterminated or
// not valid YAML, the metadata is nil and the whole input is the body.
func SplitFrontMatter(raw string) (map[string]any, string) {
	data := []byte(raw)
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(frontMatterDelim)) {
		return nil, raw
	}

	rest := trimmed[len(frontMatterDelim):]
	idx := bytes.Index(rest, []byte("\n"+frontMatterDelim))
	if idx < 0 {
		return nil, raw
	}

	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(frontMatterDelim):]), "\n\r")

	var meta map[string]any
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, raw
	}
	return meta, body
}
