package types

// TokenType classifies a design token value.
type TokenType string

// Token types understood by the style pipeline.
const (
	TokenTypeColor      TokenType = "color"
	TokenTypeFontFamily TokenType = "fontFamily"
	TokenTypeFontSize   TokenType = "fontSize"
	TokenTypeFontWeight TokenType = "fontWeight"
	TokenTypeSpacing    TokenType = "spacing"
	TokenTypeDimension  TokenType = "dimension"
)

// TokenValue is a single design token in Style Dictionary format.
type TokenValue struct {
	Value       string    `json:"value"`
	Type        TokenType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// TokenMap maps token names to values.
type TokenMap map[string]TokenValue

// DesignTokens groups token maps by category.
type DesignTokens struct {
	Color      TokenMap `json:"color"`
	Typography TokenMap `json:"typography"`
}

// Count returns the total number of tokens across categories.
func (d *DesignTokens) Count() int {
	return len(d.Color) + len(d.Typography)
}
