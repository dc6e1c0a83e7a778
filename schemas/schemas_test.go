package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slurpgg/bloom-wikisync/internal/schemas"
)

var schemaFiles = []string{
	"faction.schema.json",
	"biome.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_Compile(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			_, err := schemas.Load(schemaFile)
			assert.NoError(t, err)
		})
	}
}

func TestFactionSchema_HexColorsMustBeUppercase(t *testing.T) {
	schema, err := schemas.Load("faction.schema.json")
	require.NoError(t, err)

	doc := func(primary string) []byte {
		data, err := json.Marshal(map[string]any{
			"id":           "iron-covenant",
			"name":         "Iron Covenant",
			"launchStatus": "ea-launch",
			"colors":       map[string]any{"primary": primary, "secondary": "#000000", "accent": "#FFFFFF"},
		})
		require.NoError(t, err)
		return data
	}

	assert.NoError(t, schema.Validate(doc("#1E3A8A")))
	assert.Error(t, schema.Validate(doc("#1e3a8a")))
	assert.Error(t, schema.Validate(doc("#FFF")))
	assert.Error(t, schema.Validate(doc("1E3A8A")))
}

func TestBiomeSchema_ThreatLevelAndID(t *testing.T) {
	schema, err := schemas.Load("biome.schema.json")
	require.NoError(t, err)

	valid := `{"id": "ashfall-wastes", "name": "AshfallWastes", "threatLevel": "High", "launchStatus": "ea-launch",
		"visualCharacteristics": {"climate": "Arid", "weather": ["ash storms"]}}`
	assert.NoError(t, schema.Validate([]byte(valid)))

	var biome map[string]any
	require.NoError(t, json.Unmarshal([]byte(valid), &biome))
	biome["threatLevel"] = "Apocalyptic"
	biome["id"] = "Ashfall Wastes"
	invalid, err := json.Marshal(biome)
	require.NoError(t, err)
	err = schema.Validate(invalid)
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2)
}
