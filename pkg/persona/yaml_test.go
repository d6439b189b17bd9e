package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
personas:
  - id: violet
    name: Violet
    temperature: 0.7
    greeting: "Online. What's the plan?"
    system_prompt: |
      You are VIOLET, the resilience engine.
  - id: storm
    name: Storm
    temperature: 0.4
    system_prompt: |
      You are STORM, the optimization engine.
ensemble: [violet, storm]
`

func TestParseCatalogYAML(t *testing.T) {
	c, err := ParseCatalogYAML([]byte(catalogYAML))
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "violet", all[0].ID)
	assert.Equal(t, "Online. What's the plan?", all[0].Greeting)
	assert.Contains(t, all[1].SystemPrompt, "STORM")
	assert.InDelta(t, 0.4, all[1].Temperature, 1e-9)
}

func TestParseCatalogYAML_Empty(t *testing.T) {
	_, err := ParseCatalogYAML([]byte("   \n"))
	assert.Error(t, err)
}

func TestParseCatalogYAML_Malformed(t *testing.T) {
	_, err := ParseCatalogYAML([]byte("personas: [unclosed"))
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Violet", c.First().Name)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadCatalogFile_ShippedExample(t *testing.T) {
	cat, err := LoadCatalogFile("../../configs/personas.example.yaml")
	require.NoError(t, err)

	set, err := cat.ActiveSet(EnsembleMode())
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "violet", set[0].ID)
	assert.Equal(t, "storm", set[1].ID)
	assert.NotEmpty(t, cat.First().Greeting)
}
