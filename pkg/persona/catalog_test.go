package persona

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinitions() []Definition {
	return []Definition{
		{ID: "violet", Name: "Violet", SystemPrompt: "You are VIOLET.", Temperature: 0.7},
		{ID: "storm", Name: "Storm", SystemPrompt: "You are STORM.", Temperature: 0.4},
		{ID: "flux", Name: "Flux", SystemPrompt: "You are FLUX.", Temperature: 0.6},
	}
}

func names(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func TestNewCatalog_EnsembleFollowsDisplayOrder(t *testing.T) {
	// Ensemble listed out of order; display order still comes from the catalog.
	c, err := NewCatalog(testDefinitions(), []string{"flux", "violet"})
	require.NoError(t, err)

	set, err := c.ActiveSet(EnsembleMode())
	require.NoError(t, err)
	assert.Equal(t, []string{"Violet", "Flux"}, names(set))
	assert.Equal(t, 2, c.MaxSetSize())
}

func TestNewCatalog_EmptyEnsembleMeansEveryone(t *testing.T) {
	c, err := NewCatalog(testDefinitions(), nil)
	require.NoError(t, err)

	set, err := c.ActiveSet(EnsembleMode())
	require.NoError(t, err)
	assert.Equal(t, []string{"Violet", "Storm", "Flux"}, names(set))
	assert.Equal(t, 3, c.MaxSetSize())
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name     string
		defs     []Definition
		ensemble []string
	}{
		{name: "empty", defs: nil},
		{name: "duplicate id", defs: []Definition{
			{ID: "a", Name: "A", SystemPrompt: "p", Temperature: 0.5},
			{ID: "A", Name: "A2", SystemPrompt: "p", Temperature: 0.5},
		}},
		{name: "missing prompt", defs: []Definition{{ID: "a", Name: "A", Temperature: 0.5}}},
		{name: "temperature out of range", defs: []Definition{{ID: "a", Name: "A", SystemPrompt: "p", Temperature: 2.5}}},
		{name: "unknown ensemble member", defs: testDefinitions(), ensemble: []string{"ghost"}},
		{name: "ensemble too large", defs: append(testDefinitions(),
			Definition{ID: "echo", Name: "Echo", SystemPrompt: "p", Temperature: 0.5}), ensemble: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs, tt.ensemble)
			assert.Error(t, err)
		})
	}
}

func TestCatalog_ExclusiveMode(t *testing.T) {
	c, err := NewCatalog(testDefinitions(), nil)
	require.NoError(t, err)

	mode, err := c.ResolveMode("exclusive", "Storm")
	require.NoError(t, err)
	assert.Equal(t, ExclusiveMode("storm"), mode)

	set, err := c.ActiveSet(mode)
	require.NoError(t, err)
	assert.Equal(t, []string{"Storm"}, names(set))
}

func TestCatalog_ResolveModeErrors(t *testing.T) {
	c, err := NewCatalog(testDefinitions(), nil)
	require.NoError(t, err)

	_, err = c.ResolveMode("exclusive", "ghost")
	assert.True(t, errors.Is(err, ErrUnknownPersona))

	_, err = c.ResolveMode("round-robin", "")
	assert.Error(t, err)

	mode, err := c.ResolveMode("", "")
	require.NoError(t, err)
	assert.Equal(t, EnsembleMode(), mode)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c, err := NewCatalog(testDefinitions(), nil)
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "Mutated"

	assert.Equal(t, "Violet", c.First().Name)
}
