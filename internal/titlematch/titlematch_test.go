// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package titlematch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "solid state batteries", "solid state batteries", 1.0},
		{"identical modulo case", "Solid State Batteries", "solid state batteries", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"half overlap", "a b c d", "a b x y", 2.0 / 6.0},
		{"duplicate words count once", "a a b", "a b", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "a b", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestResolveExactMember(t *testing.T) {
	canonical := []string{
		"Ionic Conductivity in Garnet Electrolytes",
		"Deep Learning for Molecular Design",
		"Self-Healing Polymers for Flexible Electronics",
	}
	for _, title := range canonical {
		matched, score, err := Resolve(title, canonical)
		require.NoError(t, err)
		assert.Equal(t, title, matched)
		assert.Equal(t, 1.0, score)
	}
}

func TestResolveReturnsMemberOfCanonicalSet(t *testing.T) {
	canonical := []string{"paper one about zeolites", "paper two about perovskites"}
	candidates := []string{
		"Paper One: Zeolites",
		"completely unrelated text",
		"",
		"perovskites",
	}
	for _, c := range candidates {
		matched, score, err := Resolve(c, canonical)
		require.NoError(t, err)
		assert.Contains(t, canonical, matched)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestResolveMangledTitle(t *testing.T) {
	canonical := []string{
		"A Machine Learning Approach to Catalyst Discovery",
		"Thermal Transport in Two-Dimensional Materials",
	}
	matched, score, err := Resolve("machine learning approach for catalyst discovery", canonical)
	require.NoError(t, err)
	assert.Equal(t, canonical[0], matched)
	assert.Greater(t, score, 0.5)
}

func TestResolveTieBreaksOnFirstMaximum(t *testing.T) {
	// Both canonical titles have identical similarity to the candidate;
	// the first one in enumeration order wins.
	canonical := []string{"alpha shared", "beta shared"}
	matched, _, err := Resolve("shared", canonical)
	require.NoError(t, err)
	assert.Equal(t, "alpha shared", matched)
}

func TestResolveEmptyCanonicalSet(t *testing.T) {
	_, _, err := Resolve("anything", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canonical title set is empty")
}

func TestResolveGenerated(t *testing.T) {
	canonical := []string{"Ionic Conductivity in Garnet Electrolytes"}

	var buf bytes.Buffer
	matched, err := ResolveGenerated(&buf, `  "Ionic Conductivity in Garnet Electrolytes"  `, canonical)
	require.NoError(t, err)
	assert.Equal(t, canonical[0], matched)
	assert.Empty(t, buf.String())
}

func TestResolveGeneratedWarnsOnLowConfidence(t *testing.T) {
	canonical := []string{"Ionic Conductivity in Garnet Electrolytes"}

	var buf bytes.Buffer
	matched, err := ResolveGenerated(&buf, "totally unrelated words here", canonical)
	require.NoError(t, err)
	// Best guess is still returned.
	assert.Equal(t, canonical[0], matched)
	assert.Contains(t, buf.String(), "low-confidence title match")
}

func TestContainsSimilar(t *testing.T) {
	list := []string{
		"Ionic Conductivity in Garnet Electrolytes",
		"Deep Learning for Molecular Design",
	}

	assert.True(t, ContainsSimilar(list, "ionic conductivity in garnet electrolytes", ContainmentThreshold))
	assert.True(t, ContainsSimilar(list, `"Deep Learning for Molecular Design"`, ContainmentThreshold))
	assert.False(t, ContainsSimilar(list, "quantum dot solar cells", ContainmentThreshold))
	assert.False(t, ContainsSimilar(nil, "anything", ContainmentThreshold))
}

func TestTrimGenerated(t *testing.T) {
	assert.Equal(t, "A Title", TrimGenerated(`  "A Title"  `))
	assert.Equal(t, "A Title", TrimGenerated("A Title"))
	assert.Equal(t, "", TrimGenerated(`""`))
}
