package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(labels map[string]string) *Resolver {
	return NewResolver(labels, zap.NewNop())
}

func TestResolverExactTier(t *testing.T) {
	r := newTestResolver(map[string]string{"Mia Belle": "paid"})

	res := r.Resolve("Mia Belle")
	assert.Equal(t, "paid", res.Label)
	assert.Equal(t, TierExact, res.Tier)
}

func TestResolverNormalizedTier(t *testing.T) {
	r := newTestResolver(map[string]string{" mia belle ": "free"})

	res := r.Resolve("Mia Belle")
	assert.Equal(t, "free", res.Label)
	assert.Equal(t, TierNormalized, res.Tier)
}

func TestResolverAccentFolding(t *testing.T) {
	r := newTestResolver(map[string]string{"maria lopez": "paid"})

	res := r.Resolve("María López")
	assert.Equal(t, "paid", res.Label)
	assert.Equal(t, TierNormalized, res.Tier)
}

func TestResolverSubstringTier(t *testing.T) {
	r := newTestResolver(map[string]string{"Anabel Cruz": "mixta"})

	res := r.Resolve("Anabel")
	assert.Equal(t, "mixta", res.Label)
	assert.Equal(t, TierSubstring, res.Tier)
}

func TestResolverSubstringMatchesShorterKeyInsideLongerName(t *testing.T) {
	// Inherited behavior: "Ana" in the feed also claims "Anabel".
	r := newTestResolver(map[string]string{"Ana": "free"})

	res := r.Resolve("Anabel")
	assert.Equal(t, "free", res.Label)
	assert.Equal(t, TierSubstring, res.Tier)
}

func TestResolverDeterministicFallback(t *testing.T) {
	labels := map[string]string{"Ana": "free", "Anabel Cruz": "paid"}
	first := newTestResolver(labels).Resolve("Anabel")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, newTestResolver(labels).Resolve("Anabel"))
	}
}

func TestResolverUnknown(t *testing.T) {
	r := newTestResolver(map[string]string{"Mia Belle": "paid"})

	res := r.Resolve("Valentina")
	assert.Equal(t, LabelUnknown, res.Label)
	assert.Equal(t, TierNone, res.Tier)
}

func TestCanonicalKeyMergesVariants(t *testing.T) {
	assert.Equal(t, CanonicalKey("María  López"), CanonicalKey("maria lopez"))
}

func TestLoadClassificationMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Mia Belle":"paid"}`), 0o644))

	labels, err := LoadClassificationMap(path)
	require.NoError(t, err)
	assert.Equal(t, "paid", labels["Mia Belle"])

	empty, err := LoadClassificationMap("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = LoadClassificationMap(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadTrackedHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"chatters":{"Alice":{"total_minutes":423.0,"total_hours":7.05,"daily_minutes":{"2026-02-12":423.0}}}}`,
	), 0o644))

	hours, err := LoadTrackedHours(path)
	require.NoError(t, err)
	require.Contains(t, hours, "Alice")
	assert.Equal(t, 423.0, hours["Alice"].TotalMinutes)
	assert.Equal(t, 423.0, hours["Alice"].DailyMinutes["2026-02-12"])
}
