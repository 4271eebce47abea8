package reconcile

import (
	"testing"

	"github.com/carlosribasgomez/chatters-dashboard/internal/identity"
	"github.com/carlosribasgomez/chatters-dashboard/internal/source/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(Params{Log: zap.NewNop()})
}

func intPtr(v int) *int { return &v }

func snapshotFiles(reversed bool) [][]domain.CreatorStatSnapshot {
	first := domain.CreatorStatSnapshot{
		Creator:          "Mia",
		NewFans:          5,
		TotalEarningsNet: decimal.NewFromInt(100),
		ActiveFans:       intPtr(100),
	}
	second := domain.CreatorStatSnapshot{
		Creator:          "Mia",
		NewFans:          3,
		TotalEarningsNet: decimal.NewFromInt(200),
		ActiveFans:       intPtr(120),
	}
	if reversed {
		return [][]domain.CreatorStatSnapshot{{second}, {first}}
	}
	return [][]domain.CreatorStatSnapshot{{first}, {second}}
}

func TestMergePolicyCorrectness(t *testing.T) {
	merged := newTestReconciler().MergeSnapshots(snapshotFiles(false))

	row := merged[identity.CanonicalKey("Mia")]
	require.NotNil(t, row)
	assert.Equal(t, 8, row.NewFans)
	assert.Equal(t, "300", row.TotalEarningsNet.String())
	assert.Equal(t, 120, row.ActiveFans)
}

func TestMergeLatestWinsFollowsLoadOrder(t *testing.T) {
	merged := newTestReconciler().MergeSnapshots(snapshotFiles(true))

	row := merged[identity.CanonicalKey("Mia")]
	require.NotNil(t, row)
	// Additive fields are order-independent; latest-wins takes whichever
	// file loaded last.
	assert.Equal(t, 8, row.NewFans)
	assert.Equal(t, 100, row.ActiveFans)
}

func TestMergeBlankLaterValueDoesNotErase(t *testing.T) {
	group := "VIP"
	files := [][]domain.CreatorStatSnapshot{
		{{Creator: "Mia", ActiveFans: intPtr(100), Group: &group}},
		{{Creator: "Mia"}}, // later file left the state columns blank
	}

	row := newTestReconciler().MergeSnapshots(files)[identity.CanonicalKey("Mia")]
	require.NotNil(t, row)
	assert.Equal(t, 100, row.ActiveFans)
	assert.Equal(t, "VIP", row.Group)
}

func TestMergeMultiFileEqualsSingleComprehensiveFile(t *testing.T) {
	split := [][]domain.CreatorStatSnapshot{
		{{Creator: "Mia", NewFans: 5, TipsNet: decimal.NewFromInt(10), ExpiredFansChange: -2}},
		{{Creator: "Mia", NewFans: 3, TipsNet: decimal.NewFromInt(15), ExpiredFansChange: 1}},
	}
	comprehensive := [][]domain.CreatorStatSnapshot{
		{{Creator: "Mia", NewFans: 8, TipsNet: decimal.NewFromInt(25), ExpiredFansChange: -1}},
	}

	r := newTestReconciler()
	got := r.MergeSnapshots(split)[identity.CanonicalKey("Mia")]
	want := r.MergeSnapshots(comprehensive)[identity.CanonicalKey("Mia")]

	assert.Equal(t, want.NewFans, got.NewFans)
	assert.True(t, want.TipsNet.Equal(got.TipsNet))
	assert.Equal(t, want.ExpiredFansChange, got.ExpiredFansChange)
}

func TestMergeDefaults(t *testing.T) {
	row := newTestReconciler().MergeSnapshots([][]domain.CreatorStatSnapshot{
		{{Creator: "Mia"}},
	})[identity.CanonicalKey("Mia")]
	require.NotNil(t, row)
	assert.Equal(t, "N/A", row.AvgSubLength)
	assert.Equal(t, "", row.Group)
	assert.Zero(t, row.ActiveFans)
}

func TestEverySnapshotFieldHasDeclaredPolicy(t *testing.T) {
	// 8 flow fields + 11 state fields; a new snapshot column must be
	// tagged here before it can ship.
	additive, latest := 0, 0
	for _, policy := range FieldPolicies {
		switch policy {
		case PolicyAdditive:
			additive++
		case PolicyLatestWins:
			latest++
		default:
			t.Fatalf("unexpected policy %q", policy)
		}
	}
	assert.Equal(t, 8, additive)
	assert.Equal(t, 11, latest)
}
