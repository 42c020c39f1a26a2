package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbridge/internal/entity"
)

func TestHaversineKm(t *testing.T) {
	assert.Zero(t, HaversineKm(12.97, 77.59, 12.97, 77.59))

	// One degree of latitude is roughly 111.2 km everywhere.
	assert.InDelta(t, 111.2, HaversineKm(0, 0, 1, 0), 0.5)
}

func TestNewScorerDefaultsRadius(t *testing.T) {
	assert.Equal(t, 20.0, NewScorer(0).MaxDistanceKm)
	assert.Equal(t, 50.0, NewScorer(50).MaxDistanceKm)
}

func donor(name, group string, lat, lon float64, verified, active bool) entity.Donor {
	return entity.Donor{
		Name:       name,
		BloodGroup: group,
		Latitude:   lat,
		Longitude:  lon,
		Verified:   verified,
		Active:     active,
	}
}

func TestMatchFiltersAndRanks(t *testing.T) {
	needer := entity.Needer{
		BloodGroup: "B+",
		Latitude:   12.97,
		Longitude:  77.59,
		Verified:   true,
	}
	donors := []entity.Donor{
		donor("exact nearby", "B+", 12.98, 77.59, true, true),
		donor("universal farther", "O-", 13.02, 77.59, true, true),
		donor("incompatible", "A+", 12.98, 77.59, true, true),
		donor("inactive", "B+", 12.98, 77.59, true, false),
		donor("out of range", "B+", 13.27, 77.59, true, true),
	}

	got := NewScorer(20).Match(needer, donors)
	require.Len(t, got, 2)
	assert.Equal(t, "exact nearby", got[0].Donor.Name)
	assert.Equal(t, "universal farther", got[1].Donor.Name)
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestMatchScoreBonusesAndClamp(t *testing.T) {
	needer := entity.Needer{BloodGroup: "B+", Verified: true}

	// Zero distance, exact group, both verified: bonuses would push past 100.
	top := NewScorer(20).Match(needer, []entity.Donor{
		donor("perfect", "B+", 0, 0, true, true),
	})
	require.Len(t, top, 1)
	assert.Equal(t, 100.0, top[0].Score)

	// Compatible but not exact, donor unverified: base score minus distance.
	base := NewScorer(20).Match(needer, []entity.Donor{
		donor("plain", "O+", 0.09, 0, false, true),
	})
	require.Len(t, base, 1)
	assert.InDelta(t, 85.0, base[0].Score, 1.0)
}

func TestMatchUniversalRecipient(t *testing.T) {
	needer := entity.Needer{BloodGroup: "AB+"}
	donors := []entity.Donor{
		donor("a", "A-", 0, 0, false, true),
		donor("b", "O+", 0, 0, false, true),
		donor("c", "AB-", 0, 0, false, true),
	}
	assert.Len(t, NewScorer(20).Match(needer, donors), 3)
}

func TestMatchUnknownGroupMatchesNothing(t *testing.T) {
	needer := entity.Needer{BloodGroup: "X+"}
	donors := []entity.Donor{donor("a", "O-", 0, 0, false, true)}
	assert.Empty(t, NewScorer(20).Match(needer, donors))
}
