package match

import (
	"math"
	"sort"

	"bloodbridge/constants"
	"bloodbridge/internal/entity"
)

const (
	earthRadiusKm        = 6371.0
	defaultMaxDistanceKm = 20.0

	distanceWeight    = 30.0
	exactMatchBonus   = 10.0
	bothVerifiedBonus = 5.0
)

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Candidate is one matched donor with its computed distance and score.
type Candidate struct {
	Donor      entity.Donor `json:"donor"`
	DistanceKm float64      `json:"distanceKm"`
	Score      float64      `json:"score"`
}

// Scorer ranks donors for a needer by blood compatibility, proximity and
// verification status.
type Scorer struct {
	MaxDistanceKm float64
}

func NewScorer(maxDistanceKm float64) *Scorer {
	if maxDistanceKm <= 0 {
		maxDistanceKm = defaultMaxDistanceKm
	}
	return &Scorer{MaxDistanceKm: maxDistanceKm}
}

// Match filters donors to compatible, active ones within range and returns
// them sorted by score, best first.
func (s *Scorer) Match(needer entity.Needer, donors []entity.Donor) []Candidate {
	compatible := constants.CompatibleDonorGroups(constants.BloodGroup(needer.BloodGroup))

	var out []Candidate
	for _, d := range donors {
		if !d.Active {
			continue
		}
		if !groupIn(d.BloodGroup, compatible) {
			continue
		}
		dist := HaversineKm(needer.Latitude, needer.Longitude, d.Latitude, d.Longitude)
		if dist > s.MaxDistanceKm {
			continue
		}
		out = append(out, Candidate{
			Donor:      d,
			DistanceKm: dist,
			Score:      s.score(needer, d, dist),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// score starts at 100, loses up to distanceWeight points linearly with
// distance, and earns bonuses for an exact group match and for both parties
// being document-verified. Clamped to 0..100.
func (s *Scorer) score(needer entity.Needer, donor entity.Donor, distanceKm float64) float64 {
	score := 100.0 - (distanceKm/s.MaxDistanceKm)*distanceWeight
	if donor.BloodGroup == needer.BloodGroup {
		score += exactMatchBonus
	}
	if donor.Verified && needer.Verified {
		score += bothVerifiedBonus
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func groupIn(g string, groups []constants.BloodGroup) bool {
	for _, c := range groups {
		if string(c) == g {
			return true
		}
	}
	return false
}
