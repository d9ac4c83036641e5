// Package scorer assigns the synthetic trend velocity score to classified
// records. The score is a popularity proxy with deliberate random growth
// noise: re-scoring the same dataset produces different values, which is
// intended demo behavior, so the random source is injectable to keep tests
// deterministic.
package scorer

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

const (
	perturbMin   = -10 // inclusive lower bound of growth noise
	perturbSpan  = 90  // noise drawn from [perturbMin, perturbMin+perturbSpan)
	normalizePad = 100 // added to the max popularity before normalizing
	scoreFloor   = 10.0
	scoreCeil    = 99.0
)

// Scorer computes velocity scores. Not safe for concurrent use; the
// refresher serializes pipeline runs, so one shared instance is fine there.
type Scorer struct {
	rng *rand.Rand
}

// New returns a time-seeded scorer for production use.
func New() *Scorer {
	now := uint64(time.Now().UnixNano())
	return NewSeeded(now, now>>11)
}

// NewSeeded returns a scorer with a fixed seed. Tests use this to make
// scoring reproducible.
func NewSeeded(seed1, seed2 uint64) *Scorer {
	return &Scorer{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Score annotates every record with a velocity score in [10.0, 99.0].
// Popularity is the number of records sharing the sub-category; each record
// gets an independent perturbation before normalization against the most
// popular sub-category. An empty collection is a no-op.
func (s *Scorer) Score(records []domain.Record) {
	if len(records) == 0 {
		return
	}

	popCount := make(map[string]int, 8)
	for i := range records {
		popCount[records[i].SubCategory]++
	}

	maxPop := 0
	for _, n := range popCount {
		if n > maxPop {
			maxPop = n
		}
	}

	for i := range records {
		perturb := s.rng.IntN(perturbSpan) + perturbMin
		raw := float64(popCount[records[i].SubCategory] + perturb)
		score := raw / float64(maxPop+normalizePad) * 100

		score = math.Min(math.Max(score, scoreFloor), scoreCeil)
		records[i].VelocityScore = math.Round(score*10) / 10
	}
}
