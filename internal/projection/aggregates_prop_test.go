package projection

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/silens-indexer/internal/chain"
)

func TestReviewAggregateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	severities := gen.SliceOf(gen.Int16Range(0, 6))

	apply := func(sevs []int16) *memStore {
		s := newMemStore()
		for i, sev := range sevs {
			e := newEvent(chain.KindReviewSubmitted, 100, 0, uint(i), &chain.ReviewSubmitted{
				ModelID:   1,
				Reviewer:  "0xreviewer",
				IPFSHash:  "QmR",
				Severity:  sev,
				Timestamp: 1700000000,
			})
			if err := Dispatch(context.Background(), s, e); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
		}
		return s
	}

	properties.Property("running mean equals exact mean", prop.ForAll(
		func(sevs []int16) bool {
			if len(sevs) == 0 {
				return true
			}
			s := apply(sevs)
			var sum float64
			for _, sev := range sevs {
				sum += float64(sev)
			}
			exact := sum / float64(len(sevs))
			got := s.modelStats[1].AverageSeverity
			return got-exact < 1e-9 && exact-got < 1e-9
		},
		severities,
	))

	properties.Property("severity buckets are monotone", prop.ForAll(
		func(sevs []int16) bool {
			if len(sevs) == 0 {
				return true
			}
			ms := apply(sevs).modelStats[1]
			return ms.CriticalReviewsCount <= ms.HighSeverityReviewsCount &&
				ms.HighSeverityReviewsCount <= ms.MediumSeverityReviewsCount &&
				ms.MediumSeverityReviewsCount <= ms.LowSeverityReviewsCount &&
				ms.LowSeverityReviewsCount <= ms.TotalReviews &&
				ms.TotalReviews == int64(len(sevs))
		},
		severities,
	))

	properties.Property("review count and id dedupe line up", prop.ForAll(
		func(sevs []int16) bool {
			s := apply(sevs)
			if len(sevs) == 0 {
				return len(s.reviews) == 0
			}
			// Distinct log indexes mean distinct deterministic ids.
			return len(s.reviews) == len(sevs)
		},
		severities,
	))

	properties.TestingRun(t)
}
