package pipeline

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/quartierlabs/rentmap/internal/dataset"
)

// ErrComputation reports a non-finite value reaching the estimator. Rents
// are validated at parse time, so seeing this means a caller bypassed the
// parser.
var ErrComputation = eris.New("pipeline: non-finite rent computation")

// ErrUnknownTier reports a rent-tier selection outside the supported set.
// There is deliberately no default tier: an unrecognized selection is an
// interface error, not something to paper over.
var ErrUnknownTier = eris.New("pipeline: unknown rent tier")

// EstimatedRecord is a RentRecord with the derived monthly estimate for one
// set of criteria.
type EstimatedRecord struct {
	dataset.RentRecord

	RentPerM2     float64
	EstimatedRent float64
	WithinBudget  bool
}

// Estimate computes the monthly rent estimate for one record:
// selected per-m² rate × surface, flagged against the budget.
func Estimate(rec dataset.RentRecord, c EstimationCriteria) (EstimatedRecord, error) {
	perM2, err := tierRent(rec, c.Tier)
	if err != nil {
		return EstimatedRecord{}, err
	}

	monthly := perM2 * c.Surface
	if math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		return EstimatedRecord{}, eris.Wrapf(ErrComputation,
			"rate %v × surface %v", perM2, c.Surface)
	}

	return EstimatedRecord{
		RentRecord:    rec,
		RentPerM2:     perM2,
		EstimatedRent: monthly,
		WithinBudget:  monthly <= c.Budget,
	}, nil
}

// tierRent maps the tier selection to the record's rate. The mapping is
// total over the three supported tiers.
func tierRent(rec dataset.RentRecord, tier RentTier) (float64, error) {
	switch tier {
	case TierCapped:
		return rec.RentCapped, nil
	case TierReference:
		return rec.ReferenceRent, nil
	case TierFloor:
		return rec.RentFloor, nil
	default:
		return 0, eris.Wrapf(ErrUnknownTier, "%q", tier)
	}
}
