package pipeline

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/dataset"
)

// ErrNoMatch reports that the criteria combination left zero eligible
// records. A warning for the user, not a failure of the run.
var ErrNoMatch = eris.New("pipeline: no records match criteria")

// Result is one complete pipeline run over a snapshot. Re-running with new
// criteria derives a fresh Result; the snapshot is never touched.
type Result struct {
	RunID      string                `json:"run_id"`
	Year       int                   `json:"year"`
	Criteria   EstimationCriteria    `json:"criteria"`
	Summaries  []NeighborhoodSummary `json:"summaries"`
	Accessible int                   `json:"accessible_count"`
}

// Run executes the full transformation: year filter, eligibility narrowing,
// per-record estimation, neighborhood aggregation. Sentinel errors
// (dataset.ErrEmptyDataset, ErrEmptyYear, ErrNoMatch) describe empty
// outcomes the caller should surface as warnings rather than failures.
func Run(snap *dataset.Snapshot, year int, c EstimationCriteria) (*Result, error) {
	// An empty snapshot is reported as such before criteria validation:
	// with no rows there are no discovered category sets to validate against.
	if snap.Empty() {
		return nil, dataset.ErrEmptyDataset
	}
	if err := c.Validate(snap); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))

	rows, err := FilterYear(snap, year)
	if err != nil {
		return nil, err
	}

	// Narrow to the selected rental type and era set. A neighborhood with
	// zero eligible rows simply never reaches aggregation.
	estimates := make([]EstimatedRecord, 0, len(rows))
	for _, rec := range rows {
		if rec.RentalType != c.RentalType || !c.allowsEra(rec.ConstructionEra) {
			continue
		}
		est, err := Estimate(rec, c)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, est)
	}

	if len(estimates) == 0 {
		log.Warn("pipeline: criteria matched no records",
			zap.String("rental_type", c.RentalType),
			zap.Strings("eras", c.Eras),
		)
		return nil, ErrNoMatch
	}

	summaries := aggregate(estimates)

	res := &Result{
		RunID:     runID,
		Year:      year,
		Criteria:  c,
		Summaries: summaries,
	}
	for _, s := range summaries {
		if s.Accessible {
			res.Accessible++
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("records_eligible", len(estimates)),
		zap.Int("neighborhoods", len(summaries)),
		zap.Int("accessible", res.Accessible),
	)
	return res, nil
}
