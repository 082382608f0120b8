package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/dataset"
)

// ErrEmptyYear reports that the dataset holds rows, just none for the
// target year. Distinct from dataset.ErrEmptyDataset so callers can word
// their message accurately.
var ErrEmptyYear = eris.New("pipeline: no rows for target year")

// FilterYear narrows the snapshot to the target year. Field validity is
// already guaranteed by the parser; drop counts live on the snapshot.
func FilterYear(snap *dataset.Snapshot, year int) ([]dataset.RentRecord, error) {
	if snap.Empty() {
		return nil, dataset.ErrEmptyDataset
	}

	out := make([]dataset.RentRecord, 0, len(snap.Records))
	for _, rec := range snap.Records {
		if rec.Year == year {
			out = append(out, rec)
		}
	}

	if len(out) == 0 {
		zap.L().Warn("pipeline: dataset has no rows for target year",
			zap.Int("year", year),
			zap.Ints("years_present", snap.Years),
		)
		return nil, eris.Wrapf(ErrEmptyYear, "year %d", year)
	}

	return out, nil
}
