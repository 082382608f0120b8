// Package pipeline turns a dataset snapshot and user criteria into
// per-neighborhood affordability summaries.
package pipeline

import (
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/quartierlabs/rentmap/internal/dataset"
)

// RentTier selects which of the three published per-m² rates to estimate
// against.
type RentTier string

const (
	TierCapped    RentTier = "capped"
	TierReference RentTier = "reference"
	TierFloor     RentTier = "floor"
)

// Tiers lists the supported selections in display order.
var Tiers = []RentTier{TierCapped, TierReference, TierFloor}

// EstimationCriteria is one query against the snapshot. Values are owned by
// the caller; the pipeline never mutates them.
type EstimationCriteria struct {
	Budget     float64  `validate:"gte=300,lte=10000"`
	Surface    float64  `validate:"gte=10,lte=200"`
	RentalType string   `validate:"required"`
	Eras       []string // empty = all discovered eras
	Tier       RentTier `validate:"required,oneof=capped reference floor"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks bounds and that the categorical selections exist in the
// snapshot's discovered sets. Category values are never hardcoded; the
// dataset defines them.
func (c EstimationCriteria) Validate(snap *dataset.Snapshot) error {
	if err := validate.Struct(c); err != nil {
		return eris.Wrap(err, "pipeline: invalid criteria")
	}
	if !snap.HasRentalType(c.RentalType) {
		return eris.Errorf("pipeline: rental type %q not present in dataset (have %v)",
			c.RentalType, snap.RentalTypes)
	}
	for _, era := range c.Eras {
		if !snap.HasConstructionEra(era) {
			return eris.Errorf("pipeline: construction era %q not present in dataset (have %v)",
				era, snap.ConstructionEras)
		}
	}
	return nil
}

// allowsEra reports whether the criteria admit the given construction era.
func (c EstimationCriteria) allowsEra(era string) bool {
	if len(c.Eras) == 0 {
		return true
	}
	for _, e := range c.Eras {
		if e == era {
			return true
		}
	}
	return false
}
