package scoring

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Params holds the scoring weights and thresholds. All values are fixed at
// construction; a run never mutates them.
type Params struct {
	// Alpha blends retrieval quality against keyword coverage.
	Alpha float64 `validate:"gte=0,lte=1"`
	// MustWeight blends must-have coverage against nice-to-have coverage.
	MustWeight float64 `validate:"gte=0,lte=1"`

	LengthWeight     float64 `validate:"gte=0"`
	QualityWeight    float64 `validate:"gte=0"`
	RedundancyWeight float64 `validate:"gte=0"`

	// Bullet character length band. Outside the band the length score
	// degrades linearly.
	MinBulletChars int `validate:"gt=0"`
	MaxBulletChars int `validate:"gtfield=MinBulletChars"`

	// RedundancyThreshold is the pairwise similarity at or above which two
	// bullets count as redundant.
	RedundancyThreshold float64 `validate:"gt=0,lte=1"`

	// QuantBonusCap normalizes per-bullet quant bonuses into [0,1]. Must
	// match the retrieval engine's cap.
	QuantBonusCap float64 `validate:"gt=0"`
}

// DefaultParams returns the standard scoring parameters.
func DefaultParams() Params {
	return Params{
		Alpha:               0.5,
		MustWeight:          0.7,
		LengthWeight:        0.1,
		QualityWeight:       0.1,
		RedundancyWeight:    0.1,
		MinBulletChars:      40,
		MaxBulletChars:      220,
		RedundancyThreshold: 0.6,
		QuantBonusCap:       0.20,
	}
}

var validate = validator.New()

// Validate fails fast on malformed parameters so bad weights never reach
// the scoring math.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("scoring: invalid params: %w", err)
	}
	return nil
}
