package loop

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/pinkpig777/agentic-resume-tailor/internal/queryplan"
	"github.com/pinkpig777/agentic-resume-tailor/internal/rewriting"
	"github.com/pinkpig777/agentic-resume-tailor/internal/scoring"
)

// Config bounds a tailoring run. It is fixed at construction; the controller
// never mutates it mid-run.
type Config struct {
	MaxIterations int `validate:"gt=0"`
	// Threshold is the final score at or above which the loop stops early.
	Threshold int `validate:"gte=0,lte=100"`

	PerQueryK  int `validate:"gt=0"`
	FinalK     int `validate:"gt=0"`
	MaxBullets int `validate:"gt=0"`

	// BoostTopN caps how many missing must-have terms feed the next
	// iteration's boosts.
	BoostTopN int             `validate:"gte=0"`
	Boosts    queryplan.BoostOptions

	Scoring scoring.Params
	Rewrite rewriting.Constraints
}

// DefaultConfig returns the standard loop configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 3,
		Threshold:     80,
		PerQueryK:     10,
		FinalK:        30,
		MaxBullets:    16,
		BoostTopN:     6,
		Boosts:        queryplan.DefaultBoostOptions(),
		Scoring:       scoring.DefaultParams(),
		Rewrite:       rewriting.DefaultConstraints(),
	}
}

var validate = validator.New()

// Validate fails fast on a malformed configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("loop: invalid config: %w", err)
	}
	return c.Scoring.Validate()
}
