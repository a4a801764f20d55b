package onboarding

import "time"

const (
	DefaultProbationDays         = 90
	DefaultBehindDaysThreshold   = 30
	DefaultBehindCompletionRatio = 0.7
)

// Rules holds the constants that turn counts into a progress status.
type Rules struct {
	ProbationDays         int
	BehindDaysThreshold   int
	BehindCompletionRatio float64
}

func DefaultRules() Rules {
	return Rules{
		ProbationDays:         DefaultProbationDays,
		BehindDaysThreshold:   DefaultBehindDaysThreshold,
		BehindCompletionRatio: DefaultBehindCompletionRatio,
	}
}

// WithDefaults replaces zero fields with the defaults.
func (r Rules) WithDefaults() Rules {
	def := DefaultRules()
	if r.ProbationDays == 0 {
		r.ProbationDays = def.ProbationDays
	}
	if r.BehindDaysThreshold == 0 {
		r.BehindDaysThreshold = def.BehindDaysThreshold
	}
	if r.BehindCompletionRatio == 0 {
		r.BehindCompletionRatio = def.BehindCompletionRatio
	}
	return r
}

func (r Rules) ProbationWindow() time.Duration {
	return time.Duration(r.ProbationDays) * 24 * time.Hour
}
