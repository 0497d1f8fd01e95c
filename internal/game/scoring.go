package game

// ScoringConfig holds configurable scoring constants (defaults match requirements).
type ScoringConfig struct {
	BaseScore      int // default: 100
	BonusPerSecond int // default: 10
	MinBonusFloor  int // default: 1 (seconds credited even at countdown 0)
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:      100,
		BonusPerSecond: 10,
		MinBonusFloor:  1,
	}
}

// Engine computes server-side scores with configurable constants.
type Engine struct {
	config ScoringConfig
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config ScoringConfig) *Engine {
	return &Engine{config: config}
}

// Points computes the award for a correct answer given the countdown value at
// the moment of answering. The bonus is front-loaded: answering with more
// time left scores strictly more, with a floor so even a last-moment correct
// answer earns some bonus.
//
// Formula: base + perSecond * max(floor, remaining).
func (e *Engine) Points(remaining int) int {
	bonus := remaining
	if bonus < e.config.MinBonusFloor {
		bonus = e.config.MinBonusFloor
	}
	return e.config.BaseScore + e.config.BonusPerSecond*bonus
}
