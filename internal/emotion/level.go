package emotion

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Level string

const (
	LevelCalm     Level = "calm"
	LevelMild     Level = "mild"
	LevelModerate Level = "moderate"
	LevelElevated Level = "elevated"
)

// Inclusive upper bounds of each level. Anything above ThresholdModerate is elevated.
const (
	ThresholdCalm     = 25.0
	ThresholdMild     = 50.0
	ThresholdModerate = 70.0

	MinScore = 0.0
	MaxScore = 100.0
)

// Persisted patient status vocabulary.
const (
	StatusLow      = "low"
	StatusModerate = "moderate"
	StatusElevated = "elevated"
)

var Levels = []Level{LevelCalm, LevelMild, LevelModerate, LevelElevated}

// Classify maps a distress score to its level. The score must already be
// clamped to [MinScore, MaxScore].
func Classify(score float64) Level {
	switch {
	case score <= ThresholdCalm:
		return LevelCalm
	case score <= ThresholdMild:
		return LevelMild
	case score <= ThresholdModerate:
		return LevelModerate
	default:
		return LevelElevated
	}
}

// ClampScore bounds a raw reading to the valid score range. NaN reads as calm.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, score))
}

// Severity orders levels from 0 (calm) to 3 (elevated); unknown levels are -1.
func (l Level) Severity() int {
	switch l {
	case LevelCalm:
		return 0
	case LevelMild:
		return 1
	case LevelModerate:
		return 2
	case LevelElevated:
		return 3
	default:
		return -1
	}
}

func (l Level) Valid() bool {
	return l.Severity() >= 0
}

func (l Level) String() string {
	return string(l)
}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown emotion level %q", s)
	}
	return l, nil
}

// StatusLevel collapses the four levels into the three-value status stored on
// the patient record. Mild counts as low severity everywhere.
func StatusLevel(l Level) string {
	switch l {
	case LevelModerate:
		return StatusModerate
	case LevelElevated:
		return StatusElevated
	default:
		return StatusLow
	}
}

type State struct {
	Level         Level     `json:"level" bson:"level"`
	DistressScore float64   `json:"distress_score" bson:"distress_score"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

// NewState clamps the score and derives the level from it.
func NewState(score float64, at time.Time) State {
	score = ClampScore(score)
	return State{
		Level:         Classify(score),
		DistressScore: score,
		Timestamp:     at,
	}
}
