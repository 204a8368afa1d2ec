package simulator

import (
	"math/rand"
	"sync"

	"distress-service/internal/emotion"
)

// Source produces the next distress score of a patient session. The random
// walk stands in for a real inference pipeline.
type Source interface {
	Tick() float64
}

// Nudger is implemented by sources whose current score can be shifted,
// e.g. the "simulate distress" demo controls.
type Nudger interface {
	Nudge(delta float64) float64
}

const (
	DefaultStep = 6.0
	// Slight downward drift so an unattended walk tends to settle.
	DefaultBias = 0.52
)

type RandomWalk struct {
	mu    sync.Mutex
	rng   *rand.Rand
	score float64
	step  float64
	bias  float64
}

func NewRandomWalk(start float64, seed int64) *RandomWalk {
	return &RandomWalk{
		rng:   rand.New(rand.NewSource(seed)),
		score: emotion.ClampScore(start),
		step:  DefaultStep,
		bias:  DefaultBias,
	}
}

func (w *RandomWalk) Tick() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.score = emotion.ClampScore(w.score + (w.rng.Float64()-w.bias)*w.step)
	return w.score
}

func (w *RandomWalk) Nudge(delta float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.score = emotion.ClampScore(w.score + delta)
	return w.score
}

func (w *RandomWalk) Current() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.score
}

// Scripted replays a fixed sequence and then repeats the last value.
type Scripted struct {
	mu     sync.Mutex
	scores []float64
	next   int
	offset float64
}

func NewScripted(scores ...float64) *Scripted {
	return &Scripted{scores: scores}
}

func (s *Scripted) Tick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next < len(s.scores) {
		s.next++
	}
	return s.current()
}

// Nudge shifts every remaining reading by delta and returns the shifted
// current value without consuming the script.
func (s *Scripted) Nudge(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offset += delta
	return s.current()
}

func (s *Scripted) current() float64 {
	if s.next == 0 || len(s.scores) == 0 {
		return emotion.ClampScore(s.offset)
	}
	return emotion.ClampScore(s.scores[s.next-1] + s.offset)
}
