package grounding

import "distress-service/internal/emotion"

const (
	ModeNormal    = "normal"
	ModeGrounding = "grounding"
)

// Controller decides whether a patient session is in grounding mode.
// Entry is automatic on the first elevated reading; exit only happens on an
// explicit close request while the latest reading is below elevated.
// Not safe for concurrent use; the owning session serializes access.
type Controller struct {
	active bool
	last   emotion.Level
}

func NewController() *Controller {
	return &Controller{last: emotion.LevelCalm}
}

// Restore seeds the mode from a persisted session.
func (c *Controller) Restore(active bool) {
	c.active = active
}

// Observe records the latest level and reports whether this reading moved
// the session from normal into grounding.
func (c *Controller) Observe(level emotion.Level) bool {
	c.last = level
	if level == emotion.LevelElevated && !c.active {
		c.active = true
		return true
	}
	return false
}

// RequestClose leaves grounding mode unless distress is still elevated.
func (c *Controller) RequestClose() bool {
	if !c.active || c.last == emotion.LevelElevated {
		return false
	}
	c.active = false
	return true
}

func (c *Controller) CanClose() bool {
	return c.active && c.last != emotion.LevelElevated
}

func (c *Controller) Active() bool {
	return c.active
}

func (c *Controller) LastLevel() emotion.Level {
	return c.last
}

func (c *Controller) Mode() string {
	if c.active {
		return ModeGrounding
	}
	return ModeNormal
}
