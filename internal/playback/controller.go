// Package playback holds the auto-play state machine. The controller is
// deliberately inert: it decides whether playback is running, how long the
// current step should dwell, and which scheduled tick is still live, while
// the UI event loop owns the actual timers.
package playback

import (
	"time"

	"github.com/avalonarena/spectate/internal/game"
)

// Controller tracks play state, speed and the tick generation. Only one
// scheduled tick is ever live: each state change bumps the generation, and a
// tick arriving with an older generation must be ignored by the caller.
type Controller struct {
	playing bool
	base    time.Duration
	speech  float64

	speeds   []float64
	speedIdx int

	generation int
}

// Option configures a Controller.
type Option func(*Controller)

// WithSpeeds replaces the selectable speed ladder. The initial speed is the
// entry closest to 1x.
func WithSpeeds(speeds []float64) Option {
	return func(c *Controller) {
		if len(speeds) == 0 {
			return
		}
		c.speeds = speeds
		c.speedIdx = 0
		for i, s := range speeds {
			if diff(s, 1) < diff(speeds[c.speedIdx], 1) {
				c.speedIdx = i
			}
		}
	}
}

// WithSpeechMultiplier sets the extra dwell applied to speech steps.
func WithSpeechMultiplier(mult float64) Option {
	return func(c *Controller) {
		if mult >= 1 {
			c.speech = mult
		}
	}
}

// New creates a Controller with the given base dwell per step.
func New(base time.Duration, opts ...Option) *Controller {
	c := &Controller{
		base:     base,
		speech:   2.5,
		speeds:   []float64{0.5, 1, 2, 4},
		speedIdx: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Playing reports whether auto-play is running.
func (c *Controller) Playing() bool { return c.playing }

// Speed returns the current speed factor.
func (c *Controller) Speed() float64 { return c.speeds[c.speedIdx] }

// Generation returns the live tick generation.
func (c *Controller) Generation() int { return c.generation }

// Play starts auto-play and returns the generation the caller must schedule
// its tick under.
func (c *Controller) Play() int {
	c.playing = true
	c.generation++
	return c.generation
}

// Stop halts auto-play. Any scheduled tick becomes stale.
func (c *Controller) Stop() {
	c.playing = false
	c.generation++
}

// Toggle flips between playing and stopped, returning the new state and the
// generation for any fresh tick.
func (c *Controller) Toggle() (playing bool, generation int) {
	if c.playing {
		c.Stop()
		return false, c.generation
	}
	return true, c.Play()
}

// ManualStep is called on user navigation. Manual control always wins over
// auto-play.
func (c *Controller) ManualStep() {
	if c.playing {
		c.Stop()
	}
}

// SpeedUp moves one step up the speed ladder, sticking at the top. While
// playing it reschedules, so the caller gets a fresh generation.
func (c *Controller) SpeedUp() (speed float64, generation int) {
	if c.speedIdx < len(c.speeds)-1 {
		c.speedIdx++
		c.reschedule()
	}
	return c.Speed(), c.generation
}

// SpeedDown moves one step down the speed ladder, sticking at the bottom.
func (c *Controller) SpeedDown() (speed float64, generation int) {
	if c.speedIdx > 0 {
		c.speedIdx--
		c.reschedule()
	}
	return c.Speed(), c.generation
}

// CycleSpeed advances through the ladder, wrapping to the slowest.
func (c *Controller) CycleSpeed() (speed float64, generation int) {
	c.speedIdx = (c.speedIdx + 1) % len(c.speeds)
	c.reschedule()
	return c.Speed(), c.generation
}

// reschedule invalidates the pending tick while playing so exactly one new
// tick replaces it. Changing speed while stopped schedules nothing.
func (c *Controller) reschedule() {
	if c.playing {
		c.generation++
	}
}

// ValidTick reports whether a tick scheduled under generation should still
// advance the timeline.
func (c *Controller) ValidTick(generation int) bool {
	return c.playing && generation == c.generation
}

// Interval returns the dwell before leaving a step of the given phase.
// Speech steps linger longer so table talk stays readable.
func (c *Controller) Interval(phase game.Phase) time.Duration {
	d := float64(c.base) / c.Speed()
	if phase == game.PhaseSpeech {
		d *= c.speech
	}
	return time.Duration(d)
}
