package playback

import (
	"testing"
	"time"

	"github.com/avalonarena/spectate/internal/game"
)

func TestController_PlayStop(t *testing.T) {
	c := New(time.Second)

	if c.Playing() {
		t.Error("new controller already playing")
	}

	gen := c.Play()
	if !c.Playing() {
		t.Error("not playing after Play")
	}
	if !c.ValidTick(gen) {
		t.Error("tick scheduled by Play is not valid")
	}

	c.Stop()
	if c.Playing() {
		t.Error("still playing after Stop")
	}
	if c.ValidTick(gen) {
		t.Error("tick from before Stop still valid")
	}
}

func TestController_Toggle(t *testing.T) {
	c := New(time.Second)

	playing, gen := c.Toggle()
	if !playing {
		t.Error("first toggle did not start playback")
	}
	if !c.ValidTick(gen) {
		t.Error("toggle's generation is not the live one")
	}

	playing, _ = c.Toggle()
	if playing {
		t.Error("second toggle did not stop playback")
	}
	if c.ValidTick(gen) {
		t.Error("tick from the playing period survived the stop")
	}
}

func TestController_StaleTickIgnored(t *testing.T) {
	c := New(time.Second)

	old := c.Play()
	c.Stop()
	fresh := c.Play()

	if c.ValidTick(old) {
		t.Error("stale generation accepted")
	}
	if !c.ValidTick(fresh) {
		t.Error("live generation rejected")
	}
}

func TestController_ManualStepStopsAutoPlay(t *testing.T) {
	c := New(time.Second)

	gen := c.Play()
	c.ManualStep()
	if c.Playing() {
		t.Error("auto-play survived manual navigation")
	}
	if c.ValidTick(gen) {
		t.Error("scheduled tick survived manual navigation")
	}

	// Stepping while stopped is a no-op.
	before := c.Generation()
	c.ManualStep()
	if c.Generation() != before {
		t.Error("manual step while stopped bumped the generation")
	}
}

func TestController_SpeedLadder(t *testing.T) {
	c := New(time.Second)

	if c.Speed() != 1 {
		t.Fatalf("initial speed is %v, expected 1", c.Speed())
	}

	speed, _ := c.SpeedUp()
	if speed != 2 {
		t.Errorf("speed after one up is %v, expected 2", speed)
	}
	c.SpeedUp()
	speed, _ = c.SpeedUp() // already at the top
	if speed != 4 {
		t.Errorf("speed ran past the top of the ladder: %v", speed)
	}

	for i := 0; i < 10; i++ {
		speed, _ = c.SpeedDown()
	}
	if speed != 0.5 {
		t.Errorf("speed ran past the bottom of the ladder: %v", speed)
	}
}

func TestController_CycleSpeedWraps(t *testing.T) {
	c := New(time.Second)

	seen := map[float64]bool{c.Speed(): true}
	for i := 0; i < 4; i++ {
		speed, _ := c.CycleSpeed()
		seen[speed] = true
	}
	if len(seen) != 4 {
		t.Errorf("cycling visited %d speeds, expected 4", len(seen))
	}
	if c.Speed() != 1 {
		t.Errorf("full cycle ended on %v, expected the starting speed", c.Speed())
	}
}

func TestController_SpeedChangeReschedulesOnlyWhilePlaying(t *testing.T) {
	c := New(time.Second)

	before := c.Generation()
	c.SpeedUp()
	if c.Generation() != before {
		t.Error("speed change while stopped bumped the generation")
	}

	gen := c.Play()
	_, fresh := c.SpeedUp()
	if fresh == gen {
		t.Error("speed change while playing kept the old generation")
	}
	if c.ValidTick(gen) {
		t.Error("tick scheduled before the speed change still valid")
	}
	if !c.ValidTick(fresh) {
		t.Error("tick rescheduled by the speed change not valid")
	}
}

func TestController_Interval(t *testing.T) {
	c := New(2 * time.Second)

	if got := c.Interval(game.PhaseTeamVote); got != 2*time.Second {
		t.Errorf("base interval is %v, expected 2s", got)
	}
	if got := c.Interval(game.PhaseSpeech); got != 5*time.Second {
		t.Errorf("speech interval is %v, expected 5s", got)
	}

	c.SpeedUp() // 2x
	if got := c.Interval(game.PhaseTeamVote); got != time.Second {
		t.Errorf("interval at 2x is %v, expected 1s", got)
	}
	if got := c.Interval(game.PhaseSpeech); got != 2500*time.Millisecond {
		t.Errorf("speech interval at 2x is %v, expected 2.5s", got)
	}
}

func TestController_Options(t *testing.T) {
	c := New(time.Second,
		WithSpeeds([]float64{0.25, 1, 3}),
		WithSpeechMultiplier(2),
	)

	if c.Speed() != 1 {
		t.Errorf("initial speed is %v, expected the ladder entry closest to 1x", c.Speed())
	}
	if got := c.Interval(game.PhaseSpeech); got != 2*time.Second {
		t.Errorf("speech interval is %v, expected 2s", got)
	}

	// Degenerate options leave the defaults alone.
	c = New(time.Second, WithSpeeds(nil), WithSpeechMultiplier(0.1))
	if c.Speed() != 1 {
		t.Errorf("empty ladder changed the speed: %v", c.Speed())
	}
	if got := c.Interval(game.PhaseSpeech); got != 2500*time.Millisecond {
		t.Errorf("sub-1x multiplier accepted: %v", got)
	}
}
