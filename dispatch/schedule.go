package dispatch

import (
	"math/rand"
	"time"

	"github.com/rudolph-nck/botmind/decision"
)

const (
	idleBonus    = 1.5
	jitterSpread = 0.2

	defaultCooldownMinutes = 30
)

func priorityMultiplier(p decision.Priority) float64 {
	switch p {
	case decision.PriorityHigh:
		return 0.5
	case decision.PriorityLow:
		return 2.0
	default:
		return 1.0
	}
}

// uniformJitter returns a factor in [1-jitterSpread, 1+jitterSpread). Many
// bots share a cooldown; without jitter they wake in lockstep.
func uniformJitter() float64 {
	return 1 - jitterSpread + rand.Float64()*2*jitterSpread
}

// nextCycleAt computes the adaptive wake-up: high-priority outcomes come back
// sooner, low-priority later, idle later still.
func nextCycleAt(now time.Time, cooldownMinutes int, d decision.Decision, jitter func() float64) time.Time {
	if cooldownMinutes <= 0 {
		cooldownMinutes = defaultCooldownMinutes
	}
	minutes := float64(cooldownMinutes) * priorityMultiplier(d.Priority)
	if d.Action == decision.ActionIdle {
		minutes *= idleBonus
	}
	minutes *= jitter()
	return now.Add(time.Duration(minutes * float64(time.Minute)))
}
