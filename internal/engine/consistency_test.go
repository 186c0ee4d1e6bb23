package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Felixpere/final-project/internal/model"
)

func outcomeWith(t0 time.Time, states [model.NumTPLevels]model.OutcomeState, hitOffsets [model.NumTPLevels]time.Duration) model.SignalOutcome {
	out := model.SignalOutcome{Signal: longSignal("ABCUSDT", t0)}
	for l := model.TP40; l <= model.TP100; l++ {
		out.Levels[l].State = states[l]
		if states[l] == model.StateHit {
			out.Levels[l].HitTime = t0.Add(hitOffsets[l])
			out.Levels[l].HitPrice = out.Signal.Target(l)
		}
	}
	return out
}

func TestRepair_SynthesizesLowerLevels(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := outcomeWith(t0,
		[model.NumTPLevels]model.OutcomeState{model.StateNoData, model.StateNotHit, model.StateHit, model.StateNotHit},
		[model.NumTPLevels]time.Duration{0, 0, 2 * time.Hour, 0})

	repaired := Repair(out)

	// TP80 hit forces TP60 and TP40 into Hit no later than TP80's time.
	for l := model.TP40; l <= model.TP80; l++ {
		assert.Equal(t, model.StateHit, repaired.Levels[l].State, l.String())
		assert.False(t, repaired.Levels[l].HitTime.After(t0.Add(2*time.Hour)), l.String())
	}
	// A higher level's miss is never touched.
	assert.Equal(t, model.StateNotHit, repaired.Levels[model.TP100].State)
	assert.Equal(t, 2, repaired.Repaired)

	// Synthesized hits carry the level's own target price.
	assert.True(t, repaired.Levels[model.TP40].HitPrice.Equal(repaired.Signal.TP40))
}

func TestRepair_ClampsLaterLowerHit(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// TP40 matched later than TP100 due to a tolerance artifact.
	out := outcomeWith(t0,
		[model.NumTPLevels]model.OutcomeState{model.StateHit, model.StateHit, model.StateHit, model.StateHit},
		[model.NumTPLevels]time.Duration{6 * time.Hour, 2 * time.Hour, 2 * time.Hour, 2 * time.Hour})

	repaired := Repair(out)

	assert.True(t, repaired.Levels[model.TP40].HitTime.Equal(t0.Add(2*time.Hour)))
	assert.Equal(t, 1, repaired.Repaired)
}

func TestRepair_NeverDowngradesAHit(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := outcomeWith(t0,
		[model.NumTPLevels]model.OutcomeState{model.StateHit, model.StateNotHit, model.StateNotHit, model.StateNotHit},
		[model.NumTPLevels]time.Duration{time.Hour, 0, 0, 0})

	repaired := Repair(out)

	assert.Equal(t, model.StateHit, repaired.Levels[model.TP40].State)
	assert.Equal(t, 0, repaired.Repaired)
	assert.Equal(t, out, repaired)
}

func TestRepair_MonotonicProperty(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	states := []model.OutcomeState{model.StateNoData, model.StateNotHit, model.StateHit}

	// Every combination of raw states must end up monotonic.
	for a := range states {
		for b := range states {
			for c := range states {
				for d := range states {
					out := outcomeWith(t0,
						[model.NumTPLevels]model.OutcomeState{states[a], states[b], states[c], states[d]},
						[model.NumTPLevels]time.Duration{4 * time.Hour, 3 * time.Hour, 2 * time.Hour, time.Hour})
					repaired := Repair(out)

					for l := model.TP100; l > model.TP40; l-- {
						hi, lo := repaired.Levels[l], repaired.Levels[l-1]
						if hi.State == model.StateHit {
							assert.Equal(t, model.StateHit, lo.State)
							assert.False(t, lo.HitTime.After(hi.HitTime))
						}
					}
				}
			}
		}
	}
}
