package engine

import "github.com/Felixpere/final-project/internal/model"

// Repair applies the sequential-dependency rule: a hit at level L means
// every lower level must have been hit no later than L's hit time. Raw
// matching can disagree (tolerance windows, gaps at a lower target), so
// the repair walks from TP100 down and, for each hit level, forces the
// level below it into Hit at or before the same time:
//
//   - a lower level in NotHit or NoData is synthesized to Hit at the
//     higher level's hit time (the latest admissible instant);
//   - a lower level hit later than the higher one is clamped back.
//
// A Hit is never downgraded. The returned count is the number of levels
// touched, which the caller surfaces as a data-quality metric.
func Repair(out model.SignalOutcome) model.SignalOutcome {
	repairs := 0
	for l := model.TP100; l > model.TP40; l-- {
		hi := out.Levels[l]
		if hi.State != model.StateHit {
			continue
		}
		lo := &out.Levels[l-1]
		switch {
		case lo.State != model.StateHit:
			lo.State = model.StateHit
			lo.HitTime = hi.HitTime
			lo.HitPrice = out.Signal.Target(l - 1)
			repairs++
		case lo.HitTime.After(hi.HitTime):
			lo.HitTime = hi.HitTime
			repairs++
		}
	}
	out.Repaired = repairs
	return out
}
