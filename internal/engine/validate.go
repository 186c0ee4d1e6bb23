package engine

import (
	"errors"
	"fmt"

	"github.com/Felixpere/final-project/internal/model"
)

var (
	ErrAmbiguousDirection = errors.New("direction must be long or short")
	ErrNonPositivePrice   = errors.New("entry and targets must be positive")
	ErrTargetOrdering     = errors.New("targets must progress away from entry")
)

// ValidateSignal checks a signal before evaluation. Invalid signals are
// rejected with a reason and never abort the batch.
func ValidateSignal(sig model.Signal) error {
	if sig.Direction != model.DirectionLong && sig.Direction != model.DirectionShort {
		return fmt.Errorf("%w: got %q", ErrAmbiguousDirection, sig.Direction)
	}

	if !sig.Entry.IsPositive() {
		return fmt.Errorf("%w: entry %s", ErrNonPositivePrice, sig.Entry)
	}
	for l := model.TP40; l <= model.TP100; l++ {
		if !sig.Target(l).IsPositive() {
			return fmt.Errorf("%w: %s is %s", ErrNonPositivePrice, l, sig.Target(l))
		}
	}

	// Targets must be strictly monotonic away from entry:
	// ascending for long, descending for short.
	prev := sig.Entry
	for l := model.TP40; l <= model.TP100; l++ {
		t := sig.Target(l)
		var ok bool
		if sig.Direction == model.DirectionLong {
			ok = t.GreaterThan(prev)
		} else {
			ok = t.LessThan(prev)
		}
		if !ok {
			return fmt.Errorf("%w: %s=%s after %s for %s entry %s",
				ErrTargetOrdering, l, t, prev, sig.Direction, sig.Entry)
		}
		prev = t
	}
	return nil
}

// rejectionLabel maps a validation error to its metric label.
func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrAmbiguousDirection):
		return "ambiguous_direction"
	case errors.Is(err, ErrNonPositivePrice):
		return "non_positive_price"
	case errors.Is(err, ErrTargetOrdering):
		return "target_ordering"
	default:
		return "invalid"
	}
}
