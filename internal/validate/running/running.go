// Package running implements the RDH running validator: stateful
// cross-RDH consistency rules (spec §4.5.2).
package running

import (
	"fmt"
	"strings"

	"github.com/marmos91/fastpasta/internal/rdh"
)

// Validator tracks the running state needed to validate consecutive RDHs
// within a single dispatch id's stream.
type Validator struct {
	first, second *rdh.RDH
	last          *rdh.RDH

	expectedPagesCounter   uint16
	expectedPagesIncrement uint16
}

// New creates a running Validator with no prior state.
func New() *Validator {
	return &Validator{}
}

// Check validates r against the validator's running state and advances
// that state. The first call has no previous RDH to compare against, so
// only the stop_bit and pages_counter rules apply to it; the increment
// between the first and second RDH's pages_counter seeds
// expectedPagesIncrement.
func (v *Validator) Check(r rdh.RDH) error {
	var violations []string
	add := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	switch {
	case v.first == nil:
		cp := r
		v.first = &cp
	case v.second == nil:
		cp := r
		v.second = &cp
		if cp.RDH2.PagesCounter >= v.first.RDH2.PagesCounter {
			v.expectedPagesIncrement = cp.RDH2.PagesCounter - v.first.RDH2.PagesCounter
		} else {
			v.expectedPagesIncrement = 1
		}
	}

	if r.RDH2.StopBit != 0 && r.RDH2.StopBit != 1 {
		add("stop_bit=%d not in {0,1}", r.RDH2.StopBit)
	} else if r.RDH2.StopBit == 0 {
		if r.RDH2.PagesCounter != v.expectedPagesCounter {
			add("pages_counter=%d, expected %d", r.RDH2.PagesCounter, v.expectedPagesCounter)
		}
		v.expectedPagesCounter += v.increment()
	} else {
		if r.RDH2.PagesCounter != v.expectedPagesCounter {
			add("pages_counter=%d, expected %d (closing page)", r.RDH2.PagesCounter, v.expectedPagesCounter)
		}
		v.expectedPagesCounter = 0
	}

	if v.last != nil && v.last.RDH2.StopBit == 1 && r.RDH1.Orbit == v.last.RDH1.Orbit {
		add("orbit=%d unchanged across a closed HBF (previous RDH had stop_bit=1)", r.RDH1.Orbit)
	}

	if v.last != nil && r.RDH2.PagesCounter != 0 {
		if r.RDH1.Orbit != v.last.RDH1.Orbit {
			add("orbit=%d differs from previous RDH's %d mid-HBF", r.RDH1.Orbit, v.last.RDH1.Orbit)
		}
		if r.RDH2.TriggerType != v.last.RDH2.TriggerType {
			add("trigger_type=0x%X differs from previous RDH's 0x%X mid-HBF", r.RDH2.TriggerType, v.last.RDH2.TriggerType)
		}
		if r.RDH3.DetectorField != v.last.RDH3.DetectorField {
			add("detector_field=0x%X differs from previous RDH's 0x%X mid-HBF", r.RDH3.DetectorField, v.last.RDH3.DetectorField)
		}
		if r.RDH0.FeeID != v.last.RDH0.FeeID {
			add("fee_id=0x%X differs from previous RDH's 0x%X mid-HBF (FEE ID:%d)", r.RDH0.FeeID, v.last.RDH0.FeeID, r.RDH0.FeeID)
		}
	}

	cp := r
	v.last = &cp

	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("RDH running check failed: %s", strings.Join(violations, "; "))
}

// increment returns the inferred per-page pages_counter step, defaulting to
// 1 before enough RDHs have been observed to infer it (spec §9 open
// question: behavior is undefined when the very first CDP already carries
// stop_bit=1, so this default is this validator's resolution of that case).
func (v *Validator) increment() uint16 {
	if v.expectedPagesIncrement == 0 {
		return 1
	}
	return v.expectedPagesIncrement
}
