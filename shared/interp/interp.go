// Package interp maps a time window onto a value window. It has no
// dependency on ebiten so the dedicated server binary stays headless.
package interp

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Interpolator maps Start at T0 to End at T1, clamping outside the window.
// Progress inside the window is driven by a 0..1 tween so that easing can be
// swapped without touching the value arithmetic.
type Interpolator struct {
	Start, End float64
	T0, T1     float64

	progress *gween.Tween
}

// New returns a linear interpolator.
func New(start, end, t0, t1 float64) *Interpolator {
	return NewEased(start, end, t0, t1, ease.Linear)
}

// NewEased returns an interpolator whose progress follows fn.
func NewEased(start, end, t0, t1 float64, fn ease.TweenFunc) *Interpolator {
	if fn == nil {
		fn = ease.Linear
	}
	return &Interpolator{
		Start:    start,
		End:      end,
		T0:       t0,
		T1:       t1,
		progress: gween.New(0, 1, float32(t1-t0), fn),
	}
}

// Sample returns the value at time t. The bounds are returned exactly and the
// end wins on a zero-width window.
func (ip *Interpolator) Sample(t float64) float64 {
	if t >= ip.T1 {
		return ip.End
	}
	if t <= ip.T0 {
		return ip.Start
	}
	p, _ := ip.progress.Set(float32(t - ip.T0))
	return ip.Start + (ip.End-ip.Start)*float64(p)
}
