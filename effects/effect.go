package effects

import (
	"github.com/FourSeventy/sylver-engine-sub000/shared/interp"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Effect is a timed animation attached to one attribute of an entity.
//
// Each Update is one simulation tick. While the effect still has a delay the
// tick only counts the delay down. Afterwards elapsed runs from 1 to the
// duration; the tick where it would pass the duration either expires the
// effect (Update returns false) or wraps back to 1 when it repeats.
type Effect interface {
	Kind() Kind
	Duration() int
	Repeat() bool
	Elapsed() int
	Expired() bool
	Update(t Target) bool
	// OnRemove runs the removal hook. Owners call it exactly once, when the
	// effect expires or is cancelled, before detaching it.
	OnRemove(t Target)
	Dump() *snapshot.Snapshot
}

// Option configures an effect at construction.
type Option func(*common) error

// WithDelay postpones the first active tick by n ticks.
func WithDelay(n int) Option {
	return func(c *common) error {
		if n < 0 {
			return configErr(c.kind, "negative delay %d", n)
		}
		c.delay, c.initialDelay = n, n
		return nil
	}
}

// WithRepeat makes the effect loop forever.
func WithRepeat() Option {
	return func(c *common) error {
		c.repeat = true
		return nil
	}
}

// WithOnRemove registers fn to run when the effect is removed.
func WithOnRemove(fn func()) Option {
	return func(c *common) error {
		c.onRemove = fn
		return nil
	}
}

// WithEasing selects a named easing curve for the interpolation.
func WithEasing(name string) Option {
	return func(c *common) error {
		if _, ok := easings[name]; !ok {
			return configErr(c.kind, "unknown easing %q", name)
		}
		c.easing = name
		return nil
	}
}

type common struct {
	kind         Kind
	delay        int
	initialDelay int
	repeat       bool
	easing       string
	elapsed      int
	expired      bool
	removed      bool
	onRemove     func()
}

func newCommon(k Kind, opts []Option) (common, error) {
	c := common{kind: k, easing: "linear"}
	if _, ok := payloadKinds[k]; !ok {
		return c, configErr(k, "unknown effect kind")
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (c *common) Kind() Kind    { return c.kind }
func (c *common) Repeat() bool  { return c.repeat }
func (c *common) Elapsed() int  { return c.elapsed }
func (c *common) Expired() bool { return c.expired }

func (c *common) OnRemove(t Target) {
	if c.removed {
		return
	}
	c.removed = true
	c.expired = true
	if c.onRemove != nil {
		c.onRemove()
	}
	if c.kind == KindDuration && t != nil {
		t.Detach()
	}
}

// pending consumes one delay tick if any remain.
func (c *common) pending() bool {
	if c.delay > 0 {
		c.delay--
		return true
	}
	return false
}

// channels builds one interpolator per scalar sub-channel of from→to over [0, ticks].
func (c *common) channels(from, to snapshot.Value, ticks int) []*interp.Interpolator {
	fn := easings[c.easing]
	end := float64(ticks)
	switch from.Kind {
	case snapshot.KindColor:
		a, b := from.AsColor().Channels(), to.AsColor().Channels()
		out := make([]*interp.Interpolator, 4)
		for i := range out {
			out[i] = interp.NewEased(a[i], b[i], 0, end, fn)
		}
		return out
	case snapshot.KindFloat:
		return []*interp.Interpolator{interp.NewEased(from.AsFloat(), to.AsFloat(), 0, end, fn)}
	}
	return nil
}

// apply samples the channels at the elapsed tick and writes the target attribute.
func (c *common) apply(t Target, chans []*interp.Interpolator) {
	at := float64(c.elapsed)
	var v snapshot.Value
	switch len(chans) {
	case 0:
		return
	case 4:
		var ch [4]float64
		for i, ip := range chans {
			ch[i] = ip.Sample(at)
		}
		v = snapshot.ColorValue(snapshot.ColorFromChannels(ch))
	default:
		v = snapshot.Float(chans[0].Sample(at))
	}
	if t != nil {
		t.SetAttribute(c.kind, v)
	}
}

func (c *common) header(tag snapshot.Tag, duration int) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Tag: tag,
		Fields: []snapshot.Value{
			snapshot.Enum(string(c.kind)),
			snapshot.Int(duration),
			snapshot.Int(c.initialDelay),
			snapshot.Bool(c.repeat),
			snapshot.String(c.easing),
		},
	}
}
