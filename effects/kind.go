// Package effects implements timed animations that own write authority over
// one attribute of an entity while they are attached.
package effects

import (
	"fmt"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/tanema/gween/ease"
)

// Kind names the attribute an effect animates. An entity holds at most one
// effect per kind, so the kind doubles as the effect's collection key.
type Kind string

const (
	KindColor      Kind = "color"
	KindAngle      Kind = "angle"
	KindScale      Kind = "scale"
	KindBrightness Kind = "brightness"
	KindSize       Kind = "size"
	// KindDuration animates nothing; its removal detaches the owner.
	KindDuration Kind = "duration"
)

// payloadKinds maps each effect kind to the value kind of its payload.
var payloadKinds = map[Kind]snapshot.ValueKind{
	KindColor:      snapshot.KindColor,
	KindAngle:      snapshot.KindFloat,
	KindScale:      snapshot.KindFloat,
	KindBrightness: snapshot.KindFloat,
	KindSize:       snapshot.KindFloat,
	KindDuration:   snapshot.KindNone,
}


var easings = map[string]ease.TweenFunc{
	"linear":    ease.Linear,
	"inQuad":    ease.InQuad,
	"outQuad":   ease.OutQuad,
	"inOutQuad": ease.InOutQuad,
	"inSine":    ease.InSine,
	"outSine":   ease.OutSine,
	"inOutSine": ease.InOutSine,
	"outBounce": ease.OutBounce,
}

// ConfigurationError reports an effect that cannot be built from its arguments.
type ConfigurationError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("effect %s: %s", e.Kind, e.Reason)
}

func configErr(k Kind, format string, args ...any) error {
	return &ConfigurationError{Kind: k, Reason: fmt.Sprintf(format, args...)}
}

func checkPayload(k Kind, v snapshot.Value, what string) error {
	want := payloadKinds[k]
	if v.Kind != want {
		return configErr(k, "%s is %s, want %s", what, v.Kind, want)
	}
	return nil
}

// Target is the entity side of an effect.
type Target interface {
	SetAttribute(kind Kind, v snapshot.Value)
	// Detach removes the target from whatever scene holds it.
	Detach()
}
