package entity

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// EmitterCategory is the tag prefix of every particle emitter kind.
const EmitterCategory = "emitter"

// Built-in emitter kinds
const (
	EmitterPoint    = "point"
	EmitterTextured = "textured"
	EmitterSpark    = "spark"
)

// EmitterTag returns the tag of the emitter kind name.
func EmitterTag(kind string) snapshot.Tag {
	return snapshot.Tag(EmitterCategory + "/" + kind)
}

// Particle is one simulated particle. Particles are local to each peer and
// never replicated.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Size   float64
	Color  snapshot.Color
	Age    int
	Life   int
}

// Fade is the remaining fraction of the particle's life.
func (p *Particle) Fade() float64 {
	if p.Life <= 0 {
		return 0
	}
	return 1 - float64(p.Age)/float64(p.Life)
}

// Behavior is what distinguishes one emitter kind from another.
type Behavior interface {
	// Spawn adjusts a particle the emitter has just placed and aimed.
	Spawn(e *Emitter, p *Particle)
	// Step applies the kind's forces after the Euler position step.
	Step(p *Particle)
	// Textured reports whether particles are drawn with the emitter texture.
	Textured() bool
}

// Emitter spawns Rate particles per tick along Direction ± Spread/2.
type Emitter struct {
	Base

	Direction    float64
	Spread       float64
	Rate         float64
	Speed        float64
	Life         int
	Color        snapshot.Color
	Size         float64
	TextureRef   string
	Texture      Handle
	Emitting     bool
	MaxParticles int

	tag       snapshot.Tag
	schema    *snapshot.Schema
	behavior  Behavior
	assets    AssetResolver
	particles []Particle
	carry     float64
	rng       *rand.Rand
}

func newEmitter(tag snapshot.Tag, schema *snapshot.Schema, b Behavior, assets AssetResolver) *Emitter {
	e := &Emitter{
		Base:         newBase(),
		Spread:       math.Pi / 4,
		Rate:         1,
		Speed:        1,
		Life:         30,
		Color:        snapshot.White,
		Size:         2,
		Emitting:     true,
		MaxParticles: 128,
		tag:          tag,
		schema:       schema,
		behavior:     b,
		assets:       assets,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	e.bind(e)
	return e
}

func (e *Emitter) SetTexture(ref string) {
	e.TextureRef = ref
	e.Texture = resolveTexture(e.assets, ref)
}

var emitterFields = append(placement[*Emitter](), table[*Emitter]{
	floatField(animated("direction", effects.KindAngle), func(e *Emitter) *float64 { return &e.Direction }),
	floatField(scalar("spread", ""), func(e *Emitter) *float64 { return &e.Spread }),
	floatField(scalar("rate", ""), func(e *Emitter) *float64 { return &e.Rate }),
	floatField(scalar("speed", ""), func(e *Emitter) *float64 { return &e.Speed }),
	intField("life", func(e *Emitter) *int { return &e.Life }),
	colorRef("color", func(e *Emitter) *snapshot.Color { return &e.Color }),
	floatField(scalar("size", effects.KindSize), func(e *Emitter) *float64 { return &e.Size }),
	{
		desc: discrete("texture", snapshot.KindString),
		get:  func(e *Emitter) snapshot.Value { return snapshot.String(e.TextureRef) },
		set:  func(e *Emitter, v snapshot.Value) { e.SetTexture(v.AsString()) },
	},
	boolField("emitting", func(e *Emitter) *bool { return &e.Emitting }),
	intField("max_particles", func(e *Emitter) *int { return &e.MaxParticles }),
}...)

func emitterSchema(tag snapshot.Tag) *snapshot.Schema {
	return emitterFields.schema(tag, CollEffects)
}

func (e *Emitter) Tag() snapshot.Tag                { return e.tag }
func (e *Emitter) Schema() *snapshot.Schema         { return e.schema }
func (e *Emitter) Field(i int) snapshot.Value       { return emitterFields.get(e, i) }
func (e *Emitter) SetField(i int, v snapshot.Value) { emitterFields.set(e, i, v) }
func (e *Emitter) Behavior() Behavior               { return e.behavior }
func (e *Emitter) Particles() []Particle            { return e.particles }

// Rand is the emitter's private random source.
func (e *Emitter) Rand() *rand.Rand { return e.rng }

// SetID also reseeds the random source, so two emitters of one kind spray
// differently and an emitter keeps its pattern when rebuilt under its ID.
func (e *Emitter) SetID(id string) {
	e.Base.SetID(id)
	h := fnv.New64a()
	h.Write([]byte(id))
	e.rng = rand.New(rand.NewPCG(h.Sum64(), uint64(len(id))))
}

func (e *Emitter) Update() {
	e.tick()
	if e.Emitting {
		e.carry += e.Rate
		for e.carry >= 1 && len(e.particles) < e.MaxParticles {
			e.spawn()
			e.carry--
		}
		if len(e.particles) >= e.MaxParticles {
			e.carry = 0
		}
	}

	live := e.particles[:0]
	for i := range e.particles {
		p := &e.particles[i]
		p.X += p.VX
		p.Y += p.VY
		p.Age++
		e.behavior.Step(p)
		if p.Age < p.Life {
			live = append(live, *p)
		}
	}
	e.particles = live
}

func (e *Emitter) spawn() {
	angle := e.Direction + (e.rng.Float64()-0.5)*e.Spread
	p := Particle{
		X:     e.X,
		Y:     e.Y,
		VX:    math.Cos(angle) * e.Speed,
		VY:    math.Sin(angle) * e.Speed,
		Size:  e.Size,
		Color: e.Color,
		Life:  e.Life,
	}
	e.behavior.Spawn(e, &p)
	e.particles = append(e.particles, p)
}

type pointBehavior struct{}

func (pointBehavior) Spawn(*Emitter, *Particle) {}
func (pointBehavior) Textured() bool            { return false }

func (pointBehavior) Step(p *Particle) {
	p.VX *= 0.98
	p.VY *= 0.98
}

type texturedBehavior struct{}

func (texturedBehavior) Spawn(*Emitter, *Particle) {}
func (texturedBehavior) Textured() bool            { return true }

func (texturedBehavior) Step(p *Particle) {
	p.Size *= 0.99
}

// sparkBehavior throws particles at a random fraction of the emitter speed
// and pulls them down.
type sparkBehavior struct {
	gravity float64
}

func (sparkBehavior) Textured() bool { return false }

func (s sparkBehavior) Spawn(e *Emitter, p *Particle) {
	k := 0.5 + e.Rand().Float64()
	p.VX *= k
	p.VY *= k
}

func (s sparkBehavior) Step(p *Particle) {
	p.VY += s.gravity
	p.Size *= 0.95
}
