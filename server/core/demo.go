package core

import (
	"fmt"
	"log"
	"math"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const (
	orbitTicks = 120
	flashEvery = 100
)

// PopulateDemo fills sc with a showcase of every entity type and returns the
// script that animates it.
func PopulateDemo(sc *scene.Scene) (Script, error) {
	reg := sc.Registry
	easing := effects.WithEasing(config.Effects.Easing)

	floor := entity.NewImage(reg.Assets(), "tiles/floor.png")
	floor.SetID("floor")
	floor.Layer = config.LayerBackground
	floor.Anchor = entity.AnchorTopLeft
	floor.Width, floor.Height = float64(config.C.Width), float64(config.C.Height)
	sc.Add(floor)

	hero := entity.NewImage(reg.Assets(), "hero.png")
	hero.SetID("hero")
	hero.Width, hero.Height = 32, 32
	hero.Mode = entity.ModeAnimated
	hero.FrameCount, hero.FrameDelay = 4, 6
	spin, err := effects.NewSingle(effects.KindAngle, config.Effects.SpinTicks,
		snapshot.Float(0), snapshot.Float(2*math.Pi), effects.WithRepeat())
	if err != nil {
		return nil, fmt.Errorf("demo spin: %w", err)
	}
	if err := hero.AddEffect(spin); err != nil {
		return nil, fmt.Errorf("demo spin: %w", err)
	}
	label := entity.NewText("hero")
	label.Align = entity.AlignCenter
	if err := hero.AddOverlay("label", &entity.Overlay{Entity: label, RelX: 0.5, RelY: -0.5, RelWidth: 1, RelHeight: 1, Infinite: true}); err != nil {
		return nil, fmt.Errorf("demo label: %w", err)
	}
	sc.Add(hero)

	lamp := entity.NewLight(120)
	lamp.SetID("lamp")
	lamp.X, lamp.Y = 160, 120
	half := config.Effects.PulseTicks / 2
	pulse, err := effects.NewMulti(effects.KindBrightness,
		[]snapshot.Value{snapshot.Float(1), snapshot.Float(0.4), snapshot.Float(1)}, []int{half, half},
		effects.WithRepeat(), easing)
	if err != nil {
		return nil, fmt.Errorf("demo pulse: %w", err)
	}
	if err := lamp.AddEffect(pulse); err != nil {
		return nil, fmt.Errorf("demo pulse: %w", err)
	}
	sc.Add(lamp)

	shade := entity.NewDark(200, 120)
	shade.SetID("shade")
	shade.X, shade.Y = 480, 260
	sc.Add(shade)

	e, err := reg.New(entity.EmitterTag(entity.EmitterSpark))
	if err != nil {
		return nil, fmt.Errorf("demo sparks: %w", err)
	}
	sparks, ok := e.(*entity.Emitter)
	if !ok {
		return nil, fmt.Errorf("demo sparks: built %T", e)
	}
	sparks.SetID("sparks")
	sparks.X, sparks.Y = 320, 300
	sparks.Direction = -math.Pi / 2
	sparks.Rate, sparks.Speed, sparks.Life = 2, 3, 30
	sc.Add(sparks)

	title := entity.NewText("sylver scene")
	title.SetID("title")
	title.Layer = config.LayerHUD
	title.X, title.Y = 8, 8
	sc.Add(title)

	return func(sc *scene.Scene, tick uint64) {
		animateDemo(sc, tick)
	}, nil
}

// animateDemo moves the hero along an ellipse and drops a fading text flash
// at its position every flashEvery ticks.
func animateDemo(sc *scene.Scene, tick uint64) {
	e, ok := sc.Get("hero")
	if !ok {
		return
	}
	phase := 2 * math.Pi * float64(tick%orbitTicks) / orbitTicks
	b := e.Core()
	b.X = float64(config.C.Width)/2 + 120*math.Cos(phase)
	b.Y = float64(config.C.Height)/2 + 80*math.Sin(phase)

	if tick%flashEvery != 0 {
		return
	}
	flash, err := newFlash(b.X, b.Y)
	if err != nil {
		log.Printf("Warning: demo flash: %v", err)
		return
	}
	sc.Add(flash)
}

// newFlash is a text marker that fades out and detaches itself.
func newFlash(x, y float64) (*entity.Text, error) {
	flash := entity.NewText("*")
	flash.X, flash.Y = x, y
	flash.Layer = config.LayerForeground

	fade, err := effects.NewSingle(effects.KindColor, config.Effects.FadeOutTicks,
		snapshot.ColorValue(snapshot.White), snapshot.ColorValue(snapshot.Color{R: 1, G: 1, B: 1}))
	if err != nil {
		return nil, err
	}
	if err := flash.AddEffect(fade); err != nil {
		return nil, err
	}
	life, err := effects.NewDuration(config.Effects.FadeOutTicks)
	if err != nil {
		return nil, err
	}
	if err := flash.AddEffect(life); err != nil {
		return nil, err
	}
	return flash, nil
}
