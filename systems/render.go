// Package systems draws a scene with ebiten and moves the viewer's camera.
package systems

import (
	"image"
	"image/color"
	"log"
	"math"

	"github.com/FourSeventy/sylver-engine-sub000/assets"
	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	// whitePixel is the source of untextured triangles
	whitePixel = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Renderer draws the visible part of a scene. Entities are drawn in layer
// order; overlays follow the entity they belong to.
type Renderer struct {
	assets *assets.Resolver

	// seconds, fed to shaders
	time float64

	badShaders map[string]bool
}

func NewRenderer(a *assets.Resolver) *Renderer {
	return &Renderer{assets: a, badShaders: make(map[string]bool)}
}

// Draw renders sc as seen by cam. now is the viewer clock in milliseconds.
func (r *Renderer) Draw(screen *ebiten.Image, sc *scene.Scene, cam *Camera, now float64) {
	r.time = now / 1000
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	var view ebiten.GeoM
	view.Translate(-cam.X, -cam.Y)

	for _, e := range sc.Visible(cam.X, cam.Y, w, h) {
		r.drawEntity(screen, e, view)
	}
	if config.Debug.DrawBounds {
		drawBounds(screen, sc, cam)
	}
}

func (r *Renderer) drawEntity(dst *ebiten.Image, e entity.Entity, parent ebiten.GeoM) {
	switch v := e.(type) {
	case *entity.Image:
		r.drawImage(dst, v, parent)
	case *entity.Light:
		drawLight(dst, v, parent)
	case *entity.Dark:
		drawDark(dst, v, parent)
	case *entity.Emitter:
		r.drawParticles(dst, v, parent)
	case *entity.Text:
		drawText(dst, v, parent)
	}
	r.drawOverlays(dst, e, parent)
}

// drawOverlays places each overlay relative to its owner's bounds.
func (r *Renderer) drawOverlays(dst *ebiten.Image, e entity.Entity, parent ebiten.GeoM) {
	b := e.Core()
	keys := b.OverlayKeys()
	if len(keys) == 0 {
		return
	}
	bx, by, bw, bh := scene.Bounds(e)
	for _, key := range keys {
		ov, ok := b.Overlay(key)
		if !ok || ov.Entity == nil || !ov.Entity.Core().Visible {
			continue
		}
		var geo ebiten.GeoM
		geo.Scale(ov.RelWidth, ov.RelHeight)
		geo.Translate(bx+ov.RelX*bw, by+ov.RelY*bh)
		geo.Concat(parent)
		r.drawEntity(dst, ov.Entity, geo)
	}
}

func (r *Renderer) texture(h entity.Handle) *ebiten.Image {
	if img, ok := h.(*ebiten.Image); ok {
		return img
	}
	if r.assets == nil {
		return nil
	}
	img, _ := r.assets.Placeholder().(*ebiten.Image)
	return img
}

func (r *Renderer) drawImage(dst *ebiten.Image, img *entity.Image, parent ebiten.GeoM) {
	tex := r.texture(img.Texture)
	if tex == nil {
		return
	}
	if img.Mode == entity.ModeAnimated && r.assets != nil {
		tex = r.assets.Frame(img.TextureRef, tex, img.Frame, img.FrameCount)
	}
	tw, th := float64(tex.Bounds().Dx()), float64(tex.Bounds().Dy())
	if tw == 0 || th == 0 {
		return
	}
	w, h := img.Width, img.Height
	if w <= 0 {
		w = tw
	}
	if h <= 0 {
		h = th
	}

	var geo ebiten.GeoM
	if img.FlipH {
		geo.Scale(-1, 1)
		geo.Translate(tw, 0)
	}
	if img.FlipV {
		geo.Scale(1, -1)
		geo.Translate(0, th)
	}
	geo.Scale(w/tw*img.Scale, h/th*img.Scale)
	ax, ay := anchorOffset(img.Anchor, w*img.Scale, h*img.Scale)
	geo.Translate(ax, ay)
	geo.Rotate(img.Angle)
	geo.Translate(img.X, img.Y)
	geo.Concat(parent)

	if img.Mode == entity.ModeShader && r.drawShaded(dst, img, tex, geo) {
		return
	}

	op := &ebiten.DrawImageOptions{GeoM: geo}
	scaleColor(&op.ColorScale, img.Color, img.Brightness)
	dst.DrawImage(tex, op)
}

// drawShaded reports false when the shader is unavailable so the caller can
// fall back to a plain draw.
func (r *Renderer) drawShaded(dst *ebiten.Image, img *entity.Image, tex *ebiten.Image, geo ebiten.GeoM) bool {
	if r.assets == nil || img.Shader == "" || r.badShaders[img.Shader] {
		return false
	}
	sh, err := r.assets.Shader(img.Shader)
	if err != nil {
		log.Printf("Warning: %v, drawing %s unshaded", err, img.ID())
		r.badShaders[img.Shader] = true
		return false
	}

	op := &ebiten.DrawRectShaderOptions{GeoM: geo}
	op.Images[0] = tex
	op.Uniforms = map[string]any{
		"Time":       float32(r.time),
		"Brightness": float32(img.Brightness),
	}
	scaleColor(&op.ColorScale, img.Color, 1)
	b := tex.Bounds()
	dst.DrawRectShader(b.Dx(), b.Dy(), sh, op)
	return true
}

// anchorOffset is the offset from an entity's position to its top-left corner.
func anchorOffset(anchor string, w, h float64) (float64, float64) {
	switch anchor {
	case entity.AnchorTopLeft:
		return 0, 0
	case entity.AnchorBottomMid:
		return -w / 2, -h
	}
	return -w / 2, -h / 2
}

func scaleColor(cs *ebiten.ColorScale, c snapshot.Color, brightness float64) {
	cs.Scale(
		float32(c.R*brightness*c.A),
		float32(c.G*brightness*c.A),
		float32(c.B*brightness*c.A),
		float32(c.A),
	)
}

func nrgba(c snapshot.Color, alpha float64) color.NRGBA {
	ch := func(v float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	return color.NRGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A * alpha)}
}
