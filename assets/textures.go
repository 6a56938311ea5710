// Package assets resolves texture and shader references for the viewer.
package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Resolver loads textures from a file system and caches them by reference.
// It implements entity.AssetResolver with *ebiten.Image handles.
type Resolver struct {
	fsys     fs.FS
	shaderFS fs.FS

	cache       map[string]*ebiten.Image
	frameCache  map[string]*ebiten.Image
	shaders     map[string]*ebiten.Shader
	placeholder *ebiten.Image
}

// NewResolver reads textures from textures and custom shaders from shaders.
// Either may be nil.
func NewResolver(textures, shaders fs.FS) *Resolver {
	return &Resolver{
		fsys:       textures,
		shaderFS:   shaders,
		cache:      make(map[string]*ebiten.Image),
		frameCache: make(map[string]*ebiten.Image),
		shaders:    make(map[string]*ebiten.Shader),
	}
}

func (r *Resolver) Texture(ref string) (entity.Handle, error) {
	if ref == config.Assets.Placeholder {
		return r.Placeholder(), nil
	}
	if img, ok := r.cache[ref]; ok {
		return img, nil
	}
	if r.fsys == nil {
		return nil, fmt.Errorf("no texture source for %q", ref)
	}

	imgBytes, err := fs.ReadFile(r.fsys, path.Clean(ref))
	if err != nil {
		return nil, fmt.Errorf("read texture %s: %w", ref, err)
	}
	img, _, err := ebitenutil.NewImageFromReader(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", ref, err)
	}

	r.cache[ref] = img
	return img, nil
}

// Placeholder is a magenta checkerboard, created on first use.
func (r *Resolver) Placeholder() entity.Handle {
	if r.placeholder == nil {
		n := config.Assets.PlaceholderSize
		r.placeholder = ebiten.NewImage(n, n)
		half := n / 2
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				if (x < half) == (y < half) {
					r.placeholder.Set(x, y, config.Assets.PlaceholderColor)
				}
			}
		}
	}
	return r.placeholder
}

// Frame returns frame i of a horizontal strip of count frames cut from img.
func (r *Resolver) Frame(ref string, img *ebiten.Image, i, count int) *ebiten.Image {
	if count <= 1 {
		return img
	}
	key := fmt.Sprintf("%s#%d/%d", ref, i, count)
	if f, ok := r.frameCache[key]; ok {
		return f
	}

	b := img.Bounds()
	w := b.Dx() / count
	src := image.Rect(b.Min.X+i*w, b.Min.Y, b.Min.X+(i+1)*w, b.Max.Y)
	frame := img.SubImage(src).(*ebiten.Image)
	r.frameCache[key] = frame
	return frame
}
