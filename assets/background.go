package assets

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lafriks/go-tiled"
	"github.com/lafriks/go-tiled/render"
)

// RenderBackground draws the tile layers of a Tiled map into one image.
// Layers with a false "render" property are skipped.
func RenderBackground(fsys fs.FS, tmxPath string) (*ebiten.Image, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", tmxPath, err)
	}

	renderer, err := render.NewRendererWithFileSystem(levelMap, fsys)
	if err != nil {
		return nil, fmt.Errorf("create renderer for %s: %w", tmxPath, err)
	}

	bg := ebiten.NewImage(levelMap.Width*levelMap.TileWidth, levelMap.Height*levelMap.TileHeight)
	for i, layer := range levelMap.Layers {
		// go-tiled defaults opacity to 1
		if layer.Properties.GetString("render") == "false" || layer.Opacity <= 0 {
			continue
		}
		if err := renderer.RenderLayer(i); err != nil {
			// Object layers are not tile layers
			log.Printf("Warning: Failed to render layer %d: %v", i, err)
			renderer.Clear()
			continue
		}
		layerImage := ebiten.NewImageFromImage(renderer.Result)
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(float32(layer.Opacity))
		bg.DrawImage(layerImage, op)
		layerImage.Deallocate()
		renderer.Clear()
	}
	return bg, nil
}
