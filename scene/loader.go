package scene

import (
	"fmt"
	"io/fs"
	"log"
	"math"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/lafriks/go-tiled"
)

// LoadMap builds the entities placed on the object layers of a TMX map. It
// takes an fs.FS so callers can pass embed.FS or os.DirFS.
//
// An object's class, type or "kind" property selects the entity type:
// image, light, dark, text or emitter. The object layer's name becomes the
// entity layer when it names one. Objects that cannot be built are logged
// and skipped.
func LoadMap(fsys fs.FS, tmxPath string, reg *entity.Registry) ([]entity.Entity, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	var out []entity.Entity
	for _, og := range levelMap.ObjectGroups {
		layer := layerFor(og.Name)
		for _, o := range og.Objects {
			e, err := fromObject(reg, o)
			if err != nil {
				log.Printf("Warning: %s: object %d (%s): %v", tmxPath, o.ID, o.Name, err)
				continue
			}
			b := e.Core()
			b.X, b.Y = o.X+o.Width/2, o.Y+o.Height/2
			b.Layer = layer
			if o.Name != "" {
				e.SetID(o.Name)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// LoadInto adds the entities of a TMX map to s.
func LoadInto(s *Scene, fsys fs.FS, tmxPath string) (int, error) {
	ents, err := LoadMap(fsys, tmxPath, s.Registry)
	if err != nil {
		return 0, err
	}
	for _, e := range ents {
		s.Add(e)
	}
	return len(ents), nil
}

func layerFor(name string) string {
	for _, l := range config.Scene.Layers {
		if l == name {
			return l
		}
	}
	return config.LayerWorld
}

func fromObject(reg *entity.Registry, o *tiled.Object) (entity.Entity, error) {
	props := o.Properties
	kind := o.Class
	if kind == "" {
		kind = o.Type //nolint:staticcheck // TMX uses type= attribute
	}
	if kind == "" {
		kind = props.GetString("kind")
	}
	angle := o.Rotation * math.Pi / 180

	switch kind {
	case "image":
		img := entity.NewImage(reg.Assets(), props.GetString("texture"))
		img.Width, img.Height = o.Width, o.Height
		img.Angle = angle
		if frames := props.GetInt("frames"); frames > 1 {
			img.Mode = entity.ModeAnimated
			img.FrameCount = frames
			img.FrameDelay = max(props.GetInt("frameDelay"), 1)
		}
		if shader := props.GetString("shader"); shader != "" {
			img.Mode = entity.ModeShader
			img.Shader = shader
		}
		return img, nil
	case "light":
		l := entity.NewLight(math.Max(o.Width, o.Height) / 2)
		if v := props.GetFloat("intensity"); v > 0 {
			l.Intensity = v
		}
		if arc := props.GetFloat("arc"); arc > 0 {
			l.Arc = arc * math.Pi / 180
		}
		l.Direction = angle
		return l, nil
	case "dark":
		d := entity.NewDark(o.Width, o.Height)
		d.Angle = angle
		if v := props.GetFloat("shade"); v > 0 {
			d.Shade = v
		}
		return d, nil
	case "text":
		t := entity.NewText(props.GetString("text"))
		if f := props.GetString("font"); f != "" {
			t.Font = f
		}
		if size := props.GetFloat("size"); size > 0 {
			t.Size = size
		}
		t.Angle = angle
		return t, nil
	case "emitter":
		sub := props.GetString("emitter")
		if sub == "" {
			sub = entity.EmitterPoint
		}
		e, err := reg.New(entity.EmitterTag(sub))
		if err != nil {
			return nil, err
		}
		em, ok := e.(*entity.Emitter)
		if !ok {
			return nil, fmt.Errorf("emitter %q built as %T", sub, e)
		}
		em.Direction = angle
		if rate := props.GetFloat("rate"); rate > 0 {
			em.Rate = rate
		}
		if tex := props.GetString("texture"); tex != "" {
			em.SetTexture(tex)
		}
		em.Emitting = !props.GetBool("paused")
		return em, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}
