package entity

import (
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const TagImage snapshot.Tag = "image"

// Image draw modes
const (
	ModeStatic   = "static"
	ModeAnimated = "animated"
	ModeShader   = "shader"
)

// Anchor points
const (
	AnchorCenter    = "center"
	AnchorTopLeft   = "topLeft"
	AnchorBottomMid = "bottomMid"
)

// Image is a textured quad. Animated images step through a horizontal strip
// of FrameCount frames, FrameDelay ticks each; shader images draw through a
// named shader.
type Image struct {
	Base

	TextureRef string
	Texture    Handle

	Width, Height float64
	Angle, Scale  float64
	Color         snapshot.Color
	Brightness    float64
	FlipH, FlipV  bool
	Anchor        string
	Mode          string

	Frame      int
	FrameCount int
	FrameDelay int
	Shader     string

	assets    AssetResolver
	frameTick int
}

// NewImage returns an image showing texture.
func NewImage(assets AssetResolver, texture string) *Image {
	img := &Image{
		Base:       newBase(),
		Scale:      1,
		Color:      snapshot.White,
		Brightness: 1,
		Anchor:     AnchorCenter,
		Mode:       ModeStatic,
		FrameCount: 1,
		FrameDelay: 1,
		assets:     assets,
	}
	img.bind(img)
	img.SetTexture(texture)
	return img
}

// SetTexture resolves ref, falling back to the placeholder. The reference is
// kept as given so the image dumps what it was built from.
func (img *Image) SetTexture(ref string) {
	img.TextureRef = ref
	img.Texture = resolveTexture(img.assets, ref)
}

var imageFields = append(placement[*Image](), table[*Image]{
	{
		desc: discrete("texture", snapshot.KindString),
		get:  func(img *Image) snapshot.Value { return snapshot.String(img.TextureRef) },
		set:  func(img *Image, v snapshot.Value) { img.SetTexture(v.AsString()) },
	},
	floatField(scalar("width", ""), func(img *Image) *float64 { return &img.Width }),
	floatField(scalar("height", ""), func(img *Image) *float64 { return &img.Height }),
	floatField(animated("angle", effects.KindAngle), func(img *Image) *float64 { return &img.Angle }),
	floatField(animated("scale", effects.KindScale), func(img *Image) *float64 { return &img.Scale }),
	colorRef("color", func(img *Image) *snapshot.Color { return &img.Color }),
	floatField(scalar("brightness", effects.KindBrightness), func(img *Image) *float64 { return &img.Brightness }),
	boolField("flip_h", func(img *Image) *bool { return &img.FlipH }),
	boolField("flip_v", func(img *Image) *bool { return &img.FlipV }),
	enumField("anchor", func(img *Image) *string { return &img.Anchor }),
	enumField("mode", func(img *Image) *string { return &img.Mode }),
	intField("frame", func(img *Image) *int { return &img.Frame }),
	intField("frame_count", func(img *Image) *int { return &img.FrameCount }),
	intField("frame_delay", func(img *Image) *int { return &img.FrameDelay }),
	stringField("shader", func(img *Image) *string { return &img.Shader }),
}...)

var imageSchema = imageFields.schema(TagImage, CollOverlays, CollEffects)

func (img *Image) Tag() snapshot.Tag                { return TagImage }
func (img *Image) Schema() *snapshot.Schema         { return imageSchema }
func (img *Image) Field(i int) snapshot.Value       { return imageFields.get(img, i) }
func (img *Image) SetField(i int, v snapshot.Value) { imageFields.set(img, i, v) }
func (img *Image) Resolver() AssetResolver          { return img.assets }

func (img *Image) Update() {
	img.tick()
	if img.Mode != ModeAnimated || img.FrameCount <= 1 {
		return
	}
	img.frameTick++
	if img.frameTick >= max(img.FrameDelay, 1) {
		img.frameTick = 0
		img.Frame = (img.Frame + 1) % img.FrameCount
	}
}
