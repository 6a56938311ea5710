package entity

import (
	"fmt"
	"log"
)

// Handle is a renderable resolved from a texture reference. The viewer
// resolves to *ebiten.Image; headless peers resolve to the reference itself.
type Handle any

// AssetResolver turns texture references into renderable handles.
type AssetResolver interface {
	Texture(ref string) (Handle, error)
	// Placeholder is drawn in place of a texture that failed to resolve.
	Placeholder() Handle
}

// resolveTexture never fails: a missing texture degrades to the placeholder.
func resolveTexture(r AssetResolver, ref string) Handle {
	if r == nil || ref == "" {
		return nil
	}
	h, err := r.Texture(ref)
	if err != nil {
		log.Printf("Warning: texture %q unavailable, using placeholder: %v", ref, err)
		return r.Placeholder()
	}
	return h
}

// Manifest is a headless resolver that knows a fixed set of references.
type Manifest map[string]bool

func (m Manifest) Texture(ref string) (Handle, error) {
	if !m[ref] {
		return nil, fmt.Errorf("texture %q not in manifest", ref)
	}
	return ref, nil
}

func (m Manifest) Placeholder() Handle { return placeholder{} }

// Any resolver accepts every reference.
type Any struct{}

func (Any) Texture(ref string) (Handle, error) { return ref, nil }
func (Any) Placeholder() Handle                { return placeholder{} }

type placeholder struct{}

// IsPlaceholder reports whether h is the headless placeholder handle.
func IsPlaceholder(h Handle) bool {
	_, ok := h.(placeholder)
	return ok
}
