// Package fonts caches font faces by name and size for text entities.
package fonts

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

type faceKey struct {
	name string
	size int
}

var (
	mu     sync.Mutex
	parsed = map[string]*truetype.Font{}
	faces  = map[faceKey]font.Face{}
	warned = map[string]bool{}
)

// Register parses a TrueType font and makes it available under name.
func Register(name string, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", name, err)
	}
	mu.Lock()
	defer mu.Unlock()
	parsed[name] = f
	for k := range faces {
		if k.name == name {
			delete(faces, k)
		}
	}
	return nil
}

// Face returns the face for name at size, rounded to whole points. Unknown
// names fall back to the built-in bitmap face.
func Face(name string, size float64) font.Face {
	key := faceKey{name: name, size: int(math.Max(1, math.Round(size)))}

	mu.Lock()
	defer mu.Unlock()
	if f, ok := faces[key]; ok {
		return f
	}
	ttf, ok := parsed[name]
	if !ok {
		if !warned[name] {
			log.Printf("Warning: font %q not registered, using fallback face", name)
			warned[name] = true
		}
		return basicfont.Face7x13
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: float64(key.size)})
	faces[key] = f
	return f
}

// Registered reports whether name has been registered.
func Registered(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	_, ok := parsed[name]
	return ok
}
