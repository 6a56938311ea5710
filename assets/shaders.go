package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed shaders/*.kage
var shaderFS embed.FS

// Shader returns the compiled shader called name. The shader directory is
// searched first, then the built-in shaders.
func (r *Resolver) Shader(name string) (*ebiten.Shader, error) {
	if sh, ok := r.shaders[name]; ok {
		return sh, nil
	}

	file := name + ".kage"
	src, err := readFirst(file, r.shaderFS, shaderSub())
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	sh, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader %s: %w", name, err)
	}
	r.shaders[name] = sh
	return sh, nil
}

func shaderSub() fs.FS {
	sub, err := fs.Sub(shaderFS, "shaders")
	if err != nil {
		return nil
	}
	return sub
}

func readFirst(name string, fss ...fs.FS) ([]byte, error) {
	var lastErr error = fs.ErrNotExist
	for _, fsys := range fss {
		if fsys == nil {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Clean(name))
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
