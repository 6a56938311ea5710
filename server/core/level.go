package core

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/FourSeventy/sylver-engine-sub000/scene"
)

// LoadLevel adds the objects of levels/<name>.tmx under assetsDir to sc.
func LoadLevel(sc *scene.Scene, assetsDir, name string) error {
	fsys := os.DirFS(assetsDir)
	tmx := path.Join("levels", name+".tmx")
	n, err := scene.LoadInto(sc, fsys, tmx)
	if err != nil {
		return fmt.Errorf("load level %s: %w", name, err)
	}

	log.Printf("[server] loaded level %s: %d objects", name, n)
	return nil
}

// ListLevels returns the sorted stem names of the .tmx files in assetsDir/levels.
func ListLevels(assetsDir string) ([]string, error) {
	entries, err := fs.ReadDir(os.DirFS(assetsDir), "levels")
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmx") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".tmx"))
	}
	sort.Strings(names)
	return names, nil
}
