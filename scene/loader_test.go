package scene

import (
	"testing"
	"testing/fstest"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
)

const testMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="10" height="10" tilewidth="16" tileheight="16" infinite="0" nextlayerid="3" nextobjectid="5">
 <objectgroup id="1" name="foreground">
  <object id="1" name="lamp" class="light" x="10" y="20" width="40" height="40">
   <properties>
    <property name="intensity" type="float" value="0.5"/>
   </properties>
  </object>
  <object id="2" type="dark" x="0" y="0" width="20" height="10"/>
  <object id="3" name="teapot" x="0" y="0" width="5" height="5">
   <properties>
    <property name="kind" value="teapot"/>
   </properties>
  </object>
 </objectgroup>
 <objectgroup id="2" name="props">
  <object id="4" name="sign" x="100" y="100" width="0" height="0">
   <properties>
    <property name="kind" value="text"/>
    <property name="text" value="exit"/>
   </properties>
  </object>
 </objectgroup>
</map>
`

func TestLoadInto(t *testing.T) {
	fsys := fstest.MapFS{"levels/test.tmx": {Data: []byte(testMap)}}
	s := newScene()

	n, err := LoadInto(s, fsys, "levels/test.tmx")
	if err != nil {
		t.Fatal(err)
	}
	// The teapot has no builder and is skipped
	if n != 3 || s.Len() != 3 {
		t.Fatalf("loaded %d objects, scene holds %d, want 3", n, s.Len())
	}

	e, ok := s.Get("lamp")
	if !ok {
		t.Fatal("named object not stored under its name")
	}
	lamp, ok := e.(*entity.Light)
	if !ok {
		t.Fatalf("lamp built as %T", e)
	}
	if lamp.X != 30 || lamp.Y != 40 || lamp.Radius != 20 || lamp.Intensity != 0.5 {
		t.Fatalf("lamp at (%v,%v) radius %v intensity %v", lamp.X, lamp.Y, lamp.Radius, lamp.Intensity)
	}
	if lamp.Layer != config.LayerForeground {
		t.Fatalf("lamp layer %q, want %q", lamp.Layer, config.LayerForeground)
	}

	sign, ok := s.Get("sign")
	if !ok {
		t.Fatal("sign missing")
	}
	if txt := sign.(*entity.Text); txt.Text != "exit" || txt.Layer != config.LayerWorld {
		t.Fatalf("sign text %q layer %q", txt.Text, txt.Layer)
	}

	var darks int
	s.Each("dark", func(entity.Entity) { darks++ })
	if darks != 1 {
		t.Fatalf("%d darks from the type attribute, want 1", darks)
	}
}

func TestLoadMapMissingFile(t *testing.T) {
	if _, err := LoadMap(fstest.MapFS{}, "levels/none.tmx", entity.NewRegistry(entity.Any{})); err == nil {
		t.Fatal("expected an error for a missing map")
	}
}
