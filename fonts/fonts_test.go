package fonts

import (
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

func TestFaceFallsBackForUnknownFont(t *testing.T) {
	if Face("missing", 12) != basicfont.Face7x13 {
		t.Error("unknown font did not fall back to the bitmap face")
	}
}

func TestRegisteredFacesAreCachedPerSize(t *testing.T) {
	if err := Register("go", goregular.TTF); err != nil {
		t.Fatal(err)
	}
	if !Registered("go") {
		t.Fatal("font not registered")
	}

	a, b := Face("go", 12), Face("go", 12.2)
	if a != b {
		t.Error("sizes rounding to the same point got different faces")
	}
	if Face("go", 20) == a {
		t.Error("different sizes share a face")
	}
	if a == basicfont.Face7x13 {
		t.Error("registered font fell back")
	}
}

func TestRegisterRejectsGarbage(t *testing.T) {
	if err := Register("bad", []byte("not a font")); err == nil {
		t.Fatal("expected parse error")
	}
	if Registered("bad") {
		t.Error("unparseable font was registered")
	}
}
