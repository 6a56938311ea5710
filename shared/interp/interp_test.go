package interp

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestSampleClampsOutsideWindow(t *testing.T) {
	ip := New(0, 10, 100, 200)

	tests := []struct {
		at   float64
		want float64
	}{
		{50, 0},
		{100, 0},
		{150, 5},
		{200, 10},
		{250, 10},
	}
	for _, tt := range tests {
		if got := ip.Sample(tt.at); got != tt.want {
			t.Errorf("Sample(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestSampleReturnsExactBounds(t *testing.T) {
	ip := New(0.1, 0.7, 0, 3)
	if got := ip.Sample(3); got != 0.7 {
		t.Fatalf("end sample = %v, want exactly 0.7", got)
	}
	if got := ip.Sample(0); got != 0.1 {
		t.Fatalf("start sample = %v, want exactly 0.1", got)
	}
}

func TestZeroWidthWindow(t *testing.T) {
	ip := New(3, 9, 50, 50)
	if got := ip.Sample(49); got != 3 {
		t.Errorf("before = %v, want 3", got)
	}
	if got := ip.Sample(50); got != 9 {
		t.Errorf("at = %v, want 9 (end wins on a zero window)", got)
	}
	if got := ip.Sample(51); got != 9 {
		t.Errorf("after = %v, want 9", got)
	}
}

func TestEasedKeepsBounds(t *testing.T) {
	ip := NewEased(-4, 4, 0, 10, ease.InOutQuad)
	if got := ip.Sample(0); got != -4 {
		t.Errorf("start = %v", got)
	}
	if got := ip.Sample(10); got != 4 {
		t.Errorf("end = %v", got)
	}
	if got := ip.Sample(5); math.Abs(got) > 1e-4 {
		t.Errorf("midpoint = %v, want ~0", got)
	}
}
