package config

import "image/color"

// Config holds window settings for the viewer
type Config struct {
	Width  int
	Height int
	Title  string
}

// SyncConfig contains replication timing values
type SyncConfig struct {
	TickRate int // Simulation ticks per second on the server

	// Interpolation window. A delta received at time t is blended from
	// t to t+InterpWindowMs on the client.
	InterpWindowMs float64

	// Animated fields closer than this are treated as unchanged by the differ
	FloatEpsilon float64

	// Frames buffered by the client before the oldest is dropped
	FrameQueueSize int
}

// TickDuration returns the simulation tick length in milliseconds.
func (s SyncConfig) TickDuration() float64 {
	return 1000 / float64(s.TickRate)
}

// SceneConfig contains world and spatial index sizing
type SceneConfig struct {
	Width    int
	Height   int
	CellSize int // resolv cell size for view culling

	IDPrefix string // Prefix for entity IDs minted by the scene

	// Layer draw order, back to front
	Layers []string
}

// AssetsConfig contains texture and font lookup settings
type AssetsConfig struct {
	TextureDir  string
	ShaderDir   string
	Placeholder string // Reference drawn when a texture cannot be resolved

	PlaceholderColor color.RGBA
	PlaceholderSize  int

	DefaultFont     string
	DefaultFontSize float64
}

// PersistenceConfig contains save slot settings
type PersistenceConfig struct {
	AppName string
	Slot    string
}

// EffectsConfig contains defaults for effects created by the demo server
type EffectsConfig struct {
	PulseTicks   int
	SpinTicks    int
	FadeOutTicks int
	Easing       string
}

// DebugConfig toggles diagnostic output
type DebugConfig struct {
	LogFrames  bool // Log every frame applied by the client
	DrawBounds bool // Draw culling rectangles in the viewer
}

var (
	C           *Config
	Sync        SyncConfig
	Scene       SceneConfig
	Assets      AssetsConfig
	Persistence PersistenceConfig
	Effects     EffectsConfig
	Debug       DebugConfig
)

// Layer names in draw order
const (
	LayerBackground = "background"
	LayerWorld      = "world"
	LayerForeground = "foreground"
	LayerHUD        = "hud"
)

func init() {
	C = &Config{
		Width:  640,
		Height: 360,
		Title:  "Scene Viewer",
	}

	Sync = SyncConfig{
		TickRate:       20,
		InterpWindowMs: 100,
		FloatEpsilon:   0.001,
		FrameQueueSize: 64,
	}

	Scene = SceneConfig{
		Width:    2048,
		Height:   2048,
		CellSize: 32,
		IDPrefix: "obj",
		Layers:   []string{LayerBackground, LayerWorld, LayerForeground, LayerHUD},
	}

	Assets = AssetsConfig{
		TextureDir:       "assets/images",
		ShaderDir:        "assets/shaders",
		Placeholder:      "placeholder",
		PlaceholderColor: color.RGBA{R: 255, G: 0, B: 255, A: 255},
		PlaceholderSize:  16,
		DefaultFont:      "default",
		DefaultFontSize:  12,
	}

	Persistence = PersistenceConfig{
		AppName: "sylver_scene",
		Slot:    "scene",
	}

	Effects = EffectsConfig{
		PulseTicks:   40,
		SpinTicks:    60,
		FadeOutTicks: 30,
		Easing:       "inOutSine",
	}

	Debug = DebugConfig{}
}
