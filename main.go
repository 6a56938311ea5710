package main

import (
	"flag"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/FourSeventy/sylver-engine-sub000/assets"
	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/fonts"
	"github.com/FourSeventy/sylver-engine-sub000/network"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/FourSeventy/sylver-engine-sub000/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// maxCatchUp bounds how many local ticks one Update may run after a stall.
const maxCatchUp = 10

type Game struct {
	bounds image.Rectangle

	client     *network.Client
	scene      *scene.Scene
	renderer   *systems.Renderer
	camera     *systems.Camera
	background *ebiten.Image

	start    time.Time
	lastTick float64
	reported error
}

func NewGame(client *network.Client, res *assets.Resolver, follow string) *Game {
	return &Game{
		client:   client,
		scene:    scene.New(entity.NewRegistry(res)),
		renderer: systems.NewRenderer(res),
		camera:   &systems.Camera{Follow: follow},
		start:    time.Now(),
	}
}

// now is milliseconds since the viewer started.
func (g *Game) now() float64 {
	return float64(time.Since(g.start).Microseconds()) / 1000
}

// tickMs follows the server's announced tick rate once joined.
func (g *Game) tickMs() float64 {
	if rate := g.client.TickRate(); rate > 0 {
		return 1000 / float64(rate)
	}
	return config.Sync.TickDuration()
}

func (g *Game) Update() error {
	now := g.now()
	g.client.ApplyTo(g.scene, now)

	// Effects and particles advance at the server's tick rate
	step := g.tickMs()
	if now-g.lastTick > maxCatchUp*step {
		g.lastTick = now - step
	}
	for now-g.lastTick >= step {
		g.scene.Update()
		g.lastTick += step
	}
	g.scene.Interpolate(now)
	systems.UpdateCamera(g.camera, g.scene)

	if err := g.client.LastError(); err != nil && err != g.reported {
		log.Printf("[client] %v", err)
		g.reported = err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.background != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-g.camera.X, -g.camera.Y)
		screen.DrawImage(g.background, op)
	}
	g.renderer.Draw(screen, g.scene, g.camera, g.now())

	if state := g.client.State(); state != network.StateJoined {
		msg := state.String()
		if err := g.client.LastError(); err != nil {
			msg += ": " + err.Error()
		}
		ebitenutil.DebugPrint(screen, msg)
	}
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	address := flag.String("server", "localhost:7373", "Server address (host:port)")
	name := flag.String("name", "viewer", "Viewer name sent when joining")
	version := flag.String("version", "", "Viewer version sent when joining")
	follow := flag.String("follow", "", "Entity ID the camera follows")
	textureDir := flag.String("textures", config.Assets.TextureDir, "Texture directory")
	shaderDir := flag.String("shaders", config.Assets.ShaderDir, "Extra shader directory")
	fontPath := flag.String("font", "", "TrueType font registered as the default font")
	mapPath := flag.String("background", "", "Tiled map drawn behind the scene")
	bounds := flag.Bool("bounds", false, "Draw culling bounds")
	logFrames := flag.Bool("logframes", false, "Log every applied frame")
	flag.Parse()

	config.Debug.DrawBounds = *bounds
	config.Debug.LogFrames = *logFrames

	if *fontPath != "" {
		ttf, err := os.ReadFile(*fontPath)
		if err == nil {
			err = fonts.Register(config.Assets.DefaultFont, ttf)
		}
		if err != nil {
			log.Printf("Warning: Could not load font: %v", err)
		}
	}

	res := assets.NewResolver(os.DirFS(*textureDir), os.DirFS(*shaderDir))
	client := network.NewClient()
	game := NewGame(client, res, *follow)

	if *mapPath != "" {
		bg, err := assets.RenderBackground(os.DirFS(filepath.Dir(*mapPath)), filepath.Base(*mapPath))
		if err != nil {
			log.Printf("Warning: Could not render background: %v", err)
		}
		game.background = bg
	}

	client.Connect(*address, *version, *name)
	defer client.Disconnect()

	ebiten.SetWindowSize(config.C.Width*2, config.C.Height*2)
	ebiten.SetWindowTitle(config.C.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
