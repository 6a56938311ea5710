package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/persistence"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// sender is the part of a connection the server writes to.
type sender interface {
	SendMessage(msg any) error
}

type viewer struct {
	id     string
	name   string
	conn   sender
	joined bool
}

// Script mutates the scene once per tick before it is captured.
type Script func(sc *scene.Scene, tick uint64)

// Server owns the authoritative scene and streams frames to viewers.
type Server struct {
	name    string
	version string

	scene     *scene.Scene
	repl      *scene.Replicator
	scripts   []Script
	loop      *GameLoop
	transport *transports.WsServerTransport
	started   time.Time

	store persistence.Store
	slot  string

	// Viewers are added by router callbacks and served by the loop
	viewers map[string]*viewer
	mu      sync.Mutex
}

// NewServer creates a server with an empty scene. version is the required
// viewer version; empty accepts any.
func NewServer(tickRate int, name, version string) *Server {
	reg := entity.NewRegistry(entity.Any{})
	s := &Server{
		name:    name,
		version: version,
		scene:   scene.New(reg),
		repl:    scene.NewReplicator(reg),
		viewers: make(map[string]*viewer),
		started: time.Now(),
	}
	s.loop = NewGameLoop(s, tickRate)
	return s
}

// Scene returns the authoritative scene. Only touch it before Start or from a Script.
func (s *Server) Scene() *scene.Scene { return s.scene }

// AddScript runs fn every tick, in the order scripts were added.
func (s *Server) AddScript(fn Script) { s.scripts = append(s.scripts, fn) }

// UsePersistence restores the scene from slot and saves it back on Stop.
func (s *Server) UsePersistence(st persistence.Store, slot string) error {
	s.store, s.slot = st, slot
	snaps, err := persistence.Load(st, slot, s.scene.Registry)
	if err != nil {
		return fmt.Errorf("restore scene: %w", err)
	}
	for _, snap := range snaps {
		e, err := s.scene.Registry.Build(snap)
		if err != nil {
			log.Printf("Warning: Could not restore %s: %v", snap.ID, err)
			continue
		}
		s.scene.Add(e)
	}
	if len(snaps) > 0 {
		log.Printf("[server] restored %d entities from %q", len(snaps), slot)
	}
	return nil
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	s.setupRouterCallbacks()
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop halts the loop and saves the scene when persistence is in use.
func (s *Server) Stop() {
	s.loop.Stop()
	if s.store == nil {
		return
	}
	if err := persistence.Save(s.store, s.slot, s.scene.Registry, s.scene.Capture()); err != nil {
		log.Printf("Warning: Could not save scene: %v", err)
	}
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client.Id(), err)
	})

	router.On(func(client *router.NetworkClient, req protocol.JoinRequest) {
		s.onJoin(client.Id(), client, req)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client %s error: %v", client.Id(), err)
	})
}

// onJoin queues an accepted viewer; the loop sends its baseline on the next tick.
func (s *Server) onJoin(id string, conn sender, req protocol.JoinRequest) {
	if reason := s.rejectReason(req); reason != "" {
		log.Printf("[server] rejecting %s (%s): %s", id, req.Name, reason)
		if err := conn.SendMessage(protocol.JoinRejected{Reason: reason}); err != nil {
			log.Printf("[server] send to %s failed: %v", id, err)
		}
		return
	}

	s.mu.Lock()
	s.viewers[id] = &viewer{id: id, name: req.Name, conn: conn}
	s.mu.Unlock()
	log.Printf("[server] %s joined as %q", id, req.Name)
}

func (s *Server) rejectReason(req protocol.JoinRequest) string {
	if req.WireVersion != protocol.WireVersion {
		return fmt.Sprintf("wire version %d, server speaks %d", req.WireVersion, protocol.WireVersion)
	}
	if s.version != "" && req.Version != s.version {
		return fmt.Sprintf("version %q required, got %q", s.version, req.Version)
	}
	return ""
}

func (s *Server) onDisconnect(id string, err error) {
	if err != nil {
		log.Printf("[server] client %s disconnected with error: %v", id, err)
	} else {
		log.Printf("[server] client %s disconnected", id)
	}
	s.mu.Lock()
	delete(s.viewers, id)
	s.mu.Unlock()
}

// now is milliseconds since the server started.
func (s *Server) now() float64 {
	return float64(time.Since(s.started).Microseconds()) / 1000
}

// Step advances the scene one tick at time now, sends the resulting frame to
// joined viewers and brings newly joined viewers up with a baseline.
func (s *Server) Step(now float64) {
	tick := s.repl.Tick() + 1
	for _, script := range s.scripts {
		script(s.scene, tick)
	}
	s.scene.Update()

	frame := s.repl.Next(now, s.scene.Capture())
	if config.Debug.LogFrames && !frame.Empty() {
		log.Printf("[server] tick %d: %d spawns, %d despawns, %d deltas",
			frame.Tick, len(frame.Spawns), len(frame.Despawns), len(frame.Deltas))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []*viewer
	for _, v := range s.viewers {
		if !v.joined {
			fresh = append(fresh, v)
		}
	}
	if !frame.Empty() {
		s.broadcast(frame)
	}
	for _, v := range fresh {
		s.admit(v, now)
	}
}

// broadcast sends f to every joined viewer. Callers hold s.mu.
func (s *Server) broadcast(f *protocol.Frame) {
	msg, err := protocol.Encode(f)
	if err != nil {
		log.Printf("Warning: frame %d not sent: %v", f.Tick, err)
		return
	}
	for _, v := range s.viewers {
		if !v.joined {
			continue
		}
		if err := v.conn.SendMessage(msg); err != nil {
			log.Printf("[server] send to %s failed: %v", v.id, err)
		}
	}
}

func (s *Server) admit(v *viewer, now float64) {
	accepted := protocol.JoinAccepted{
		ServerName:     s.name,
		TickRate:       s.loop.tickRate,
		InterpWindowMs: config.Sync.InterpWindowMs,
	}
	if err := v.conn.SendMessage(accepted); err != nil {
		log.Printf("[server] send to %s failed: %v", v.id, err)
		return
	}
	msg, err := protocol.Encode(s.repl.Baseline(now))
	if err != nil {
		log.Printf("Warning: baseline for %s not sent: %v", v.id, err)
		return
	}
	if err := v.conn.SendMessage(msg); err != nil {
		log.Printf("[server] send to %s failed: %v", v.id, err)
		return
	}
	v.joined = true
}

// ViewerCount returns the number of joined viewers
func (s *Server) ViewerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.viewers {
		if v.joined {
			n++
		}
	}
	return n
}
