// Package network connects a viewer to a scene server and queues the frames
// it receives in arrival order.
package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoined
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Received is a decoded frame stamped with its arrival order.
type Received struct {
	Frame *protocol.Frame
	Seq   uint64
}

// Client manages a WebSocket connection to the scene server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state          ClientState
	lastError      error
	serverName     string
	tickRate       int
	interpWindowMs float64
	conn           *websocket.Conn
	seq            uint64
	dropped        int

	frames chan Received
}

func NewClient() *Client {
	size := config.Sync.FrameQueueSize
	if size < 1 {
		size = 1
	}
	return &Client{
		state:          StateDisconnected,
		interpWindowMs: config.Sync.InterpWindowMs,
		frames:         make(chan Received, size),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, viewerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(protocol.JoinRequest{
			Version:     version,
			WireVersion: protocol.WireVersion,
			Name:        viewerName,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg protocol.JoinAccepted) {
		c.onAccepted(msg)
	})

	router.On(func(_ *router.NetworkClient, msg protocol.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg protocol.FrameMessage) {
		c.onFrame(msg)
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) onAccepted(msg protocol.JoinAccepted) {
	log.Printf("[client] join accepted: server=%s tickRate=%d window=%.0fms",
		msg.ServerName, msg.TickRate, msg.InterpWindowMs)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverName = msg.ServerName
	c.tickRate = msg.TickRate
	if msg.InterpWindowMs > 0 {
		c.interpWindowMs = msg.InterpWindowMs
	}
	c.state = StateJoined
}

// onFrame decodes and queues a frame. When the queue is full the oldest
// frame is dropped, unless the new frame is a baseline, which supersedes
// everything queued before it.
func (c *Client) onFrame(msg protocol.FrameMessage) {
	f, err := protocol.Decode(msg)
	if err != nil {
		log.Printf("Warning: dropping undecodable frame: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if f.Baseline {
		c.dropped += len(drainChan(c.frames))
	}
	for {
		select {
		case c.frames <- Received{Frame: f, Seq: c.seq}:
			return
		default:
		}
		select {
		case <-c.frames:
			c.dropped++
			log.Printf("Warning: frame queue full, dropped oldest frame")
		default:
		}
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// InterpWindowMs is the window announced by the server, or the local default.
func (c *Client) InterpWindowMs() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interpWindowMs
}

// Dropped returns how many frames were discarded by queue overflow or baselines.
func (c *Client) Dropped() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

// DrainFrames returns all pending frames in arrival order, non-blocking.
func (c *Client) DrainFrames() []Received {
	return drainChan(c.frames)
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
