package core

import (
	"log"
	"sync/atomic"
	"time"
)

type GameLoop struct {
	server   *Server
	tickRate int
	running  atomic.Bool
	stopChan chan struct{}
	done     chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	g.running.Store(true)
	defer close(g.done)
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[server] loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.running.Store(false)
			log.Println("[server] loop stopped")
			return
		case <-ticker.C:
			g.server.Step(g.server.now())
		}
	}
}

// Stop ends the loop and waits for the tick in progress, if any, to finish.
func (g *GameLoop) Stop() {
	close(g.stopChan)
	if g.running.Load() {
		<-g.done
	}
}
