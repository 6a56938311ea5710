package network

import (
	"log"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
)

// ApplyTo drains the queued frames into sc. Each frame's deltas blend over
// the interpolation window starting at now, the local time in milliseconds.
// It returns the number of frames applied.
func (c *Client) ApplyTo(sc *scene.Scene, now float64) int {
	frames := c.DrainFrames()
	window := c.InterpWindowMs()
	for _, r := range frames {
		if config.Debug.LogFrames {
			log.Printf("[client] frame %d (seq %d): %d spawns, %d despawns, %d deltas",
				r.Frame.Tick, r.Seq, len(r.Frame.Spawns), len(r.Frame.Despawns), len(r.Frame.Deltas))
		}
		if err := sc.ApplyFrame(r.Frame, now, now+window); err != nil {
			log.Printf("Warning: frame %d applied with errors: %v", r.Frame.Tick, err)
		}
	}
	return len(frames)
}
