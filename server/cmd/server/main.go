package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/persistence"
	"github.com/FourSeventy/sylver-engine-sub000/server/core"
)

func main() {
	port := flag.Uint("port", 7373, "Server port")
	tickRate := flag.Int("tickrate", config.Sync.TickRate, "Server tick rate (updates per second)")
	name := flag.String("name", "Sylver Scene Server", "Server display name")
	version := flag.String("version", "", "Required viewer version (empty = accept any)")
	assetsDir := flag.String("assets", "assets", "Assets directory containing levels/")
	level := flag.String("level", "", "Level to load from assets/levels (empty = demo scene)")
	save := flag.Bool("save", false, "Restore the scene from the save slot and save it on shutdown")
	logFrames := flag.Bool("logframes", false, "Log every non-empty frame")
	flag.Parse()

	config.Sync.TickRate = *tickRate
	config.Debug.LogFrames = *logFrames

	server := core.NewServer(*tickRate, *name, *version)

	switch {
	case *level != "":
		if err := core.LoadLevel(server.Scene(), *assetsDir, *level); err != nil {
			if names, lerr := core.ListLevels(*assetsDir); lerr == nil {
				log.Printf("Available levels: %v", names)
			}
			log.Fatalf("Failed to load level: %v", err)
		}
	default:
		script, err := core.PopulateDemo(server.Scene())
		if err != nil {
			log.Fatalf("Failed to build demo scene: %v", err)
		}
		server.AddScript(script)
	}

	if *save {
		store, err := persistence.Open(config.Persistence.AppName)
		if err != nil {
			log.Fatalf("Failed to open save data: %v", err)
		}
		if err := server.UsePersistence(store, config.Persistence.Slot); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting scene server %q on port %d (tick rate: %d/s, version: %s)",
		*name, *port, *tickRate, *version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
