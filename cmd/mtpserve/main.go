// Command mtpserve runs the placement HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mtp-placer/internal/config"
	"mtp-placer/internal/server"
	"mtp-placer/internal/store"
	"mtp-placer/internal/symbol"
	"mtp-placer/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("mtpserve"))
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cfg := config.Load()

	lib, err := symbol.Open(cfg.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to load symbol library: %v", err)
	}
	log.Printf("Loaded %d symbols", len(lib.Symbols))

	var st server.LayoutStore
	if cfg.DBPath != "" {
		s, err := store.Open(context.Background(), cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open layout store: %v", err)
		}
		defer s.Close()
		st = s
		log.Printf("Layout store: %s", cfg.DBPath)
	}

	srv, err := server.New(cfg, lib, st)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	app := srv.App()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting %s on %s (env: %s)", version.String("mtpserve"), addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
