package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	jesterwebui "github.com/MegaGrindStone/jester-web-ui"
	"github.com/MegaGrindStone/jester-web-ui/internal/handlers"
	"github.com/MegaGrindStone/jester-web-ui/internal/services"
	"gopkg.in/yaml.v3"
)

func main() {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}
	cfgPath := filepath.Join(cfgDir, "jesterwebui")
	if err := os.MkdirAll(cfgPath, 0755); err != nil {
		log.Fatal(fmt.Errorf("error creating config directory: %w", err))
	}

	cfgFilePath := filepath.Join(cfgPath, "config.yaml")
	if _, err := os.Stat(cfgFilePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(cfgFilePath, []byte(defaultConfig), 0600); err != nil {
			log.Fatal(fmt.Errorf("error writing default config file: %w", err))
		}
		log.Printf("Wrote default config to %s", cfgFilePath)
	}

	cfgFile, err := os.Open(cfgFilePath)
	if err != nil {
		log.Fatal(fmt.Errorf("error opening config file: %w", err))
	}
	defer cfgFile.Close()

	cfg := config{}
	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		log.Fatal(fmt.Errorf("error decoding config file: %w", err))
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.logLevel(),
	}))

	llm, err := cfg.LLM.llm(logger)
	if err != nil {
		log.Fatal(err)
	}

	var store handlers.Store
	switch cfg.Store {
	case "", "memory":
		store = services.NewMemory()
	case "bolt":
		boltDB, err := services.NewBoltDB(filepath.Join(cfgPath, "store.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer boltDB.Close()
		store = boltDB
	default:
		log.Fatal(fmt.Errorf("unknown store: %s", cfg.Store))
	}

	m, err := handlers.NewMain(llm, store, logger)
	if err != nil {
		log.Fatal(err)
	}

	// Serve static files
	staticFS, err := fs.Sub(jesterwebui.StaticFS, "static")
	if err != nil {
		log.Fatal(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	// Create custom mux
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chats", m.HandleChats)
	mux.HandleFunc("/chats/clear", m.HandleClear)
	mux.HandleFunc("/suggest", m.HandleSuggest)
	mux.HandleFunc("/settings", m.HandleSettings)
	mux.HandleFunc("/sse", m.HandleSSE)

	// Create custom server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown sse server: %v", err)
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Println("Server starting on :" + cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Start shutdown, signal: %v", sig)

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
			if err := srv.Close(); err != nil {
				log.Printf("Forcing server close: %v", err)
			}
		}
	}
}
