package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/BurningYang107/sensor-data-viewer/internal/config"
	"github.com/BurningYang107/sensor-data-viewer/internal/session"
	"github.com/BurningYang107/sensor-data-viewer/ui"
)

const janitorInterval = 5 * time.Minute

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)

	store := session.NewStore(appConfig.Session.TTL, appConfig.Session.MaxConcurrentLoads)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, janitorInterval)

	// Preload a dataset when DATA_FILE is set, handy for development against
	// a fixed export. The logged URL binds the browser to that session.
	if appConfig.Data.PreloadFile != "" {
		sess, err := store.CreateFromFile(ctx, appConfig.Data.PreloadFile)
		if err != nil {
			log.Fatalf("Failed to preload data file %s: %v", appConfig.Data.PreloadFile, err)
		}
		log.Printf("Preloaded %s: http://localhost:%s/?session_id=%s",
			appConfig.Data.PreloadFile, appConfig.Server.Port, sess.ID)
	}

	if appConfig.Profiling.Enabled {
		opsRouter := ui.NewOpsRouter(store)
		go func() {
			addr := ":" + appConfig.Profiling.Port
			log.Printf("Ops server (healthz, pprof) on http://localhost%s", addr)
			if err := http.ListenAndServe(addr, opsRouter); err != nil {
				log.Printf("Ops server stopped: %v", err)
			}
		}()
	}

	server := ui.NewServer(store, appConfig)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
