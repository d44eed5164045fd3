package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"manifesthub/internal/routers"
)

func main() {
	configRouter := routers.AppConfigRouter()
	configServer := &http.Server{
		Addr:    ":8004",
		Handler: configRouter,
	}

	manifestRouter := routers.ManifestRouter()
	manifestServer := &http.Server{
		Addr:    ":8002",
		Handler: manifestRouter,
	}
	scheduleRouter := routers.ScheduleRouter()
	scheduleServer := &http.Server{
		Addr:    ":8001",
		Handler: scheduleRouter,
	}

	go func() {
		log.Info("Starting HTTP Server on port 8004 for app config")
		if err := configServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("Server Error: ", err)
		}
	}()
	go func() {
		manifestServer.SetKeepAlivesEnabled(true)
		log.Info("Starting HTTP Server on port 8002 for the manifest dashboard")
		if err := manifestServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("Server Error: ", err)
		}
	}()
	go func() {
		scheduleServer.SetKeepAlivesEnabled(true)
		log.Info("Starting HTTP Server on port 8001 for the port schedule board")
		if err := scheduleServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("Server Error: ", err)
		}
	}()

	//Listen for SIGINT/ SIGTERM signal to trigger shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Wait for all active requests to complete
	_ = configServer.Shutdown(ctx)
	_ = manifestServer.Shutdown(ctx)
	_ = scheduleServer.Shutdown(ctx)

	log.Info("Server gracefully stopped")
}
