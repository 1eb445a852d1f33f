package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Wherlan/Emotisense/pkg/api"
	"github.com/Wherlan/Emotisense/pkg/config"
	"github.com/Wherlan/Emotisense/pkg/extract"
	"github.com/Wherlan/Emotisense/pkg/pipeline"
	"github.com/Wherlan/Emotisense/pkg/storage"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	store, err := storage.NewBadgerStore(cfg.StoragePath)
	if err != nil {
		log.WithError(err).Fatal("failed to open session store")
	}
	defer store.Close()

	source := extract.NewHTTPSignalSource(cfg.Services.FaceDetectorURL, cfg.Services.AudioMeasurerURL)
	extractor := extract.NewFFmpegExtractor(source, cfg.Upload.MaxDurationSeconds, log)

	runner := pipeline.NewRunner(cfg.Pipeline, store, extractor, log)

	handlers := api.NewHandlers(runner, store, cfg.Upload, log)

	router := mux.NewRouter()
	router.HandleFunc("/", handlers.RootHandler).Methods("GET")
	router.HandleFunc("/api/upload", handlers.UploadHandler).Methods("POST")
	router.HandleFunc("/api/status/{id}", handlers.StatusHandler).Methods("GET")
	router.HandleFunc("/api/results/{id}", handlers.ResultsHandler).Methods("GET")
	router.HandleFunc("/api/sessions", handlers.SessionsHandler).Methods("GET")
	router.HandleFunc("/api/session/{id}", handlers.DeleteSessionHandler).Methods("DELETE")
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")
	router.HandleFunc("/ws/progress/{id}", handlers.ProgressHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", cfg.Server.Address).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	// Let in-flight analyses finish writing their terminal state.
	runner.Wait()

	log.Info("server exited")
}
