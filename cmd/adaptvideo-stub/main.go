// Command adaptvideo-stub serves a stand-in for the conversion service
// with synthetic frames, for trying the client without the real backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/menta2k/adaptvideo/internal/logging"
	"github.com/menta2k/adaptvideo/internal/stubserver"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "127.0.0.1:5001", "listen address")
	maxMB := flag.Int("max-size-mb", 500, "largest accepted upload in MB")
	level := flag.String("log-level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	logger, closer, err := logging.New(logging.Options{Level: *level})
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	gin.SetMode(gin.ReleaseMode)
	stub := stubserver.New(
		stubserver.WithMaxUploadSize(int64(*maxMB)*1024*1024),
		stubserver.WithLogger(logger))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           stub.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	fmt.Printf("stub conversion service on http://%s\n", *addr)
	fmt.Println("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
