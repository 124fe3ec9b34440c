package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/beyondthebrush/portal/auth"
	"github.com/beyondthebrush/portal/codes"
	"github.com/beyondthebrush/portal/internal/config"
	"github.com/beyondthebrush/portal/resource"
	"github.com/beyondthebrush/portal/server"
	"github.com/beyondthebrush/portal/server/portalsession"
	"github.com/beyondthebrush/portal/store/mongodb"
	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
	log.Info().Msg("portal stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())

	uri, err := c.GetMongoURI()
	if err != nil {
		// Startup condition, there is nothing to serve without a store.
		return fmt.Errorf("document store configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, uri)
	if err != nil {
		log.Error().Err(err).Msg("MongoDB connection failed, check your connection and Atlas settings")
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(c.GetMongoDatabase())
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	codeRepo := mongodb.NewCodeRepo(db)
	studentRepo := mongodb.NewStudentRepo(db)

	ledger, err := codes.NewLedger(codeRepo, studentRepo)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(ledger, studentRepo)
	if err != nil {
		return err
	}

	device := resource.FileDevice{Path: c.GetCameraDevice()}
	srv, err := server.New(c, authService, ledger, device, portalsession.NewInMemoryRepo())
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("portal listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
