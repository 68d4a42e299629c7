package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xavierbot/groundstation/teleop"
)

// App encapsulates the application state and dependencies
type App struct {
	Config    *teleop.Config
	Store     *teleop.GraphStore
	Events    *teleop.EventClient
	Loop      *teleop.RenderLoop
	Commander *teleop.KeyCommander

	httpServer *http.Server
}

// NewApp wires the store, render loop, and key commander from config. The
// MQTT session is attached separately so snapshot mode can skip it.
func NewApp(config *teleop.Config) *App {
	store := teleop.NewGraphStore()
	renderer := teleop.NewFrameRenderer(config.Frame.Width, config.Frame.Height, config.Frame.Scale)

	app := &App{
		Config: config,
		Store:  store,
		Loop:   teleop.NewRenderLoop(store, renderer, config.Frame.Rate),
	}
	app.Commander = teleop.NewKeyCommander(
		config.Drive.LinearGain, config.Drive.AngularGain, app.publishDrive)
	return app
}

// ConnectEvents starts the MQTT session with the robot
func (a *App) ConnectEvents() error {
	events, err := teleop.NewEventClient(a.Config, a.Store)
	if err != nil {
		return fmt.Errorf("initializing MQTT: %w", err)
	}
	a.Events = events
	return nil
}

// publishDrive forwards a key-derived velocity command to the robot. Commands
// produced before the session is up are dropped; the robot's own watchdog
// stops the chassis when commands cease.
func (a *App) publishDrive(cmd teleop.Twist2d) {
	if a.Events == nil {
		return
	}
	if err := a.Events.PublishDrive(cmd); err != nil {
		log.Printf("Error publishing drive command: %v", err)
	}
}

// Run starts the render loop and HTTP server and blocks until ctx is
// canceled, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	go a.Loop.Run(ctx)

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.HTTPPort),
		Handler: newHTTPServer(a),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Starting server on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	a.Shutdown()
	return nil
}

// Shutdown stops the robot, closes the MQTT session, and drains the HTTP
// server.
func (a *App) Shutdown() {
	a.Commander.Release()

	if a.Events != nil {
		a.Events.Disconnect()
	}

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP server: %v", err)
		}
	}
}

// snapshotRenderer builds a vector renderer over the current graph state
func (a *App) snapshotRenderer() *teleop.VectorRenderer {
	pose, hasPose, nodes := a.Store.Snapshot()
	var livePose *teleop.Transform2d
	if hasPose {
		livePose = &pose
	}
	return teleop.NewVectorRenderer(nodes, livePose)
}
