package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xavierbot/groundstation/teleop"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "", "Path to configuration file (defaults apply if omitted)")
	httpPort   = flag.Int("http-port", 0, "HTTP server port (overrides config)")
	broker     = flag.String("broker", "", "MQTT broker URL (overrides config and MQTT_BROKER)")
	snapshot   = flag.String("snapshot", "", "Render a map snapshot to this file and exit (.svg or .png)")
)

func main() {
	flag.Parse()
	fmt.Printf("groundstation version: %s\n", Version)

	config := loadConfigOrDefaults()
	if *httpPort != 0 {
		config.HTTPPort = *httpPort
	}
	if *broker != "" {
		config.MQTT.Broker = *broker
	}

	if *snapshot != "" {
		runSnapshot(config, *snapshot)
		return
	}

	runService(config)
}

func loadConfigOrDefaults() *teleop.Config {
	if *configFile == "" {
		log.Println("No config file given, using defaults")
		return teleop.DefaultConfig()
	}
	config, err := teleop.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded config from %s", *configFile)
	return config
}

// runSnapshot connects, waits for a pose graph, and writes one vector render.
// Intended for cron jobs and debugging without the dashboard.
func runSnapshot(config *teleop.Config, outputPath string) {
	app := NewApp(config)
	if err := app.ConnectEvents(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer app.Events.Disconnect()

	fmt.Println("Waiting for pose graph data (Ctrl+C to write what has arrived)...")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	outFile, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Error creating output file %s: %v", outputPath, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			log.Printf("Warning: error closing output file %s: %v", outputPath, err)
		}
	}()

	renderer := app.snapshotRenderer()
	switch filepath.Ext(outputPath) {
	case ".svg":
		err = renderer.RenderToSVG(outFile)
	case ".png":
		err = renderer.RenderToPNG(outFile)
	default:
		log.Fatalf("Unsupported snapshot format %q (use .svg or .png)", filepath.Ext(outputPath))
	}
	if err != nil {
		log.Fatalf("Error rendering snapshot: %v", err)
	}
	fmt.Printf("Created snapshot: %s\n", outputPath)
}

// runService starts the full ground station: MQTT ingest, render loop, and
// the HTTP dashboard.
func runService(config *teleop.Config) {
	fmt.Println("Starting groundstation service...")

	app := NewApp(config)
	if err := app.ConnectEvents(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	fmt.Println("\nService Running")
	fmt.Println("===============")
	fmt.Printf("\nMQTT topic prefix: %s\n", config.MQTT.TopicPrefix)
	fmt.Printf("\nHTTP endpoints (port %d):\n", config.HTTPPort)
	fmt.Println("  GET  /            - Dashboard")
	fmt.Println("  GET  /health      - Health check")
	fmt.Println("  GET  /frame.png   - Latest rendered frame")
	fmt.Println("  GET  /map.svg     - Vector map snapshot")
	fmt.Println("  GET  /map.png     - Raster map snapshot")
	fmt.Println("  GET  /state.json  - Raw pose graph state")
	fmt.Println("  POST /key         - Teleoperation key events")
	fmt.Println("  POST /viewport    - Viewport resize")
	fmt.Println("\nPress Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down service...")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Service error: %v", err)
	}
	fmt.Println("Service stopped")
}
