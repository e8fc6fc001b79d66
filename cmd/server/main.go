package main

import (
	"flag"
	"log"
	"os"

	approuters "github.com/tdiessongo25/peakcrews-chat/internal/app_routers"
	"github.com/tdiessongo25/peakcrews-chat/internal/configuration"
)

var configPath = flag.String("config", "config.json", "service configuration file")

func main() {
	flag.Parse()
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		*configPath = envPath
	}

	cfg := configuration.MustReadConfig(*configPath)

	container, err := configuration.BuildContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	approuters.StartServer(container)
}
