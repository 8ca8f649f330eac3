package main

import (
	"fmt"
	"log"
	"os"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/web"
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	fmt.Println("=== Customer Reconciliation Review Server ===")

	// Get configuration from a JSON file when one is given, otherwise
	// from the environment
	var webConfig *web.Config
	if len(os.Args) > 1 {
		var err error
		webConfig, err = web.LoadConfig(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load config file %s: %v", os.Args[1], err)
		}
	} else {
		webConfig = web.LoadConfigFromEnv()
	}

	fmt.Printf("Server: http://%s:%d\n", webConfig.Server.Host, webConfig.Server.Port)
	fmt.Printf("Run store: %s\n", webConfig.Store.Path)

	server, err := web.NewServer(webConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	fmt.Printf("\nStarting web server on http://%s:%d\n", webConfig.Server.Host, webConfig.Server.Port)
	fmt.Println("\nFeatures enabled:")
	fmt.Printf("  • Static assets: %v\n", webConfig.Server.StaticDir != "")
	fmt.Printf("  • API authentication: %v\n", webConfig.Auth.Enabled)
	fmt.Println()

	// Start server
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
