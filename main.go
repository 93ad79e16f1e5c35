package main

import (
	"log"
	"os"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/server"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command := "server"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "server":
		srv, err := server.NewServer(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize server: %v", err)
		}
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}
