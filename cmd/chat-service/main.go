package main

import (
	"flag"
	"os"

	"github.com/kidspark/kidspark-engine/chatservice"
	"github.com/kidspark/kidspark-engine/internal/logger"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if *buildTarget != "" {
		if err := os.Setenv("KIDSPARK_BUILD_TARGET", *buildTarget); err != nil {
			log := logger.New("chat-service")
			log.Fatal().Err(err).Msg("Failed to apply build-target override")
		}
	}

	if err := chatservice.Run(); err != nil {
		log := logger.New("chat-service")
		log.Fatal().Err(err).Msg("Service exited with error")
	}
}
