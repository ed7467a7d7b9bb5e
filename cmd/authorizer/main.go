package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"retrogames/infrastructure/config"
	"retrogames/infrastructure/di"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeAuthorizer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize authorizer: %v", err)
	}
	defer container.Logger.Sync()

	lambda.Start(container.Handler.Handle)
}
