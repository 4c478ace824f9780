package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "inventory-costing/internal/adapters/web"
	"inventory-costing/internal/ai"
	"inventory-costing/internal/app"
	"inventory-costing/internal/costing"
	"inventory-costing/internal/ledger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	client, err := ledger.NewClientFromEnv(ctx)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	cfg, err := costing.ConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	costingService := costing.NewService(client, cfg)

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; AI endpoints disabled")
	}

	svc := app.NewAppService(costingService, agent)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
