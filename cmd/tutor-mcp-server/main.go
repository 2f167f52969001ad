package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lovable-tutor/internal/app"
	"lovable-tutor/internal/config"
	"lovable-tutor/internal/mcptools"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	log.Printf("🚀 Starting Tutor MCP Server")

	cfg := config.New()
	ctx := context.Background()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build app: %v", err)
	}
	defer a.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lovable-tutor-mcp",
		Version: "1.0.0",
	}, nil)
	mcptools.Register(server, a.Progress, a.Session)

	log.Printf("📋 Registered tools: practice_send, practice_end, practice_transcript, dashboard, vocabulary, learn_word")

	transport := mcp.NewStdioTransport()
	if err := server.Run(ctx, transport); err != nil {
		log.Printf("❌ MCP server error: %v", err)
	}
}
