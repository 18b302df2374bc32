package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/server"
)

func main() {
	log, err := logger.New(logger.Config{})
	if err != nil {
		panic(err)
	}

	log.Info("Starting policysplit-mcp server")

	srv := server.CreateServer(log)
	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
