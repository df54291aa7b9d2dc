// Command sercha-rag ingests local documents into versioned vector
// collections and serves similarity search over the active one.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/app"
)

func main() {
	// A missing .env is fine; SERCHA_RAG_* may come from the shell.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(app.Bootstrap())
	// cobra has already printed the error.
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
