package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// optional; GEODATA_* settings may come from a .env file
	_ = godotenv.Load()

	// SIGINT/SIGTERM cancel in-flight downloads so the staging dir is still removed
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, args, os.Stdout, os.Stderr)
}
