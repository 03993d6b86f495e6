package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/initializer"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON or YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR :", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initializer.Start(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR :", err)
		stop()
		os.Exit(1)
	}
}
