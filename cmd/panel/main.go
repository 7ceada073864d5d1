// Package main starts the REST panel process.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	panelcmd "github.com/louisbranch/restpanel/internal/cmd/panel"
	entrypoint "github.com/louisbranch/restpanel/internal/platform/cmd"
	"github.com/louisbranch/restpanel/internal/platform/config"
)

func main() {
	cfg, err := panelcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServicePanel))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := panelcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
