// Package main starts the users API process.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	usersapicmd "github.com/louisbranch/restpanel/internal/cmd/usersapi"
	entrypoint "github.com/louisbranch/restpanel/internal/platform/cmd"
	"github.com/louisbranch/restpanel/internal/platform/config"
)

func main() {
	cfg, err := usersapicmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceUsersAPI))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := usersapicmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
