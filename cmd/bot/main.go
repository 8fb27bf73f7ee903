// Package main starts the contract bot and handles termination.
//
// The process owns contract recruitment lifecycle: announcement posting,
// sign-up tracking, reminder timers, and archive retention sweeps.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	botcmd "github.com/Sasabodun/kontraktbot/internal/cmd/bot"
)

func main() {
	cfg, err := botcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[BOT] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := botcmd.Run(ctx, cfg, nil); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
