package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"linkvault/pkg/cli"
	"linkvault/pkg/config"
)

func main() {
	var (
		listMode = flag.Bool("list", false, "List your vaults")
		register = flag.String("register", "", "Register a new account with the given email")
		name     = flag.String("name", "", "Display name to use with --register")

		// Config commands
		configShow = flag.Bool("config-show", false, "Show current configuration")
		configSet  = flag.String("config-set", "", "Set a config value (format: section.key=value)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	app := cli.NewApp(cfg)

	// Handle config commands first (don't need the API)
	if *configShow {
		app.ShowConfig()
		return
	}
	if *configSet != "" {
		if err := app.SetConfig(*configSet); err != nil {
			log.Fatalf("failed to set config: %v", err)
		}
		fmt.Println("Configuration updated successfully")
		return
	}

	ctx := context.Background()

	if *register != "" {
		if err := app.RegisterUser(ctx, *register, *name); err != nil {
			log.Fatalf("failed to register: %v", err)
		}
		return
	}

	if *listMode {
		app.ListContainers(ctx)
		return
	}

	// Interactive TUI mode
	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
