// Package main is the entry point for the pixi server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pandeptwidyaop/pixi-server/internal/config"
	"github.com/pandeptwidyaop/pixi-server/internal/database"
	"github.com/pandeptwidyaop/pixi-server/internal/pixi"
	"github.com/pandeptwidyaop/pixi-server/internal/router"
	"github.com/pandeptwidyaop/pixi-server/internal/services"
	"github.com/pandeptwidyaop/pixi-server/internal/version"
)

func main() {
	// Check for subcommands first
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			printVersion()
			os.Exit(0)
		case "hash-token":
			if len(os.Args) != 3 {
				fmt.Fprintln(os.Stderr, "Usage: pixi-server hash-token <token>")
				os.Exit(2)
			}
			hash, err := services.HashToken(os.Args[2])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to hash token: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(hash)
			os.Exit(0)
		}
	}

	configPath := flag.String("config", "config.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Warning: Could not load config from %s: %v", *configPath, err)
		log.Println("Using default configuration...")
		cfg = config.Default()
	}

	authService := services.NewAuthService(cfg)
	generated, err := authService.EnsureToken()
	if err != nil {
		log.Fatalf("Failed to generate access token: %v", err)
	}

	var db *database.DB
	if cfg.History.IsEnabled() {
		db, err = database.New(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()

		if err := db.Migrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("Install history disabled")
	}

	if err := cfg.Execution.CheckTimeout(); err != nil {
		log.Printf("Warning: %v; pixi runs will not time out", err)
	}
	timeout := cfg.Execution.GetTimeout()
	runner := pixi.NewExecRunner(cfg.Pixi.Binary, cfg.Pixi.ProjectDir, timeout)
	packageService := services.NewPackageService(db, runner, cfg.Execution.Serialize)

	if timeout > 0 {
		log.Printf("pixi runs time out after %s", timeout)
	}
	if cfg.Execution.Serialize {
		log.Println("pixi runs are serialized")
	}

	manifestPath := cfg.Pixi.Manifest
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(cfg.Pixi.ProjectDir, manifestPath)
	}

	r := router.New(cfg, authService, packageService, manifestPath)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	apiURL := "http://" + addr + router.JoinPath(cfg.Server.BaseURL, router.Namespace) + "/"
	log.Printf("pixi-server %s starting on %s (project %s)", version.Version, addr, cfg.Pixi.ProjectDir)
	if generated {
		log.Printf("Access at: %s?token=%s", apiURL, cfg.Auth.Token)
	} else {
		log.Printf("Access at: %s", apiURL)
	}

	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	fmt.Println(version.String())
}
