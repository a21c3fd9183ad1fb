package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/prajanews/newsdesk/internal/app"
	"github.com/prajanews/newsdesk/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the init or main server.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("newsdesk", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env "+config.EnvConfigPath+")")
	listen := fs.String("listen", "", "listen address for the init server (or env "+config.EnvListenAddr+")")
	migrateOnly := fs.Bool("migrate", false, "run database migrations and exit")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}

	if *migrateOnly {
		return app.Migrate(ctx, appCfg)
	}

	configPath := config.ResolveConfigPath(appCfg.ConfigPath)
	if !app.ConfigExists(configPath) && strings.TrimSpace(os.Getenv(config.EnvDBConnection)) == "" {
		log.Info("config.yaml not found, starting init server...")
		errInit := app.RunInitServer(ctx, appCfg, initListenAddr(*listen))
		if errors.Is(errInit, app.ErrInitCompleted) {
			log.Info("initialization completed, starting main server...")
			return app.RunServer(ctx, appCfg)
		}
		return errInit
	}

	return app.RunServer(ctx, appCfg)
}

// initListenAddr resolves the init server listen address from the flag or
// environment, keeping the main server default otherwise.
func initListenAddr(flagValue string) string {
	if addr := strings.TrimSpace(flagValue); addr != "" {
		return addr
	}
	if addr := strings.TrimSpace(os.Getenv(config.EnvListenAddr)); addr != "" {
		return addr
	}
	return ":8085"
}
