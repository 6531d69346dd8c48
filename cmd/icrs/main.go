package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Phantom-VK/icrs/internal/api"
	"github.com/Phantom-VK/icrs/internal/config"
	"github.com/Phantom-VK/icrs/internal/logging"
	"github.com/Phantom-VK/icrs/internal/session"
	"github.com/Phantom-VK/icrs/internal/tui"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	serverFlag := flag.String("server", "", "grievance server base URL")
	dbPathFlag := flag.String("db", "", "session db path")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}
	if *dbPathFlag != "" {
		cfg.SessionDBPath = *dbPathFlag
	}

	if err := config.EnsureDir(cfg.LogPath); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	sessions, closeSessions, err := openSessions(cfg.SessionDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer closeSessions()

	client := api.New(cfg.ServerURL, sessions,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)

	deps := tui.Deps{
		Auth:       api.NewAuthService(client),
		Grievances: api.NewGrievanceService(client),
		Sessions:   sessions,
		Log:        logger,
	}

	if err := tui.Run(deps); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openSessions(dbPath string) (*session.SQLite, func(), error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, nil, err
	}

	sqlDB, err := session.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	return session.NewSQLite(sqlDB), func() { _ = sqlDB.Close() }, nil
}
