package main

import (
	"os"

	"github.com/charmbracelet/log"

	"moku/internal/cli"
	"moku/internal/config"
	"moku/internal/storage"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	log.SetReportTimestamp(false)

	cfg, err := config.LoadOrCreate(config.ResolvePath())
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	dataPath := cfg.DataPath
	if dataPath == "" {
		dataPath = storage.ResolveDataPath()
	}
	store, err := storage.Open(dataPath)
	if err != nil {
		log.Error("failed to open task store", "err", err)
		os.Exit(1)
	}

	root := cli.NewRoot(cli.Options{Store: store, Config: cfg, Version: version})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
