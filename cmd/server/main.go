// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rkhiriev/lock-keeper/internal/config"
	"github.com/rkhiriev/lock-keeper/internal/dispatch"
	"github.com/rkhiriev/lock-keeper/internal/keyhierarchy"
	"github.com/rkhiriev/lock-keeper/internal/logger"
	"github.com/rkhiriev/lock-keeper/internal/opaque"
	"github.com/rkhiriev/lock-keeper/internal/operations"
	"github.com/rkhiriev/lock-keeper/internal/server"
	"github.com/rkhiriev/lock-keeper/internal/sessioncache"
	"github.com/rkhiriev/lock-keeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// sessionSweepInterval governs how often the session cache drops expired
// rows; it is independent of the expiration duration itself (spec §4.4).
const sessionSweepInterval = time.Minute

func main() {
	printBuildInfo()

	log := logger.NewLogger("lock-keeper-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Info().Msg("starting lock keeper server")
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error running migrations")
	}
	dataStore := store.NewPostgresStore(db, log)

	remoteStorageKey, err := loadRemoteStorageKey(cfg.App.RemoteStorageKeyHex)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading remote storage key")
	}

	setup, err := loadOrGenerateOpaqueSetup(cfg.App.OpaqueServerSetupPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading OPAQUE server setup")
	}

	sessions := sessioncache.New(cfg.App.SessionExpiration, sessionSweepInterval)

	deps := operations.Deps{
		Store:            dataStore,
		Sessions:         sessions,
		OpaqueSetup:      setup,
		RemoteStorageKey: remoteStorageKey,
		Log:              log,
	}
	dispatcher := dispatch.New(deps)

	srv, err := server.NewServer(dispatcher, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// loadRemoteStorageKey decodes the server's hex-encoded remote storage key
// (spec §4.2) from configuration.
func loadRemoteStorageKey(hexKey string) (keyhierarchy.RemoteStorageKey, error) {
	material, err := hex.DecodeString(hexKey)
	if err != nil {
		return keyhierarchy.RemoteStorageKey{}, fmt.Errorf("decoding remote storage key: %w", err)
	}
	return keyhierarchy.RemoteStorageKeyFromBytes(material)
}

// loadOrGenerateOpaqueSetup reads the server's persisted OPAQUE setup (spec
// §4.6) from path, generating and persisting a fresh one on first run.
func loadOrGenerateOpaqueSetup(path string) (opaque.ServerSetup, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		setup := opaque.GenerateServerSetup()
		if err := os.WriteFile(path, setup.Bytes(), 0o600); err != nil {
			return opaque.ServerSetup{}, fmt.Errorf("persisting OPAQUE server setup: %w", err)
		}
		return setup, nil
	}
	if err != nil {
		return opaque.ServerSetup{}, fmt.Errorf("reading OPAQUE server setup: %w", err)
	}

	return opaque.ServerSetupFromBytes(raw)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
