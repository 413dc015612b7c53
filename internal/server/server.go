// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rkhiriev/lock-keeper/internal/config"
	"github.com/rkhiriev/lock-keeper/internal/dispatch"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

type server struct {
	gRPCServer *grpcServer
	log        *logger.Logger
}

// NewServer builds the gRPC transport around dispatcher (spec §6: one
// bidirectional-streaming RPC carrying every client action).
func NewServer(dispatcher *dispatch.Dispatcher, cfg config.Server, log *logger.Logger) (Server, error) {
	log.Info().Msg("creating new server...")

	gRPC, err := newGRPCServer(dispatcher, cfg, log)
	if err != nil {
		return nil, err
	}

	return &server{gRPCServer: gRPC, log: log}, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.log.Error().Err(err).Msg("error running server")
	}
}

func (s *server) Shutdown() {
	s.gRPCServer.Shutdown()
}

func (s *server) run() error {
	if s.gRPCServer == nil {
		return errNoServersAreCreated
	}

	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	go func() {
		<-ctx.Done()
		s.gRPCServer.Shutdown()
		close(idleConnectionsClosed)
	}()

	s.log.Info().Str("address", "gRPC").Msg("launching server")
	go s.gRPCServer.RunServer()

	<-idleConnectionsClosed
	s.log.Info().Msg("server shutdown gracefully")

	return nil
}
