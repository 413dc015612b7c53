// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"

	"github.com/rkhiriev/lock-keeper/internal/channel"
	"github.com/rkhiriev/lock-keeper/internal/config"
	"github.com/rkhiriev/lock-keeper/internal/dispatch"
	"github.com/rkhiriev/lock-keeper/internal/lockkeeperpb"
	"github.com/rkhiriev/lock-keeper/internal/logger"
)

// metadataHeader is the stream header spec §6 calls `x-metadata`. The
// "-bin" suffix is gRPC's convention for a binary (non-UTF8) metadata
// value; the client and server both base64-encode/decode it transparently.
const metadataHeader = "x-metadata-bin"

// serviceName and streamName identify the single bidirectional-streaming
// RPC every Lock Keeper operation multiplexes over (spec §6). No .proto
// file or generated stub ships with this module (see internal/lockkeeperpb's
// doc comment), so the service is registered by hand against a raw byte
// codec instead of codegen'd message types.
const (
	serviceName = "lockkeeper.v1.LockKeeper"
	streamName  = "Call"
)

// rawFrame is the wire type the raw codec passes through unmodified; every
// stream frame is one opaque byte payload (spec §6).
type rawFrame []byte

// rawCodec bypasses protobuf message marshaling entirely: Lock Keeper's
// frames are already self-describing byte payloads produced by
// internal/lockkeeperpb, so the codec's job is just to move bytes.
type rawCodec struct{}

func (rawCodec) Name() string { return "lockkeeper-raw" }

func (rawCodec) Marshal(v any) ([]byte, error) {
	f, ok := v.(rawFrame)
	if !ok {
		return nil, fmt.Errorf("lockkeeper-raw codec: unsupported type %T", v)
	}
	return f, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*rawFrame)
	if !ok {
		return fmt.Errorf("lockkeeper-raw codec: unsupported type %T", v)
	}
	*f = append((*f)[:0], data...)
	return nil
}

func init() {
	encoding.RegisterCodec(rawCodec{})
}

type grpcServer struct {
	dispatcher *dispatch.Dispatcher
	log        *logger.Logger

	server   *grpc.Server
	listener net.Listener
}

func newGRPCServer(dispatcher *dispatch.Dispatcher, cfg config.Server, log *logger.Logger) (*grpcServer, error) {
	listener, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("gRPC listen on %s: %w", cfg.GRPCAddress, err)
	}

	g := &grpcServer{dispatcher: dispatcher, log: log, listener: listener}

	g.server = grpc.NewServer(grpc.ForceServerCodec(rawCodec{}))
	g.server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    streamName,
			Handler:       g.handleCall,
			ServerStreams: true,
			ClientStreams: true,
		}},
	}, g)

	return g, nil
}

// handleCall is the single streaming entry point every client action flows
// through (spec §6): it reads the `x-metadata` header once per stream, then
// hands the raw frame stream to the dispatcher.
func (g *grpcServer) handleCall(_ any, stream grpc.ServerStream) error {
	md, ok := metadata.FromIncomingContext(stream.Context())
	if !ok || len(md.Get(metadataHeader)) == 0 {
		return lockkeeperpb.ToStatus(fmt.Errorf("missing %s header", metadataHeader)).Err()
	}
	rawMetadata := []byte(md.Get(metadataHeader)[0])

	raw := &grpcRawStream{stream: stream}
	if err := g.dispatcher.Handle(stream.Context(), raw, rawMetadata); err != nil {
		return lockkeeperpb.ToStatus(err).Err()
	}
	return nil
}

// grpcRawStream adapts a grpc.ServerStream to [channel.RawStream].
type grpcRawStream struct {
	stream grpc.ServerStream
}

func (s *grpcRawStream) Send(frame []byte) error {
	return s.stream.SendMsg(rawFrame(frame))
}

func (s *grpcRawStream) Recv() ([]byte, error) {
	var f rawFrame
	if err := s.stream.RecvMsg(&f); err != nil {
		return nil, err
	}
	return []byte(f), nil
}

var _ channel.RawStream = (*grpcRawStream)(nil)

func (g *grpcServer) RunServer() {
	if err := g.server.Serve(g.listener); err != nil {
		g.log.Error().Err(err).Msg("gRPC server Serve")
	}
}

func (g *grpcServer) Shutdown() {
	g.server.GracefulStop()
}
