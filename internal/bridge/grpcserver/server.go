// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcserver serves the workbench over gRPC.
//
// Each caller picks a session with the sqlbench-session metadata header. A
// session owns an independent connection, and calls within one session are
// serialized so only one batch per session is in flight. Different sessions
// run in parallel.
package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync"

	"sqlbench/cli/internal/bridge/model"
	"sqlbench/cli/internal/logging"
	"sqlbench/cli/internal/session"
	"sqlbench/cli/internal/sqlexec"
	"sqlbench/cli/internal/statement"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements WorkbenchServer.
type Server struct {
	dial     session.Dialer
	splitter statement.Splitter
	logger   *pterm.Logger

	mu       sync.Mutex
	sessions map[string]*workbench
}

// workbench is one named session.
type workbench struct {
	mu   sync.Mutex
	exec *sqlexec.Executor
}

// New creates a server. dial opens connections for Connect calls and
// splitter is the default statement splitter.
func New(dial session.Dialer, splitter statement.Splitter, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if splitter == nil {
		splitter = statement.Split
	}
	return &Server{
		dial:     dial,
		splitter: splitter,
		logger:   logger,
		sessions: make(map[string]*workbench),
	}
}

// Serve registers the service on a new grpc.Server and serves lis until ctx
// is done. Open sessions are disconnected on return.
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	RegisterWorkbenchServer(gs, s)

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info("serving workbench", s.logger.Args("addr", lis.Addr().String()))
	err := gs.Serve(lis)
	close(stopped)
	s.Close(context.WithoutCancel(ctx))
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Close disconnects every session.
func (s *Server) Close(ctx context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*workbench)
	s.mu.Unlock()

	for name, wb := range sessions {
		wb.mu.Lock()
		if err := wb.exec.Session().Disconnect(ctx); err != nil {
			s.logger.Warn("disconnect failed", s.logger.Args("session", name, "error", err.Error()))
		}
		wb.mu.Unlock()
	}
}

// sessionName reads the session header of an incoming call.
func sessionName(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(model.SessionHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return model.DefaultSession
}

// lookup returns the named session, creating it when asked to.
func (s *Server) lookup(ctx context.Context, create bool) (string, *workbench) {
	name := sessionName(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	wb, ok := s.sessions[name]
	if !ok && create {
		mgr := session.NewManager(s.dial, s.logger)
		wb = &workbench{exec: sqlexec.New(mgr, sqlexec.WithSplitter(s.splitter), sqlexec.WithLogger(s.logger))}
		s.sessions[name] = wb
	}
	return name, wb
}

func (s *Server) Connect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	info, err := model.DecodeCredentials(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	name, wb := s.lookup(ctx, true)
	wb.mu.Lock()
	defer wb.mu.Unlock()

	s.logger.Debug("connect", s.logger.Args("session", name, "address", info.Address()))
	if _, err := wb.exec.Session().Connect(ctx, info); err != nil {
		return nil, status.Error(codes.Unavailable, logging.Mask(driverMessage(err)))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		model.FieldConnected: structpb.NewBoolValue(true),
		model.FieldAddress:   structpb.NewStringValue(info.Address()),
	}}, nil
}

func (s *Server) Disconnect(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	name, wb := s.lookup(ctx, false)
	if wb == nil {
		return &structpb.Struct{}, nil
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	if err := wb.exec.Session().Disconnect(ctx); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	s.mu.Lock()
	if s.sessions[name] == wb {
		delete(s.sessions, name)
	}
	s.mu.Unlock()
	return &structpb.Struct{}, nil
}

func (s *Server) Execute(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	text := req.GetFields()[model.FieldText].GetStringValue()

	split := s.splitter
	if req.GetFields()[model.FieldLexical].GetBoolValue() {
		split = statement.SplitLexical
	}

	_, wb := s.lookup(ctx, true)
	wb.mu.Lock()
	defer wb.mu.Unlock()

	for r := range wb.exec.ExecuteAll(ctx, split(text)) {
		msg, err := model.EncodeResult(r)
		if err != nil {
			s.logger.Warn("result not encodable", s.logger.Args("statement", r.Statement, "error", err))
			if msg, err = model.EncodeResult(sqlexec.Unencodable(r, err)); err != nil {
				return status.Error(codes.Internal, err.Error())
			}
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) ExecuteLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := req.GetFields()[model.FieldText].GetStringValue()
	offset, err := model.Offset(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	_, wb := s.lookup(ctx, true)
	wb.mu.Lock()
	defer wb.mu.Unlock()

	// The caller has already confirmed the line.
	res, err := wb.exec.ExecuteCurrentLine(ctx, text, offset, nil)
	var warn *sqlexec.Warning
	if errors.As(err, &warn) {
		return model.Warning(warn.Message), nil
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	msg, err := model.EncodeResult(res)
	if err != nil {
		s.logger.Warn("result not encodable", s.logger.Args("statement", res.Statement, "error", err))
		if msg, err = model.EncodeResult(sqlexec.Unencodable(res, err)); err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	}
	return msg, nil
}

// driverMessage strips the session wrapper from a connection error.
func driverMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
