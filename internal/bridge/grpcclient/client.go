// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient talks to a workbench served by 'sqlbench serve'.
//
// The client keeps no connection state of its own: the server session named
// by the client holds the database connection, so separate CLI invocations
// that use the same session name share it.
package grpcclient

import (
	"context"
	"errors"
	"io"
	"iter"

	"sqlbench/cli/internal/bridge/model"
	"sqlbench/cli/internal/dsn"
	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/sqlexec"
	"sqlbench/cli/internal/statement"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a remote workbench session.
type Client struct {
	conn    *grpc.ClientConn
	session string
	lexical bool
}

// Dial creates a client for the server at addr. The server is expected on a
// local or otherwise trusted network, so the channel is not encrypted.
func Dial(addr, session string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	if session == "" {
		session = model.DefaultSession
	}
	return &Client{conn: conn, session: session}, nil
}

// SetLexical asks the server to split with the lexical splitter.
func (c *Client) SetLexical(on bool) {
	c.lexical = on
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, model.SessionHeader, c.session)
}

// Connect opens the session's connection on the server.
func (c *Client) Connect(ctx context.Context, info *dsn.DSNInfo) error {
	out := new(structpb.Struct)
	err := c.conn.Invoke(c.outgoing(ctx), model.MethodConnect, model.EncodeCredentials(info), out)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unavailable {
			return apperr.Wrap(apperr.ConnectionFailed, "failed to connect to database server at "+info.Address(), errors.New(st.Message()))
		}
		return err
	}
	return nil
}

// Disconnect closes the session's connection on the server.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.conn.Invoke(c.outgoing(ctx), model.MethodDisconnect, &structpb.Struct{}, new(structpb.Struct))
}

// Execute runs text on the server, yielding results as the server streams them.
func (c *Client) Execute(ctx context.Context, text string) iter.Seq2[sqlexec.Result, error] {
	return func(yield func(sqlexec.Result, error) bool) {
		ctx, cancel := context.WithCancel(c.outgoing(ctx))
		defer cancel()

		cs, err := c.conn.NewStream(ctx, &grpc.StreamDesc{StreamName: "Execute", ServerStreams: true}, model.MethodExecute)
		if err != nil {
			yield(sqlexec.Result{}, err)
			return
		}
		stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}
		if err := stream.Send(model.ExecuteRequest(text, c.lexical)); err != nil {
			yield(sqlexec.Result{}, err)
			return
		}
		if err := stream.CloseSend(); err != nil {
			yield(sqlexec.Result{}, err)
			return
		}

		for {
			msg, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(sqlexec.Result{}, err)
				return
			}
			r, err := model.DecodeResult(msg)
			if !yield(r, err) {
				return
			}
		}
	}
}

// ExecuteLine runs the line of text containing offset on the server. A blank
// line is reported as *sqlexec.Warning without a round trip; confirm is asked
// locally before anything is sent.
func (c *Client) ExecuteLine(ctx context.Context, text string, offset int, confirm sqlexec.ConfirmFunc) (sqlexec.Result, error) {
	line, ok := statement.CurrentLine(text, offset)
	if !ok {
		return sqlexec.Result{}, &sqlexec.Warning{Message: sqlexec.NoQueryOnLine}
	}
	if confirm != nil {
		yes, err := confirm(line)
		if err != nil {
			return sqlexec.Result{}, err
		}
		if !yes {
			return sqlexec.Result{}, sqlexec.ErrDeclined
		}
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), model.MethodExecuteLine, model.ExecuteLineRequest(text, offset), out); err != nil {
		return sqlexec.Result{}, err
	}
	return model.DecodeResult(out)
}

// Close releases the gRPC channel. The server session stays open.
func (c *Client) Close() error {
	return c.conn.Close()
}
