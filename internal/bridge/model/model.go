// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the wire format of the workbench gRPC service.
//
// Every message is a google.protobuf.Struct, so no generated code is needed:
// execution results travel as the JSON form of sqlexec.Result, credentials as
// a flat object of strings. Numbers in result rows arrive as float64.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/sqlexec"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names.
const (
	ServiceName = "sqlbench.Workbench"

	MethodConnect     = "/" + ServiceName + "/Connect"
	MethodDisconnect  = "/" + ServiceName + "/Disconnect"
	MethodExecute     = "/" + ServiceName + "/Execute"
	MethodExecuteLine = "/" + ServiceName + "/ExecuteLine"
)

// SessionHeader is the metadata key that selects a server side session.
const SessionHeader = "sqlbench-session"

// DefaultSession is used when a call carries no session header.
const DefaultSession = "default"

// Field names used in request and reply structs.
const (
	FieldDSN       = "dsn"
	FieldConnected = "connected"
	FieldAddress   = "address"
	FieldText      = "text"
	FieldLexical   = "lexical"
	FieldOffset    = "offset"
	FieldWarning   = "warning"
)

// EncodeResult converts a result to its wire form.
func EncodeResult(r sqlexec.Result) (*structpb.Struct, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return s, nil
}

// DecodeResult converts a wire result back. A reply carrying a warning is
// returned as *sqlexec.Warning.
func DecodeResult(s *structpb.Struct) (sqlexec.Result, error) {
	if w, ok := s.GetFields()[FieldWarning]; ok {
		return sqlexec.Result{}, &sqlexec.Warning{Message: w.GetStringValue()}
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return sqlexec.Result{}, fmt.Errorf("decode result: %w", err)
	}
	var r sqlexec.Result
	if err := json.Unmarshal(b, &r); err != nil {
		return sqlexec.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return r, nil
}

// Warning builds a warning reply.
func Warning(msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldWarning: structpb.NewStringValue(msg),
	}}
}

// EncodeCredentials sends the normalized DSN, password included.
func EncodeCredentials(info *dsn.DSNInfo) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldDSN: structpb.NewStringValue(info.String()),
	}}
}

// DecodeCredentials parses the DSN of a Connect request.
func DecodeCredentials(s *structpb.Struct) (*dsn.DSNInfo, error) {
	raw := s.GetFields()[FieldDSN].GetStringValue()
	if raw == "" {
		return nil, fmt.Errorf("missing %q field", FieldDSN)
	}
	return dsn.ParseInfo(raw)
}

// ExecuteRequest builds the request of Execute.
func ExecuteRequest(text string, lexical bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldText:    structpb.NewStringValue(text),
		FieldLexical: structpb.NewBoolValue(lexical),
	}}
}

// ExecuteLineRequest builds the request of ExecuteLine.
func ExecuteLineRequest(text string, offset int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldText:   structpb.NewStringValue(text),
		FieldOffset: structpb.NewStringValue(strconv.Itoa(offset)),
	}}
}

// Offset reads the offset field of an ExecuteLine request.
func Offset(s *structpb.Struct) (int, error) {
	v := s.GetFields()[FieldOffset]
	if v == nil {
		return 0, fmt.Errorf("missing %q field", FieldOffset)
	}
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		return int(v.GetNumberValue()), nil
	}
	return strconv.Atoi(v.GetStringValue())
}
