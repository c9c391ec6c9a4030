// Package rpc exposes a bank over a small hand-rolled gRPC service built on
// protobuf well-known wrapper types, so no codegen toolchain is needed.
// Envelopes, record bytes and balances travel in their wire encodings;
// transition error codes round-trip through gRPC statuses.
package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/synchronizer/bank"
	"xdao.co/synchronizer/program"
)

// Server exposes a bank over the Synchronizer gRPC service.
type Server struct {
	UnimplementedSynchronizerServer
	Bank *bank.Bank
}

func (s *Server) Execute(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Bank == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing bank")
	}
	env, err := bank.DecodeEnvelope(in.GetValue())
	if err != nil {
		return nil, statusFromProgram(err)
	}
	snap, err := s.Bank.Execute(env)
	if err != nil {
		return nil, statusFromProgram(err)
	}
	if !snap.Defined() {
		// Accepted, but nothing was archived.
		return wrapperspb.String(""), nil
	}
	return wrapperspb.String(snap.String()), nil
}

func (s *Server) Record(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Bank == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing bank")
	}
	key, err := program.ParsePublicKey(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	raw, err := s.Bank.RecordBytes(key)
	if err != nil {
		return nil, statusFromProgram(err)
	}
	return wrapperspb.Bytes(raw), nil
}

func (s *Server) Balance(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	_ = ctx
	if s == nil || s.Bank == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing bank")
	}
	key, err := program.ParsePublicKey(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	amount, err := s.Bank.Balance(key)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return wrapperspb.UInt64(amount), nil
}
