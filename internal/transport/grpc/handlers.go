package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/report"
)

// StartSession implements the StartSession RPC.
func (s *Server) StartSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req StartSessionRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, MapErrorToStatus(err)
	}

	sessionID, err := s.collector.StartSession(ctx, domain.SessionConfig{
		Project:    req.Project,
		Heuristic:  req.Heuristic,
		OutputType: req.OutputType,
		OutputName: req.OutputName,
	})
	if err != nil {
		return nil, MapErrorToStatus(err)
	}
	return encodeResponse(StartSessionResponse{SessionID: sessionID})
}

// TestStarted implements the TestStarted RPC.
func (s *Server) TestStarted(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TestStartedRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, MapErrorToStatus(err)
	}

	if err := s.collector.TestStarted(ctx, req.SessionID, req.Test); err != nil {
		return nil, MapErrorToStatus(err)
	}
	return &structpb.Struct{}, nil
}

// TestFinished implements the TestFinished RPC.
func (s *Server) TestFinished(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TestFinishedRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, MapErrorToStatus(err)
	}

	snapshot, err := req.Snapshot()
	if err != nil {
		return nil, MapErrorToStatus(err)
	}
	outcome := domain.OutcomeOf(req.Failed)
	if err := s.collector.TestFinished(ctx, req.SessionID, req.Test, outcome, snapshot); err != nil {
		return nil, MapErrorToStatus(err)
	}
	return &structpb.Struct{}, nil
}

// Finish implements the Finish RPC. The response is the JSON report.
func (s *Server) Finish(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req FinishRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, MapErrorToStatus(err)
	}

	result, err := s.collector.Finish(ctx, req.SessionID, req.Heuristic)
	if err != nil {
		return nil, MapErrorToStatus(err)
	}
	return encodeResponse(report.New(result))
}

// Abort implements the Abort RPC.
func (s *Server) Abort(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AbortRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, MapErrorToStatus(err)
	}

	if err := s.collector.Abort(ctx, req.SessionID); err != nil {
		return nil, MapErrorToStatus(err)
	}
	return &structpb.Struct{}, nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	st, err := encodeStruct(v)
	if err != nil {
		return nil, MapErrorToStatus(err)
	}
	return st, nil
}
