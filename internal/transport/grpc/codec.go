package grpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/runner"
)

// StartSessionRequest opens a collection session.
type StartSessionRequest struct {
	Project    string `json:"project,omitempty"`
	Heuristic  string `json:"heuristic,omitempty"`
	OutputType string `json:"output_type,omitempty"`
	OutputName string `json:"output_name,omitempty"`
}

// StartSessionResponse carries the new session id.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// TestStartedRequest announces a test.
type TestStartedRequest struct {
	SessionID string `json:"session_id"`
	Test      string `json:"test"`
}

// TestFinishedRequest reports a test outcome with its coverage, using the
// replay record layout.
type TestFinishedRequest struct {
	SessionID string `json:"session_id"`
	runner.Record
}

// FinishRequest ends a session and asks for its rank.
type FinishRequest struct {
	SessionID string `json:"session_id"`
	Heuristic string `json:"heuristic,omitempty"`
}

// AbortRequest ends a session without a rank.
type AbortRequest struct {
	SessionID string `json:"session_id"`
}

// encodeStruct converts a JSON-tagged message into a protobuf Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// decodeStruct fills a JSON-tagged message from a protobuf Struct.
func decodeStruct(st *structpb.Struct, v any) error {
	if st == nil {
		st = &structpb.Struct{}
	}
	data, err := protojson.Marshal(st)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func extractSessionID(req interface{}) string {
	if st, ok := req.(*structpb.Struct); ok {
		return st.GetFields()["session_id"].GetStringValue()
	}
	return ""
}

// MapErrorToStatus maps domain errors to gRPC status codes.
func MapErrorToStatus(err error) error {
	if err == nil {
		return nil
	}

	// Already a gRPC status error
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrUnknownHeuristic),
		errors.Is(err, domain.ErrRequirementConflict):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNoTestRunning),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrSessionNotFinished),
		errors.Is(err, domain.ErrSessionAborted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrCoverageUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
