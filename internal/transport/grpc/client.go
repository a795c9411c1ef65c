package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/report"
	"github.com/example/sfl-lite/sfl/runner"
)

// Client is a typed client of the CoverageCollector service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a collector at addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// StartSession opens a session and returns its id.
func (c *Client) StartSession(ctx context.Context, cfg domain.SessionConfig) (string, error) {
	var resp StartSessionResponse
	err := c.invoke(ctx, MethodStartSession, StartSessionRequest{
		Project:    cfg.Project,
		Heuristic:  cfg.Heuristic,
		OutputType: cfg.OutputType,
		OutputName: cfg.OutputName,
	}, &resp)
	return resp.SessionID, err
}

// TestStarted announces a test.
func (c *Client) TestStarted(ctx context.Context, sessionID, test string) error {
	return c.invoke(ctx, MethodTestStarted, TestStartedRequest{SessionID: sessionID, Test: test}, nil)
}

// TestFinished reports a test outcome and its coverage.
func (c *Client) TestFinished(ctx context.Context, sessionID, test string, outcome domain.TestOutcome, snapshot *domain.Snapshot) error {
	req := TestFinishedRequest{
		SessionID: sessionID,
		Record:    runner.Record{Test: test, Failed: outcome.Failed()},
	}
	if snapshot != nil {
		req.Observations = make([]runner.ObservationRecord, 0, len(snapshot.Observations))
		for _, obs := range snapshot.Observations {
			req.Observations = append(req.Observations, runner.ObservationRecordOf(obs))
		}
	}
	return c.invoke(ctx, MethodTestFinished, req, nil)
}

// Finish ends a session and returns its report.
func (c *Client) Finish(ctx context.Context, sessionID, heuristicName string) (*report.Report, error) {
	var resp report.Report
	if err := c.invoke(ctx, MethodFinish, FinishRequest{SessionID: sessionID, Heuristic: heuristicName}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Abort ends a session without a rank.
func (c *Client) Abort(ctx context.Context, sessionID string) error {
	return c.invoke(ctx, MethodAbort, AbortRequest{SessionID: sessionID}, nil)
}

func (c *Client) invoke(ctx context.Context, method string, req any, resp any) error {
	in, err := encodeStruct(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return decodeStruct(out, resp)
}
