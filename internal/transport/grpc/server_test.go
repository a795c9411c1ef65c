package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/sfl-lite/internal/service"
	"github.com/example/sfl-lite/sfl/domain"
)

func setupClient(t *testing.T) (*Client, *service.CollectorService) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	collector := service.NewCollector()
	server := NewServer(collector)
	go server.ServeListener(lis)
	t.Cleanup(server.GracefulStop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, collector
}

func observations(kind domain.RequirementKind, status domain.RawStatus, lines ...int) *domain.Snapshot {
	s := &domain.Snapshot{}
	for _, l := range lines {
		e := domain.LineElement("pkg/a.go", l)
		if kind == domain.KindDefUse {
			e = domain.DefUseElement("pkg/a.go", "F()", l)
		}
		s.Observations = append(s.Observations, domain.Observation{Element: e, Status: status})
	}
	return s
}

func TestCollectorRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, collector := setupClient(t)

	sessionID, err := client.StartSession(ctx, domain.SessionConfig{Project: "demo", Heuristic: "Tarantula"})
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, 1, collector.Active())

	require.NoError(t, client.TestStarted(ctx, sessionID, "TestPass"))
	require.NoError(t, client.TestFinished(ctx, sessionID, "TestPass", domain.OutcomePass,
		observations(domain.KindLine, domain.RawFullyCovered, 1, 2)))
	require.NoError(t, client.TestStarted(ctx, sessionID, "TestFail"))
	require.NoError(t, client.TestFinished(ctx, sessionID, "TestFail", domain.OutcomeFail,
		observations(domain.KindLine, domain.RawPartlyCovered, 2, 3)))
	require.NoError(t, client.TestStarted(ctx, sessionID, "TestDua"))
	require.NoError(t, client.TestFinished(ctx, sessionID, "TestDua", domain.OutcomeFail,
		observations(domain.KindDefUse, domain.RawPartlyCovered, 7)))

	r, err := client.Finish(ctx, sessionID, "")
	require.NoError(t, err)
	assert.Equal(t, "demo", r.Project)
	assert.Equal(t, "Tarantula", r.Heuristic)
	assert.Equal(t, 3, r.TotalTests)
	assert.Equal(t, 2, r.FailedTests)
	require.Len(t, r.Entries, 3, "partly covered dua is not a requirement")
	assert.Equal(t, "L:pkg/a.go:3", r.Entries[0].Key)
	assert.InDelta(t, 1.0, r.Entries[0].Score, 1e-9)
	assert.Equal(t, 1, r.Entries[0].Position)
	assert.Equal(t, 0, collector.Active())
}

func TestCollectorErrorsMapToStatus(t *testing.T) {
	ctx := context.Background()
	client, _ := setupClient(t)

	_, err := client.StartSession(ctx, domain.SessionConfig{Heuristic: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = client.TestStarted(ctx, "missing", "TestA")
	assert.Equal(t, codes.NotFound, status.Code(err))

	sessionID, err := client.StartSession(ctx, domain.SessionConfig{})
	require.NoError(t, err)

	err = client.TestFinished(ctx, sessionID, "TestA", domain.OutcomePass, nil)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	require.NoError(t, client.Abort(ctx, sessionID))
	_, err = client.Finish(ctx, sessionID, "")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(testLogger(t))
	_, err := interceptor(context.Background(), &structpb.Struct{},
		&grpc.UnaryServerInfo{FullMethod: MethodFinish},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrSessionNotFound, codes.NotFound},
		{domain.ErrUnknownHeuristic, codes.InvalidArgument},
		{domain.ErrRequirementConflict, codes.InvalidArgument},
		{domain.ErrSessionClosed, codes.FailedPrecondition},
		{domain.ErrSessionAborted, codes.FailedPrecondition},
		{domain.ErrCoverageUnavailable, codes.Unavailable},
		{assert.AnError, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(MapErrorToStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, MapErrorToStatus(nil))
}
