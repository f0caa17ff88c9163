package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/accountrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeAccounts{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeAccounts{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestServe_RoundTrip(t *testing.T) {
	hasher, err := password.NewHasher(password.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := auth.NewIssuer([]byte("secret"))
	require.NoError(t, err)
	svc := services.NewAccountService(repomanager.NewMemoryRepositoryManager(), hasher, issuer, logging.Nop(), nil)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewGRPCServer("", logging.Nop(), svc).Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: accountrpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())

	req, err := structpb.NewStruct(map[string]any{
		accountrpc.FieldUsername: "alice",
		accountrpc.FieldEmail:    "a@x.com",
		accountrpc.FieldPassword: "Secret1!",
	})
	require.NoError(t, err)
	out, err := accountrpc.Invoke(ctx, conn, accountrpc.MethodRegister, req)
	require.NoError(t, err)
	token := accountrpc.String(out, accountrpc.FieldToken)
	require.NotEmpty(t, token)

	_, err = accountrpc.Invoke(ctx, conn, accountrpc.MethodRegister, req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{accountrpc.FieldEmail: "a@x.com", accountrpc.FieldPassword: "wrong"})
	require.NoError(t, err)
	_, err = accountrpc.Invoke(ctx, conn, accountrpc.MethodLogin, bad)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = accountrpc.Invoke(ctx, conn, accountrpc.MethodMe, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	authed := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
	me, err := accountrpc.Invoke(authed, conn, accountrpc.MethodMe, &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "alice", accountrpc.String(me, accountrpc.FieldDisplayName))
	assert.False(t, accountrpc.Bool(me, accountrpc.FieldIsAdmin))
}
