package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/accountrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current token, if any, to every call.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGophAuthClient creates a client for endpointURL. The connection is
// established lazily on the first call. Extra dial options are appended
// after the defaults.
func NewGophAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Register creates an account and returns its token. The token also becomes
// the client's current token.
func (s *GRPCClient) Register(ctx context.Context, username, email, password string) (string, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		accountrpc.FieldUsername: structpb.NewStringValue(username),
		accountrpc.FieldEmail:    structpb.NewStringValue(email),
		accountrpc.FieldPassword: structpb.NewStringValue(password),
	}}

	resp, err := accountrpc.Invoke(ctx, s.conn, accountrpc.MethodRegister, req)
	if err != nil {
		return "", s.mapError(err)
	}

	return s.acceptToken(resp)
}

// Login exchanges credentials for a token. The token also becomes the
// client's current token.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (string, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		accountrpc.FieldEmail:    structpb.NewStringValue(email),
		accountrpc.FieldPassword: structpb.NewStringValue(password),
	}}

	resp, err := accountrpc.Invoke(ctx, s.conn, accountrpc.MethodLogin, req)
	if err != nil {
		return "", s.mapError(err)
	}

	return s.acceptToken(resp)
}

// Me describes the account behind the current token.
func (s *GRPCClient) Me(ctx context.Context) (*Account, error) {
	if s.token() == "" {
		return nil, ErrUnauthorized
	}

	resp, err := accountrpc.Invoke(ctx, s.conn, accountrpc.MethodMe, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &Account{
		UserID:      accountrpc.String(resp, accountrpc.FieldUserID),
		ProfileID:   accountrpc.String(resp, accountrpc.FieldProfileID),
		IsAdmin:     accountrpc.Bool(resp, accountrpc.FieldIsAdmin),
		Email:       accountrpc.String(resp, accountrpc.FieldEmail),
		DisplayName: accountrpc.String(resp, accountrpc.FieldDisplayName),
		Bio:         accountrpc.String(resp, accountrpc.FieldBio),
		AvatarURL:   accountrpc.String(resp, accountrpc.FieldAvatarURL),
		LinkageType: accountrpc.String(resp, accountrpc.FieldLinkageType),
		CreatedAt:   accountrpc.String(resp, accountrpc.FieldCreatedAt),
	}, nil
}

func (s *GRPCClient) acceptToken(resp *structpb.Struct) (string, error) {
	token := accountrpc.String(resp, accountrpc.FieldToken)
	if token == "" {
		return "", errors.New("rpc error: response carries no token")
	}
	s.SetAccessToken(token)
	return token, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError turns a gRPC status into one of the package sentinels, keeping
// the server's message for display.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return &ServerError{Kind: ErrUnauthorized, Message: st.Message()}
	case codes.InvalidArgument:
		return &ServerError{Kind: ErrInvalidInput, Message: st.Message()}
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
