package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/accountrpc"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// MsgBadFieldType is returned when a request field is not a string.
const MsgBadFieldType = "Request fields must be strings."

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Debug(ctx, "Registration request")

	in, err := s.readFields(ctx, req, accountrpc.FieldUsername, accountrpc.FieldEmail, accountrpc.FieldPassword)
	if err != nil {
		return nil, err
	}

	token, err := s.accounts.Register(ctx, in[0], in[1], in[2])
	if err != nil {
		return nil, s.toStatus(ctx, err, services.MsgRegisterFailed)
	}

	return tokenResponse(token), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Debug(ctx, "Login request")

	in, err := s.readFields(ctx, req, accountrpc.FieldEmail, accountrpc.FieldPassword)
	if err != nil {
		return nil, err
	}

	token, err := s.accounts.Login(ctx, in[0], in[1])
	if err != nil {
		return nil, s.toStatus(ctx, err, services.MsgLoginFailed)
	}

	return tokenResponse(token), nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Debug(ctx, "Me request")

	id, ok := identityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	p := id.Profile
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		accountrpc.FieldUserID:      structpb.NewStringValue(id.CredentialID),
		accountrpc.FieldProfileID:   structpb.NewStringValue(p.ID),
		accountrpc.FieldIsAdmin:     structpb.NewBoolValue(id.IsAdmin),
		accountrpc.FieldEmail:       structpb.NewStringValue(p.Email),
		accountrpc.FieldDisplayName: structpb.NewStringValue(p.DisplayName),
		accountrpc.FieldBio:         structpb.NewStringValue(p.Bio),
		accountrpc.FieldAvatarURL:   structpb.NewStringValue(p.AvatarURL),
		accountrpc.FieldLinkageType: structpb.NewStringValue(string(p.LinkageType)),
		accountrpc.FieldCreatedAt:   structpb.NewStringValue(p.CreatedAt.UTC().Format(time.RFC3339)),
	}}, nil
}

func (s *GRPCServer) readFields(ctx context.Context, req *structpb.Struct, keys ...string) ([]string, error) {
	in, err := accountrpc.Strings(req, keys...)
	if err != nil {
		s.logger.Debug(ctx, "malformed request", "error", err)
		return nil, status.Error(codes.InvalidArgument, MsgBadFieldType)
	}
	return in, nil
}

func tokenResponse(token string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		accountrpc.FieldToken: structpb.NewStringValue(token),
	}}
}

// toStatus maps a flow error to a gRPC status with a client-safe message.
func (s *GRPCServer) toStatus(ctx context.Context, err error, fallback string) error {
	code := codes.Internal
	switch services.Classify(err) {
	case services.CategoryValidation:
		code = codes.InvalidArgument
	case services.CategoryUnauthenticated:
		code = codes.Unauthenticated
	default:
		s.logger.Error(ctx, "request failed", "error", err)
	}
	return status.Error(code, services.PublicMessage(err, fallback))
}
