// Package accountrpc describes the gophauth.v1.AccountService gRPC service.
// Messages are google.protobuf.Struct values, so client and server share
// only this descriptor and the field names below.
package accountrpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gophauth.v1.AccountService"

// Full method names.
const (
	MethodRegister = "/" + ServiceName + "/Register"
	MethodLogin    = "/" + ServiceName + "/Login"
	MethodMe       = "/" + ServiceName + "/Me"
)

// Message field names.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldToken       = "token"
	FieldUserID      = "userId"
	FieldProfileID   = "profileId"
	FieldIsAdmin     = "isAdmin"
	FieldDisplayName = "displayName"
	FieldBio         = "bio"
	FieldAvatarURL   = "avatarUrl"
	FieldLinkageType = "linkageType"
	FieldCreatedAt   = "createdAt"
)

// AccountServiceServer is implemented by the server transport.
type AccountServiceServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Me(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc is passed to grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, AccountServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, AccountServiceServer.Login)},
		{MethodName: "Me", Handler: unaryHandler(MethodMe, AccountServiceServer.Me)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAccountServiceServer registers impl on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, impl AccountServiceServer) {
	s.RegisterService(&ServiceDesc, impl)
}

type method func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call method) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ErrFieldType reports a request field holding a value of the wrong kind.
var ErrFieldType = errors.New("wrong field type")

// Strings reads keys from s in order. A missing or null field reads as "";
// any other non-string value is an ErrFieldType.
func Strings(s *structpb.Struct, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		v, ok := s.GetFields()[key]
		if !ok {
			continue
		}
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			out[i] = kind.StringValue
		case *structpb.Value_NullValue, nil:
		default:
			return nil, fmt.Errorf("%w: %s must be a string", ErrFieldType, key)
		}
	}
	return out, nil
}

// String returns the string value of key, or "".
func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Bool returns the bool value of key, or false.
func Bool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// Invoke calls fullMethod on conn.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, fullMethod string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, fullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
