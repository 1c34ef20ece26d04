package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeaderName carries a caller-chosen request id; one is generated
// when absent.
const RequestIDHeaderName = "x-request-id"

func firstValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// accessTokenInterceptor resolves the caller principal. Requests without an
// access token run as the anonymous principal and each service decides
// whether that is enough.
func (s *Server) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	accessToken := firstValue(ctx, common.AccessTokenHeaderName)
	if accessToken == "" {
		return handler(auth.WithPrincipal(ctx, auth.Anonymous), req)
	}

	p, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(auth.WithPrincipal(ctx, p), req)
}

// loggingInterceptor tags every call with a request id and logs its outcome.
func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstValue(ctx, RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	args := []any{"request_id", requestID, "method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "rpc", args...)
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "rpc", append(args, "error", err)...)
	default:
		s.logger.Info(ctx, "rpc", append(args, "error", err)...)
	}
	return resp, err
}
