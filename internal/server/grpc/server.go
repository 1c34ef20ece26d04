package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/services"
	"google.golang.org/grpc"
)

// Services are the hiring services the gRPC surface exposes.
type Services struct {
	Adverts      *services.AdvertService
	Applications *services.ApplicationService
	Escrow       *services.EscrowService
	Scores       *services.ScoreService
}

type Server struct {
	address   string
	svc       Services
	logger    logging.Logger
	jwtSecret []byte
	ping      func(ctx context.Context) error
}

// NewServer builds the gRPC surface. ping backs the Ping RPC and may be nil.
func NewServer(address string, l logging.Logger, svc Services, secretKey string, ping func(ctx context.Context) error) *Server {
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return &Server{
		address:   address,
		svc:       svc,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
		ping:      ping,
	}
}

func (s *Server) newGRPCServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newGRPCServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
