package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hireledger.HiringService"

// HiringServer is the set of RPCs served under ServiceName.
type HiringServer interface {
	Ping(ctx context.Context, in *Empty) (*PingReply, error)

	CreateAdvert(ctx context.Context, in *CreateAdvertRequest) (*AdvertReply, error)
	GetAdvert(ctx context.Context, in *AdvertRequest) (*AdvertReply, error)
	CloseSubmission(ctx context.Context, in *AdvertRequest) (*CloseSubmissionReply, error)
	ApplicationsForAdvert(ctx context.Context, in *AdvertRequest) (*TokenIDsReply, error)
	ComputeTopApplications(ctx context.Context, in *ComputeTopRequest) (*ShortlistReply, error)
	QualifiedApplications(ctx context.Context, in *AdvertRequest) (*ShortlistReply, error)

	SubmitApplication(ctx context.Context, in *SubmitApplicationRequest) (*SubmissionReply, error)
	GetApplication(ctx context.Context, in *TokenRequest) (*ApplicationReply, error)
	RemoveApplication(ctx context.Context, in *RemoveApplicationRequest) (*Empty, error)
	CapturedHash(ctx context.Context, in *IdentifierRequest) (*HashReply, error)

	SubmitSecondPart(ctx context.Context, in *SubmitSecondPartRequest) (*EscrowReply, error)
	RequestAccess(ctx context.Context, in *CommitmentRequest) (*RefReply, error)
	GetAllSecondParts(ctx context.Context, in *AdvertRequest) (*SecondPartsReply, error)
	PrepareUpload(ctx context.Context, in *Empty) (*UploadReply, error)
	PresignAccess(ctx context.Context, in *CommitmentRequest) (*URLReply, error)

	RecordPairScore(ctx context.Context, in *PairScoreRequest) (*Empty, error)
	ApplyScore(ctx context.Context, in *ApplyScoreRequest) (*Empty, error)
	CheckPairScore(ctx context.Context, in *CheckPairScoreRequest) (*ScoreReply, error)
}

// unary adapts a typed RPC method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(HiringServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			hs := srv.(HiringServer)
			if interceptor == nil {
				return call(hs, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(hs, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes HiringService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HiringServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", HiringServer.Ping),
		unary("CreateAdvert", HiringServer.CreateAdvert),
		unary("GetAdvert", HiringServer.GetAdvert),
		unary("CloseSubmission", HiringServer.CloseSubmission),
		unary("ApplicationsForAdvert", HiringServer.ApplicationsForAdvert),
		unary("ComputeTopApplications", HiringServer.ComputeTopApplications),
		unary("QualifiedApplications", HiringServer.QualifiedApplications),
		unary("SubmitApplication", HiringServer.SubmitApplication),
		unary("GetApplication", HiringServer.GetApplication),
		unary("RemoveApplication", HiringServer.RemoveApplication),
		unary("CapturedHash", HiringServer.CapturedHash),
		unary("SubmitSecondPart", HiringServer.SubmitSecondPart),
		unary("RequestAccess", HiringServer.RequestAccess),
		unary("GetAllSecondParts", HiringServer.GetAllSecondParts),
		unary("PrepareUpload", HiringServer.PrepareUpload),
		unary("PresignAccess", HiringServer.PresignAccess),
		unary("RecordPairScore", HiringServer.RecordPairScore),
		unary("ApplyScore", HiringServer.ApplyScore),
		unary("CheckPairScore", HiringServer.CheckPairScore),
	},
	Metadata: "hireledger/hiring.json",
}
