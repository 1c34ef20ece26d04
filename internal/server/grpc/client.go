package grpc

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client calls HiringService over a JSON-coded connection.
type Client struct {
	conn        *grpc.ClientConn
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.accessToken != "" {
		ctx = withAccessToken(ctx, c.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// Dial opens a plaintext connection to address. An empty accessToken calls
// as the anonymous principal.
func Dial(address, accessToken string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{accessToken: accessToken}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func call[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) (*PingReply, error) {
	return call[PingReply](ctx, c, "Ping", &Empty{})
}

func (c *Client) CreateAdvert(ctx context.Context, advertID int64, periodDays uint32, referenceLink string) (*AdvertReply, error) {
	return call[AdvertReply](ctx, c, "CreateAdvert", &CreateAdvertRequest{AdvertID: advertID, PeriodDays: periodDays, ReferenceLink: referenceLink})
}

func (c *Client) GetAdvert(ctx context.Context, advertID int64) (*AdvertReply, error) {
	return call[AdvertReply](ctx, c, "GetAdvert", &AdvertRequest{AdvertID: advertID})
}

func (c *Client) CloseSubmission(ctx context.Context, advertID int64) (*CloseSubmissionReply, error) {
	return call[CloseSubmissionReply](ctx, c, "CloseSubmission", &AdvertRequest{AdvertID: advertID})
}

func (c *Client) ApplicationsForAdvert(ctx context.Context, advertID int64) (*TokenIDsReply, error) {
	return call[TokenIDsReply](ctx, c, "ApplicationsForAdvert", &AdvertRequest{AdvertID: advertID})
}

func (c *Client) ComputeTopApplications(ctx context.Context, advertID int64, threshold uint16) (*ShortlistReply, error) {
	return call[ShortlistReply](ctx, c, "ComputeTopApplications", &ComputeTopRequest{AdvertID: advertID, Threshold: threshold})
}

func (c *Client) QualifiedApplications(ctx context.Context, advertID int64) (*ShortlistReply, error) {
	return call[ShortlistReply](ctx, c, "QualifiedApplications", &AdvertRequest{AdvertID: advertID})
}

func (c *Client) SubmitApplication(ctx context.Context, advertID int64, identifier string) (*SubmissionReply, error) {
	return call[SubmissionReply](ctx, c, "SubmitApplication", &SubmitApplicationRequest{AdvertID: advertID, Identifier: identifier})
}

func (c *Client) GetApplication(ctx context.Context, tokenID uint64) (*ApplicationReply, error) {
	return call[ApplicationReply](ctx, c, "GetApplication", &TokenRequest{TokenID: tokenID})
}

func (c *Client) RemoveApplication(ctx context.Context, tokenID uint64, identifier string) error {
	_, err := call[Empty](ctx, c, "RemoveApplication", &RemoveApplicationRequest{TokenID: tokenID, Identifier: identifier})
	return err
}

func (c *Client) CapturedHash(ctx context.Context, identifier string) (*HashReply, error) {
	return call[HashReply](ctx, c, "CapturedHash", &IdentifierRequest{Identifier: identifier})
}

func (c *Client) SubmitSecondPart(ctx context.Context, commitment digest.Hash, ref string, activationDate uint32) (*EscrowReply, error) {
	return call[EscrowReply](ctx, c, "SubmitSecondPart", &SubmitSecondPartRequest{Commitment: commitment, CiphertextRef: ref, ActivationDate: activationDate})
}

func (c *Client) RequestAccess(ctx context.Context, commitment digest.Hash) (*RefReply, error) {
	return call[RefReply](ctx, c, "RequestAccess", &CommitmentRequest{Commitment: commitment})
}

func (c *Client) GetAllSecondParts(ctx context.Context, advertID int64) (*SecondPartsReply, error) {
	return call[SecondPartsReply](ctx, c, "GetAllSecondParts", &AdvertRequest{AdvertID: advertID})
}

func (c *Client) PrepareUpload(ctx context.Context) (*UploadReply, error) {
	return call[UploadReply](ctx, c, "PrepareUpload", &Empty{})
}

func (c *Client) PresignAccess(ctx context.Context, commitment digest.Hash) (*URLReply, error) {
	return call[URLReply](ctx, c, "PresignAccess", &CommitmentRequest{Commitment: commitment})
}

func (c *Client) RecordPairScore(ctx context.Context, a, b string, score uint16) error {
	_, err := call[Empty](ctx, c, "RecordPairScore", &PairScoreRequest{IdentifierA: a, IdentifierB: b, Score: score})
	return err
}

func (c *Client) ApplyScore(ctx context.Context, tokenID uint64, score uint16) error {
	_, err := call[Empty](ctx, c, "ApplyScore", &ApplyScoreRequest{TokenID: tokenID, Score: score})
	return err
}

func (c *Client) CheckPairScore(ctx context.Context, advertID int64, tokenID uint64, a, b string) (*ScoreReply, error) {
	return call[ScoreReply](ctx, c, "CheckPairScore", &CheckPairScoreRequest{AdvertID: advertID, TokenID: tokenID, IdentifierA: a, IdentifierB: b})
}
