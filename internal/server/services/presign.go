package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/hireledger/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// PresignExpiry is how long a presigned escrow URL stays usable.
const PresignExpiry = 15 * time.Minute

// Presigner issues presigned object-storage URLs for escrowed ciphertext.
type Presigner struct {
	bucket   string
	region   string
	user     string
	password string
	endpoint string
	now      func() time.Time
}

// NewPresigner returns nil when no bucket is configured.
func NewPresigner(cfg *sc.Config, now func() time.Time) *Presigner {
	if !cfg.PresignEnabled() {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &Presigner{
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		user:     cfg.S3RootUser,
		password: cfg.S3RootPassword,
		endpoint: cfg.S3BaseEndpoint,
		now:      now,
	}
}

// StorageKey returns a fresh object key of the form escrow/YYYY/M/D/<uuid>.
func (p *Presigner) StorageKey() string {
	d := p.now().UTC()
	return fmt.Sprintf("escrow/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (p *Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(p.user, p.password, "")))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PutURL issues a new storage key and a presigned PUT URL for it.
func (p *Presigner) PutURL(ctx context.Context) (string, string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := p.bucket
	key := p.StorageKey()

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetURL presigns a GET for key.
func (p *Presigner) GetURL(ctx context.Context, key string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
