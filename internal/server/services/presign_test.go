package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/hireledger/internal/server/config"
)

func testS3Config() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "hireledger",
	}
}

// stubS3 replaces the AWS seams for the duration of the test.
func stubS3(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestNewPresigner_DisabledWithoutBucket(t *testing.T) {
	cfg := testS3Config()
	cfg.S3Bucket = ""
	if p := NewPresigner(cfg, nil); p != nil {
		t.Fatalf("expected nil presigner, got %+v", p)
	}
}

func TestPresigner_StorageKey(t *testing.T) {
	p := NewPresigner(testS3Config(), func() time.Time { return day0 })
	key := p.StorageKey()
	if !strings.HasPrefix(key, "escrow/2026/10/17/") {
		t.Fatalf("unexpected key %q", key)
	}
	if key == p.StorageKey() {
		t.Fatalf("keys must be unique")
	}
}

func TestPresigner_client(t *testing.T) {
	stubS3(t)
	p := NewPresigner(testS3Config(), nil)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("credentials not applied")
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	pc, err := p.client(context.Background())
	if err != nil {
		t.Fatalf("client err: %v", err)
	}
	if pc == nil {
		t.Fatalf("nil presign client")
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint mismatch: %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatalf("expected path-style addressing")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	if _, err := p.client(context.Background()); err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v", err)
	}
}

func TestPresigner_PutURL(t *testing.T) {
	stubS3(t)
	p := NewPresigner(testS3Config(), func() time.Time { return day0 })

	var gotBucket, gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://s3/put"}, nil
	}

	key, url, err := p.PutURL(context.Background())
	if err != nil {
		t.Fatalf("PutURL err: %v", err)
	}
	if url != "https://s3/put" || key != gotKey || gotBucket != "hireledger" {
		t.Fatalf("unexpected result key=%q url=%q bucket=%q", key, url, gotBucket)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}
	if _, _, err := p.PutURL(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEscrow_PresignAccess(t *testing.T) {
	stubS3(t)
	f := newFixture(t)
	f.escrow = NewEscrowService(f.deps, NewPresigner(testS3Config(), f.clock.Now))

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3/put/" + *in.Key}, nil
	}
	var gotKey string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://s3/get/" + *in.Key}, nil
	}

	if _, _, err := f.escrow.PrepareUpload(anonCtx); err == nil {
		t.Fatalf("expected anonymous upload to be rejected")
	}

	key, putURL, err := f.escrow.PrepareUpload(aliceCtx)
	if err != nil {
		t.Fatalf("PrepareUpload err: %v", err)
	}
	if putURL != "https://s3/put/"+key {
		t.Fatalf("unexpected put url %q", putURL)
	}

	f.mustAdvert(t, 1, "ad1")
	sub, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	if err != nil {
		t.Fatalf("submit err: %v", err)
	}
	if _, err := f.escrow.SubmitSecondPart(aliceCtx, sub.Commitment, key, today); err != nil {
		t.Fatalf("escrow err: %v", err)
	}

	getURL, err := f.escrow.PresignAccess(anonCtx, sub.Commitment)
	if err != nil {
		t.Fatalf("PresignAccess err: %v", err)
	}
	if gotKey != key || getURL != "https://s3/get/"+key {
		t.Fatalf("unexpected get url %q for key %q", getURL, gotKey)
	}

	f.clock.Set(day0.AddDate(0, 4, 0))
	if _, err := f.escrow.PresignAccess(anonCtx, sub.Commitment); err == nil {
		t.Fatalf("expected expired escrow to be refused")
	}
}
