package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BufferSize is the buffered-reader capacity the teacher and this reader
// both standardize on for the input stream (spec §6).
const BufferSize = 50 * 1024

// S3Options overrides the default AWS credential chain for "s3://" inputs.
// The zero value uses the default chain (environment, shared config,
// instance role) and the default "us-east-1" region.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// OpenInput resolves path to a readable, buffered byte stream. Three
// schemes are supported: "-" or "" for standard input, a plain filesystem
// path, and "s3://bucket/key" for an object in S3 (an enrichment beyond
// spec.md's file/stdin surface, see SPEC_FULL.md §3).
//
// The returned closer must be closed by the caller once the stream is
// fully consumed.
func OpenInput(ctx context.Context, path string, s3Opts S3Options) (*bufio.Reader, io.Closer, error) {
	if path == "" || path == "-" {
		return bufio.NewReaderSize(os.Stdin, BufferSize), io.NopCloser(nil), nil
	}
	if strings.HasPrefix(path, "s3://") {
		return openS3(ctx, path, s3Opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input file: %w", err)
	}
	return bufio.NewReaderSize(f, BufferSize), f, nil
}

func openS3(ctx context.Context, uri string, opts S3Options) (*bufio.Reader, io.Closer, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("parse s3 uri: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if opts.Endpoint != "" {
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(cfg)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get s3 object %s: %w", uri, err)
	}
	return bufio.NewReaderSize(out.Body, BufferSize), out.Body, nil
}
