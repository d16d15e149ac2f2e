// Package archive persists the human-readable reason string that
// accompanies every response APDU, so rejected sessions can be audited
// long after the process's own logs have rotated away. Archival is
// best-effort and strictly off the protocol path: a failed write never
// changes a response APDU.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Archiver stores one reason string per dispatched APDU.
type Archiver interface {
	Archive(ctx context.Context, sessionID string, seq int, status uint16, reason string) error
}

// S3Archiver writes reasons to an S3 bucket, one object per APDU.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ Archiver = (*S3Archiver)(nil)

// NewS3Archiver builds an S3Archiver using the ambient AWS credential
// chain (env, shared config, instance role).
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: loading AWS config: %w", err)
	}
	return &S3Archiver{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key for one dispatched APDU's reason record.
func Key(prefix, sessionID string, seq int) string {
	if prefix == "" {
		return fmt.Sprintf("%s/%06d", sessionID, seq)
	}
	return fmt.Sprintf("%s/%s/%06d", prefix, sessionID, seq)
}

func (a *S3Archiver) Archive(ctx context.Context, sessionID string, seq int, status uint16, reason string) error {
	body := fmt.Sprintf("%04X %s\n", status, reason)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(a.prefix, sessionID, seq)),
		Body:        bytes.NewReader([]byte(body)),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("archive: S3 %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("archive: putting object: %w", err)
	}
	return nil
}

// NopArchiver discards everything, for configurations with no bucket.
type NopArchiver struct{}

var _ Archiver = NopArchiver{}

func (NopArchiver) Archive(context.Context, string, int, uint16, string) error { return nil }
