// Package archive ships detection runs to S3 before they are pruned from
// the local database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/logger"
)

// Archiver stores batches of detection runs outside the database.
type Archiver interface {
	Archive(ctx context.Context, runs []*detection.Run) (string, error)
}

// uploader is the slice of the S3 API the archiver needs.
type uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes JSON batches to an S3 bucket under a date-partitioned
// key layout.
type S3Archiver struct {
	client uploader
	bucket string
	prefix string
	logger *logger.Logger
	now    func() time.Time
}

// NewS3Archiver builds an archiver from the ambient AWS configuration.
func NewS3Archiver(ctx context.Context, cfg config.ArchiveConfig, log *logger.Logger) (*S3Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log,
		now:    time.Now,
	}, nil
}

// Archive uploads the runs as one JSON object and returns its key.
// An empty batch is a no-op.
func (a *S3Archiver) Archive(ctx context.Context, runs []*detection.Run) (string, error) {
	if len(runs) == 0 {
		return "", nil
	}

	body, err := json.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal runs: %w", err)
	}

	now := a.now().UTC()
	key := fmt.Sprintf("%s/%04d/%02d/%02d/runs-%d.json",
		a.prefix, now.Year(), now.Month(), now.Day(), now.UnixNano())

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"bucket": a.bucket,
		"key":    key,
		"runs":   len(runs),
		"bytes":  len(body),
	}).Info("Archived detection runs")

	return key, nil
}
