package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Store implements report.ArtifactStore on an S3-compatible object store.
type Store struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
	log           zerolog.Logger
}

// New connects to the object store and ensures the bucket exists. Bucket
// creation tolerates a concurrent creator winning the race.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, presignExpiry time.Duration, log zerolog.Logger) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			exists, checkErr := cli.BucketExists(ctx, bucket)
			if checkErr != nil || !exists {
				return nil, err
			}
		}
	}

	return &Store{client: cli, bucket: bucket, presignExpiry: presignExpiry, log: log}, nil
}

// Upload stores artifact bytes under key and returns a retrievable URL.
// When signing is enabled but fails, the bare URL is returned instead of an
// error: a reachable-but-unsigned link beats a failed request at this stage.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=3600",
	})
	if err != nil {
		return "", err
	}

	if s.presignExpiry > 0 {
		signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, nil)
		if err == nil {
			return signed.String(), nil
		}
		s.log.Warn().Err(err).Str("key", key).Msg("presign failed, returning unsigned URL")
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, key), nil
}
