// internal/matching/photos.go
// Resolves stored photo object keys into URLs at pool-generation time.
// The URLs are snapshotted into the pool document, so they are presigned
// to outlive the pool itself.

package matching

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// PhotoResolver turns stored object keys into fetchable URLs.
type PhotoResolver interface {
	ResolveURLs(keys []string) []string
}

// PhotoURLTTL returns the presign lifetime for snapshotted photo URLs:
// the pool's own lifetime plus a margin, so a URL read from a pool that
// is about to expire still resolves.
func PhotoURLTTL(poolTTL time.Duration) time.Duration {
	return poolTTL + 24*time.Hour
}

type s3PhotoResolver struct {
	svc    *s3.S3
	bucket string
	ttl    time.Duration
	log    *zap.Logger
}

// NewS3PhotoResolver builds a resolver presigning GET URLs against the
// profile photo bucket. ttl should cover the pool's lifetime.
func NewS3PhotoResolver(region, bucket string, ttl time.Duration, log *zap.Logger) (PhotoResolver, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &s3PhotoResolver{svc: s3.New(sess), bucket: bucket, ttl: ttl, log: log}, nil
}

func (r *s3PhotoResolver) ResolveURLs(keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		req, _ := r.svc.GetObjectRequest(&s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(key),
		})
		url, err := req.Presign(r.ttl)
		if err != nil {
			r.log.Warn("failed to presign photo URL", zap.String("key", key), zap.Error(err))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// noopPhotoResolver passes keys through unchanged. Used when no photo
// bucket is configured and in tests.
type noopPhotoResolver struct{}

func NewNoopPhotoResolver() PhotoResolver {
	return &noopPhotoResolver{}
}

func (noopPhotoResolver) ResolveURLs(keys []string) []string {
	return keys
}
