package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/utils"
)

const s3Prefix = "posts_images/"

// S3 stores images in an S3 bucket or a MinIO server.
type S3 struct {
	client  *s3.S3
	bucket  string
	baseURL string
}

// NewS3 opens a session and makes sure the bucket exists.
func NewS3(cfg config.AppConfig) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires a bucket name")
	}
	awsConfig := &aws.Config{
		Region:      aws.String(cfg.S3Region),
		Credentials: credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
	}
	// MinIO for local development
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.S3UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}
	st := &S3{
		client:  s3.New(sess),
		bucket:  cfg.S3Bucket,
		baseURL: publicBaseURL(cfg),
	}

	if _, err := st.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(st.bucket)}); err != nil {
		if _, err := st.client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(st.bucket)}); err != nil {
			utils.Logger.Warn("s3 bucket not created", zap.String("bucket", st.bucket), zap.Error(err))
		}
	}
	return st, nil
}

func publicBaseURL(cfg config.AppConfig) string {
	if cfg.S3Endpoint != "" && !strings.Contains(cfg.S3Endpoint, "amazonaws.com") {
		protocol := "http"
		if cfg.S3UseSSL {
			protocol = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.S3Endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s", protocol, strings.TrimRight(host, "/"), cfg.S3Bucket)
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
}

// Save uploads body under posts_images/<key>.
func (s *S3) Save(ctx context.Context, key string, body io.Reader, contentType string) (Object, error) {
	full := s3Prefix + strings.TrimLeft(key, "/")
	seeker, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return Object{}, fmt.Errorf("read body: %w", err)
		}
		seeker = strings.NewReader(string(data))
	}
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(full),
		Body:        seeker,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload to S3: %w", err)
	}
	return Object{Key: full, URL: s.baseURL + "/" + full}, nil
}

// Delete removes the object stored under key.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from S3: %w", err)
	}
	return nil
}
