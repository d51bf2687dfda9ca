package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLTTL = 5 * time.Minute

// AudioService hands out pre-signed S3 PUT URLs for voice recordings.
// Clients upload the blob directly to S3; the API only stores the
// resulting object URL.
type AudioService struct {
	s3Client  *s3.Client
	s3Bucket  string
	region    string
	endpoint  string
	presigner *s3.PresignClient
}

// NewAudioService creates a new audio storage service
func NewAudioService(region, bucket, accessKey, secretKey, endpoint string) (*AudioService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &AudioService{
		s3Client:  s3Client,
		s3Bucket:  bucket,
		region:    region,
		endpoint:  endpoint,
		presigner: s3.NewPresignClient(s3Client),
	}, nil
}

// AudioUpload holds a pre-signed upload URL and the final audio URL
type AudioUpload struct {
	UploadURL string `json:"upload_url"`
	AudioURL  string `json:"audio_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignUpload generates a pre-signed PUT URL for one voice recording.
// prefix groups objects by feature (broadcasts, messages).
func (s *AudioService) PresignUpload(ctx context.Context, prefix, contentType string) (*AudioUpload, error) {
	if contentType == "" {
		contentType = "audio/m4a"
	}

	key := fmt.Sprintf("%s/%s.m4a", prefix, uuid.New().String())

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &AudioUpload{
		UploadURL: request.URL,
		AudioURL:  s.objectURL(key),
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}

func (s *AudioService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.s3Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.region, key)
}
