package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"

	"syncme/core/config"
	"syncme/core/utils"
)

type AudioStoreInterface interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// AudioStore uploads generated speech to S3 compatible storage and returns
// a public object URL.
type AudioStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewAudioStore(cfg config.S3Config) *AudioStore {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &AudioStore{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}
}

func (s *AudioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// audioObjectKey builds a readable object key from the first words of the
// spoken text plus a random suffix.
func audioObjectKey(text string) string {
	words := strings.Fields(text)
	if len(words) > 6 {
		words = words[:6]
	}
	prefix := slug.Make(strings.Join(words, " "))
	if prefix == "" {
		prefix = "speech"
	}
	return fmt.Sprintf("tts/%s-%s.mp3", prefix, utils.GenerateLongID())
}
