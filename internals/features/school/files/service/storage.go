package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// FileStorage keeps the raw upload bytes out of the database; only
// the returned path handle is persisted.
type FileStorage interface {
	Store(ctx context.Context, originalName string, data []byte) (string, error)
}

type OSSStorage struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSSStorageFromEnv(prefix string) (*OSSStorage, error) {
	endpoint := strings.TrimSpace(os.Getenv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(os.Getenv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(os.Getenv("ALI_OSS_SECRET_KEY"))
	bucketName := strings.TrimSpace(os.Getenv("ALI_OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	client, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	log.Printf("[OSS] storage ready (bucket=%s prefix=%s)", bucketName, prefix)

	return &OSSStorage{bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *OSSStorage) Store(_ context.Context, originalName string, data []byte) (string, error) {
	ext := path.Ext(originalName)
	if ext == "" {
		ext = ".xlsx"
	}
	key := fmt.Sprintf("%s/%s/%s%s", s.prefix, time.Now().Format("2006/01"), uuid.NewString(), ext)
	key = strings.TrimPrefix(key, "/")

	if err := s.bucket.PutObject(key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return key, nil
}
