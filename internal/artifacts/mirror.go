// Package artifacts mirrors finished renders into object storage so the
// final video URL outlives the provider's retention window.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lessonforge/internal/config"
)

const defaultPresignHours = 72

// Mirror copies provider-hosted videos into a MinIO bucket and hands back a
// presigned URL.
type Mirror struct {
	cfg        config.Storage
	client     *minio.Client
	httpClient *http.Client
}

// NewMirror constructs a Mirror from the storage configuration. Returns
// (nil, nil) when mirroring is disabled.
func NewMirror(cfg config.Storage) (*Mirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage mirror requires an endpoint and a bucket")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	return &Mirror{
		cfg:        cfg,
		client:     client,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

// MirrorVideo streams the video at sourceURL into the bucket under
// projects/<projectID>/final.mp4 and returns a presigned URL for it.
func (m *Mirror) MirrorVideo(ctx context.Context, projectID, sourceURL string) (string, error) {
	if m == nil {
		return "", errors.New("storage mirror is disabled")
	}
	if strings.TrimSpace(projectID) == "" {
		return "", errors.New("project id required")
	}
	if strings.TrimSpace(sourceURL) == "" {
		return "", errors.New("source url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download render: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download render: http %d", resp.StatusCode)
	}

	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("projects/%s/final.mp4", projectID)
	if _, err := m.client.PutObject(ctx, m.cfg.Bucket, objectName, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: "video/mp4",
	}); err != nil {
		return "", fmt.Errorf("upload render: %w", err)
	}

	return m.presign(ctx, objectName)
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (m *Mirror) presign(ctx context.Context, objectName string) (string, error) {
	hours := m.cfg.PresignHours
	if hours <= 0 {
		hours = defaultPresignHours
	}
	presigned, err := m.client.PresignedGetObject(ctx, m.cfg.Bucket, objectName, time.Duration(hours)*time.Hour, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return presigned.String(), nil
}
