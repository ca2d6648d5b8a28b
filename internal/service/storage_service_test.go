package service

import (
	"context"
	"edureach_backend/internal/config"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageService_LocalPackages(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: dir}}
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*LocalStorageProvider)
	require.True(t, ok)

	url, err := s.UploadPackage(context.Background(), "5", strings.NewReader("zip-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/offline/5.zip", url)

	data, err := os.ReadFile(filepath.Join(dir, "offline", "5.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))

	url, err = s.PackageURL(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/offline/5.zip", url)
}

func TestStorageService_UnknownTypeFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Type: "ftp", LocalPath: t.TempDir()}}
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*LocalStorageProvider)
	assert.True(t, ok)
}

func TestStorageService_MinioPresignedURL(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		Type:          "minio",
		MinioEndpoint: "localhost:9000",
		MinioAccessID: "minio",
		MinioSecret:   "minio-secret",
		MinioBucket:   "edureach",
		MinioRegion:   "us-east-1",
	}}
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*MinioStorageProvider)
	require.True(t, ok)

	// 预签名在本地计算，不访问服务端
	url, err := s.PackageURL(context.Background(), "1")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/edureach/offline/1.zip")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestStorageService_OSSSignedURL(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		Type:         "oss",
		OSSEndpoint:  "oss-cn-hangzhou.aliyuncs.com",
		OSSAccessKey: "ak",
		OSSSecretKey: "sk",
		OSSBucket:    "edureach",
	}}
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*OSSStorageProvider)
	require.True(t, ok)

	url, err := s.PackageURL(context.Background(), "2")
	require.NoError(t, err)
	assert.Contains(t, url, "edureach.oss-cn-hangzhou.aliyuncs.com")
	assert.Contains(t, url, "2.zip")
	assert.Contains(t, url, "Signature=")
}
