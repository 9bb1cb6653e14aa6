// Package storage 是对象存储协作方的本地实现：桶 = 根目录下的子目录,
// 公开 URL = 配置的前缀 + 对象键。接口面向 ensure/upload/public-url,
// 换成真正的云存储 SDK 时只需替换实现。
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrBucketUnavailable = errors.New("bucket unavailable")
	ErrObjectTooLarge    = errors.New("object exceeds bucket size limit")
)

// Store 对象存储协作方
type Store interface {
	// EnsureBucket 桶不存在时按公开可读创建，带统一的大小上限
	EnsureBucket(name string, sizeLimit int64) error
	// Upload 写对象，data 超过桶上限时拒绝
	Upload(bucket, key string, data []byte) error
	// PublicURL 对象的公开访问地址
	PublicURL(bucket, key string) string
}

// FSStore 本地文件系统实现
type FSStore struct {
	root    string
	baseURL string
	limits  map[string]int64
}

func NewFSStore(root, baseURL string) *FSStore {
	return &FSStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		limits:  make(map[string]int64),
	}
}

func (s *FSStore) EnsureBucket(name string, sizeLimit int64) error {
	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrBucketUnavailable, err)
	}
	s.limits[name] = sizeLimit
	return nil
}

func (s *FSStore) Upload(bucket, key string, data []byte) error {
	if limit, ok := s.limits[bucket]; ok && limit > 0 && int64(len(data)) > limit {
		return ErrObjectTooLarge
	}
	path := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *FSStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + bucket + "/" + key
}
