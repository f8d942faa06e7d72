package infra

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
)

// MinIOArchive 基于 MinIO 的导出归档
type MinIOArchive struct {
	client *minio.Client
	bucket string
	prefix string
	log    *log.Helper
}

// NewMinIOArchive 创建归档存储，bucket 不存在时自动创建
func NewMinIOArchive(c *conf.ArchiveConfig, logger log.Logger) (*MinIOArchive, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.Bucket, err)
		}
	}

	return &MinIOArchive{
		client: client,
		bucket: c.Bucket,
		prefix: c.Prefix,
		log:    log.NewHelper(log.With(logger, "module", "infra/archive")),
	}, nil
}

// Put 上传对象
func (a *MinIOArchive) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	key := path.Join(a.prefix, objectName)
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	a.log.WithContext(ctx).Infof("uploaded archive %s/%s (%d bytes)", a.bucket, info.Key, info.Size)
	return nil
}
