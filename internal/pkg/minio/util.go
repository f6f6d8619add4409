package minio

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	// UploadURLExpiry 上传直传链接有效期
	UploadURLExpiry = 15 * time.Minute
	// DownloadURLExpiry 附件读取链接有效期
	DownloadURLExpiry = 1 * time.Hour
)

// PresignedUploadURL 生成对象的短时效上传链接，客户端凭此直传字节
func PresignedUploadURL(ctx context.Context, objectName string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	u, err := Client.PresignedPutObject(ctx, ChatBucket, objectName, UploadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return u.String(), nil
}

// PresignedGetURL 生成对象的短时效读取链接
func PresignedGetURL(ctx context.Context, objectName string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	u, err := Client.PresignedGetObject(ctx, ChatBucket, objectName, DownloadURLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return u.String(), nil
}
