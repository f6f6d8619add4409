package service

import (
	"Ripple/internal/pkg/minio"
	"Ripple/internal/pkg/redis"
	"context"
)

// StorageSigner 对象存储预签名能力
type StorageSigner interface {
	UploadURL(ctx context.Context, objectName string) (string, error)
	DownloadURL(ctx context.Context, objectName string) (string, error)
}

// EventPublisher 用户个人频道的事件推送能力
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type minioSigner struct{}

func NewMinioSigner() StorageSigner {
	return &minioSigner{}
}

func (m *minioSigner) UploadURL(ctx context.Context, objectName string) (string, error) {
	return minio.PresignedUploadURL(ctx, objectName)
}

func (m *minioSigner) DownloadURL(ctx context.Context, objectName string) (string, error) {
	return minio.PresignedGetURL(ctx, objectName)
}

type redisPublisher struct{}

func NewRedisPublisher() EventPublisher {
	return &redisPublisher{}
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis.Publish(ctx, channel, payload)
}
