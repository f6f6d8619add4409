package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetRecent(ctx context.Context, convID uint64, limit int) ([]*Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	MarkDeleted(ctx context.Context, id string, at time.Time) error
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("messages"),
	}
}

// SaveMessage 将消息存入 MongoDB，_id 统一用 ObjectID 的十六进制字符串
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetRecent 拉取会话最近 limit 条消息，按创建时间降序 (最新的在前)
func (s *messageRepoImpl) GetRecent(ctx context.Context, convID uint64, limit int) ([]*Message, error) {
	filter := bson.M{"conversation_id": convID}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// GetByID 精确查询，未命中返回 nil 而非错误
func (s *messageRepoImpl) GetByID(ctx context.Context, id string) (*Message, error) {
	var msg Message
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// MarkDeleted 软删除：清空正文与附件载荷，打上墓碑时间戳
func (s *messageRepoImpl) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	update := bson.M{
		"$set":   bson.M{"body": "", "deleted_at": at},
		"$unset": bson.M{"file": "", "voice": ""},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
