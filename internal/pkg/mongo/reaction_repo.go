package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReactionRepo interface {
	Find(ctx context.Context, messageID string, userID uint64, emoji string) (*Reaction, error)
	Insert(ctx context.Context, r *Reaction) error
	Delete(ctx context.Context, id string) error
	ListByMessageIDs(ctx context.Context, messageIDs []string) ([]*Reaction, error)
}

type reactionRepoImpl struct {
	col *mongo.Collection
}

func NewReactionRepo(db *mongo.Database) ReactionRepo {
	return &reactionRepoImpl{
		col: db.Collection("message_reactions"),
	}
}

// Find 按三元组精确查询，未命中返回 nil
func (s *reactionRepoImpl) Find(ctx context.Context, messageID string, userID uint64, emoji string) (*Reaction, error) {
	filter := bson.M{
		"message_id": messageID,
		"user_id":    userID,
		"emoji":      emoji,
	}
	var r Reaction
	err := s.col.FindOne(ctx, filter).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *reactionRepoImpl) Insert(ctx context.Context, r *Reaction) error {
	if r.ID == "" {
		r.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.col.InsertOne(ctx, r)
	return err
}

func (s *reactionRepoImpl) Delete(ctx context.Context, id string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByMessageIDs 批量拉取多条消息的全部回应，供列表聚合
func (s *reactionRepoImpl) ListByMessageIDs(ctx context.Context, messageIDs []string) ([]*Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"message_id": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var reactions []*Reaction
	if err := cursor.All(ctx, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}
