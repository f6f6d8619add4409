package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/repository"
	"context"
	"time"
)

// ReactionService 表情回应服务接口定义
type ReactionService interface {
	Toggle(ctx context.Context, callerID uint64, messageID string, emoji string) (*dto.ToggleReactionDTO, error)
}

type reactionServiceImpl struct {
	convRepo     repository.ConversationRepo
	messageRepo  mongo.MessageRepo
	reactionRepo mongo.ReactionRepo
}

func NewReactionService(convRepo repository.ConversationRepo, messageRepo mongo.MessageRepo, reactionRepo mongo.ReactionRepo) ReactionService {
	return &reactionServiceImpl{
		convRepo:     convRepo,
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
	}
}

// Toggle 表情回应开关：同一 (消息, 用户, 表情) 三元组存在则删、不存在则增
func (s *reactionServiceImpl) Toggle(ctx context.Context, callerID uint64, messageID string, emoji string) (*dto.ToggleReactionDTO, error) {
	if !emojiAllowed(emoji) {
		return nil, ErrEmojiNotAllowed
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	membership, err := s.convRepo.GetMembership(ctx, msg.ConversationID, callerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrForbidden
	}

	existing, err := s.reactionRepo.Find(ctx, messageID, callerID, emoji)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.reactionRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &dto.ToggleReactionDTO{Toggled: "off"}, nil
	}

	err = s.reactionRepo.Insert(ctx, &mongo.Reaction{
		MessageID: messageID,
		UserID:    callerID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.ToggleReactionDTO{Toggled: "on"}, nil
}

func emojiAllowed(emoji string) bool {
	for _, e := range consts.AllowedReactions {
		if emoji == e {
			return true
		}
	}
	return false
}
