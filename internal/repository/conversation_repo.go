package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一索引冲突，direct_key 并发创建时触发
var ErrDuplicateKey = errors.New("duplicate key")

type ConversationRepo interface {
	CreateConversation(ctx context.Context, conv *model.Conversation, members []*model.ConversationMember) error
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	GetConversationByDirectKey(ctx context.Context, key string) (*model.Conversation, error)
	GetMembership(ctx context.Context, convID uint64, userID uint64) (*model.ConversationMember, error)
	AddMember(ctx context.Context, member *model.ConversationMember) error
	GetUserMemberships(ctx context.Context, userID uint64) ([]*model.ConversationMember, error)
	GetMembers(ctx context.Context, convID uint64) ([]*model.ConversationMember, error)
	MarkRead(ctx context.Context, convID uint64, userID uint64, at time.Time) error
	StampLastMessage(ctx context.Context, convID uint64, senderID uint64, snippet string, at time.Time) error
	UpdateSnippet(ctx context.Context, convID uint64, snippet string) error
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// CreateConversation 开启事务创建会话及初始成员
func (s *conversationRepoImpl) CreateConversation(ctx context.Context, conv *model.Conversation, members []*model.ConversationMember) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, m := range members {
			m.ConversationID = conv.ID
			m.JoinedAt = time.Now()
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}

// GetConversation 根据会话 ID 获取会话，未命中返回 nil
func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, convID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetConversationByDirectKey 根据单聊唯一键获取会话，未命中返回 nil
func (s *conversationRepoImpl) GetConversationByDirectKey(ctx context.Context, key string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("direct_key = ?", key).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetMembership 获取用户在会话中的成员行，未命中返回 nil (即无权限)
func (s *conversationRepoImpl) GetMembership(ctx context.Context, convID uint64, userID uint64) (*model.ConversationMember, error) {
	var member model.ConversationMember
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (s *conversationRepoImpl) AddMember(ctx context.Context, member *model.ConversationMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(member).Error
}

// GetUserMemberships 联表拉取用户全部成员行及所属会话
func (s *conversationRepoImpl) GetUserMemberships(ctx context.Context, userID uint64) ([]*model.ConversationMember, error) {
	var members []*model.ConversationMember
	err := s.db.WithContext(ctx).
		Joins("Conversation").
		Where("conversation_members.user_id = ?", userID).
		Find(&members).Error
	return members, err
}

func (s *conversationRepoImpl) GetMembers(ctx context.Context, convID uint64) ([]*model.ConversationMember, error) {
	var members []*model.ConversationMember
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Find(&members).Error
	return members, err
}

// MarkRead 清零未读并盖上已读时间戳
func (s *conversationRepoImpl) MarkRead(ctx context.Context, convID uint64, userID uint64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Updates(map[string]interface{}{
			"unread_count": 0,
			"last_read_at": at,
		}).Error
}

// StampLastMessage 消息写路径的会话侧副作用：刷新摘要并为其他成员累加未读，单事务完成
func (s *conversationRepoImpl) StampLastMessage(ctx context.Context, convID uint64, senderID uint64, snippet string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Conversation{}).Where("id = ?", convID).
			Updates(map[string]interface{}{
				"last_message_at":      at,
				"last_message_snippet": snippet,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.ConversationMember{}).
			Where("conversation_id = ? AND user_id <> ?", convID, senderID).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error
	})
}

func (s *conversationRepoImpl) UpdateSnippet(ctx context.Context, convID uint64, snippet string) error {
	return s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", convID).
		Update("last_message_snippet", snippet).Error
}
