package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/util"
	"Ripple/internal/repository"
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

type ConversationService interface {
	GetOrCreateDirect(ctx context.Context, callerID, otherUserID uint64) (uint64, error)
	CreateGroup(ctx context.Context, callerID uint64, name string, memberIDs []uint64) (uint64, error)
	ListMine(ctx context.Context, callerID uint64) ([]*dto.ConversationListItemDTO, error)
	Get(ctx context.Context, callerID uint64, convID uint64) (*dto.ConversationDetailDTO, error)
	MarkRead(ctx context.Context, callerID uint64, convID uint64) error
}

type conversationServiceImpl struct {
	convRepo repository.ConversationRepo
	userRepo repository.UserRepo
}

func NewConversationService(convRepo repository.ConversationRepo, userRepo repository.UserRepo) ConversationService {
	return &conversationServiceImpl{
		convRepo: convRepo,
		userRepo: userRepo,
	}
}

// directKeyFor 生成单聊唯一键：升序用户 ID 对，冒号连接
func directKeyFor(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatUint(a, 10) + ":" + strconv.FormatUint(b, 10)
}

// displayTitleFor 名称为空或为 "unknown" 时回退到确定性短标识
func displayTitleFor(name string, userID uint64) string {
	candidate := strings.TrimSpace(name)
	if candidate != "" && strings.ToLower(candidate) != "unknown" {
		return candidate
	}
	return "User " + util.ShortID(strconv.FormatUint(userID, 10))
}

// GetOrCreateDirect 获取或创建单聊。重复创建由 direct_key 唯一索引兜底，
// 已存在的会话只做成员行幂等补齐
func (s *conversationServiceImpl) GetOrCreateDirect(ctx context.Context, callerID, otherUserID uint64) (uint64, error) {
	if callerID == otherUserID {
		return 0, ErrSelfConversation
	}

	other, err := s.userRepo.GetUserById(ctx, otherUserID)
	if err != nil {
		return 0, err
	}
	if other == nil {
		return 0, ErrUserNotFound
	}

	key := directKeyFor(callerID, otherUserID)

	existing, err := s.convRepo.GetConversationByDirectKey(ctx, key)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		membership, err := s.convRepo.GetMembership(ctx, existing.ID, callerID)
		if err != nil {
			return 0, err
		}
		if membership == nil {
			err = s.convRepo.AddMember(ctx, &model.ConversationMember{
				ConversationID: existing.ID,
				UserID:         callerID,
				Role:           consts.RoleMember,
			})
			if err != nil {
				return 0, err
			}
		}
		return existing.ID, nil
	}

	newConv := &model.Conversation{
		Type:      consts.ConvTypeDirect,
		DirectKey: &key,
		CreatedBy: callerID,
	}
	members := []*model.ConversationMember{
		{UserID: callerID, Role: consts.RoleMember},
		{UserID: otherUserID, Role: consts.RoleMember},
	}

	err = s.convRepo.CreateConversation(ctx, newConv, members)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// 并发创建被唯一索引拦下，回读胜出方的会话
		winner, gerr := s.convRepo.GetConversationByDirectKey(ctx, key)
		if gerr != nil {
			return 0, gerr
		}
		if winner != nil {
			return winner.ID, nil
		}
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	return newConv.ID, nil
}

// CreateGroup 创建群聊：成员集合去重且始终包含发起人，发起人为 admin
func (s *conversationServiceImpl) CreateGroup(ctx context.Context, callerID uint64, name string, memberIDs []uint64) (uint64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, ErrGroupNameEmpty
	}

	memberSet := map[uint64]struct{}{callerID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}

	members := make([]*model.ConversationMember, 0, len(memberSet))
	for id := range memberSet {
		role := consts.RoleMember
		if id == callerID {
			role = consts.RoleAdmin
		}
		members = append(members, &model.ConversationMember{UserID: id, Role: role})
	}

	newConv := &model.Conversation{
		Type:      consts.ConvTypeGroup,
		Name:      &trimmed,
		CreatedBy: callerID,
	}

	if err := s.convRepo.CreateConversation(ctx, newConv, members); err != nil {
		return 0, err
	}
	return newConv.ID, nil
}

// ListMine 会话列表投影，按最后消息时间降序，无消息的会话视作最旧
func (s *conversationServiceImpl) ListMine(ctx context.Context, callerID uint64) ([]*dto.ConversationListItemDTO, error) {
	memberships, err := s.convRepo.GetUserMemberships(ctx, callerID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationListItemDTO, 0, len(memberships))
	for _, m := range memberships {
		conv := m.Conversation
		if conv.ID == 0 {
			continue
		}

		members, err := s.convRepo.GetMembers(ctx, conv.ID)
		if err != nil {
			return nil, err
		}

		item := &dto.ConversationListItemDTO{
			ConversationID:     conv.ID,
			Type:               conv.Type,
			MemberCount:        len(members),
			LastMessageAt:      conv.LastMessageAt,
			LastMessageSnippet: conv.LastMessageSnippet,
			UnreadCount:        m.UnreadCount,
		}

		if conv.Type == consts.ConvTypeGroup {
			title := "Group"
			if conv.Name != nil && strings.TrimSpace(*conv.Name) != "" {
				title = *conv.Name
			}
			item.Title = title
			item.AvatarColor = util.ColorFor("conv:" + strconv.FormatUint(conv.ID, 10))
		} else {
			item.Title = "Direct"
			for _, member := range members {
				if member.UserID == callerID {
					continue
				}
				otherID := member.UserID
				item.DirectOtherUserID = &otherID
				item.AvatarColor = util.ColorFor(strconv.FormatUint(otherID, 10))

				other, err := s.userRepo.GetUserById(ctx, otherID)
				if err != nil {
					return nil, err
				}
				if other != nil {
					item.Title = displayTitleFor(other.Name, other.ID)
					item.AvatarURL = other.AvatarURL
				} else {
					item.Title = displayTitleFor("", otherID)
				}
				break
			}
		}

		res = append(res, item)
	}

	sort.SliceStable(res, func(i, j int) bool {
		var ti, tj int64
		if res[i].LastMessageAt != nil {
			ti = res[i].LastMessageAt.UnixMilli()
		}
		if res[j].LastMessageAt != nil {
			tj = res[j].LastMessageAt.UnixMilli()
		}
		return ti > tj
	})

	return res, nil
}

// Get 会话详情：先校验成员资格，成员对应用户行缺失时静默过滤
func (s *conversationServiceImpl) Get(ctx context.Context, callerID uint64, convID uint64) (*dto.ConversationDetailDTO, error) {
	membership, err := s.convRepo.GetMembership(ctx, convID, callerID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrForbidden
	}

	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	members, err := s.convRepo.GetMembers(ctx, convID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	memberDTOs := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		memberDTOs = append(memberDTOs, &dto.UserDTO{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			AvatarURL:   u.AvatarURL,
			AvatarColor: util.ColorFor(strconv.FormatUint(u.ID, 10)),
			CreatedAt:   u.CreatedAt,
		})
	}

	return &dto.ConversationDetailDTO{
		ConversationID:     conv.ID,
		Type:               conv.Type,
		Name:               conv.Name,
		CreatedBy:          conv.CreatedBy,
		LastMessageAt:      conv.LastMessageAt,
		LastMessageSnippet: conv.LastMessageSnippet,
		Members:            memberDTOs,
	}, nil
}

// MarkRead 清零未读并盖已读时间戳
func (s *conversationServiceImpl) MarkRead(ctx context.Context, callerID uint64, convID uint64) error {
	membership, err := s.convRepo.GetMembership(ctx, convID, callerID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrForbidden
	}
	return s.convRepo.MarkRead(ctx, convID, callerID, time.Now())
}
