package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	userService service.UserService
	convService service.ConversationService
}

func NewConversationHandler(userService service.UserService, convService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{userService: userService, convService: convService}
}

// CreateDirect 获取或创建单聊
func (s *ConversationHandler) CreateDirect(c *gin.Context) {
	var req dto.CreateDirectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	convID, err := s.convService.GetOrCreateDirect(c, caller.ID, req.OtherUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ConversationIDDTO{ConversationID: convID})
}

// CreateGroup 创建群聊
func (s *ConversationHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	convID, err := s.convService.CreateGroup(c, caller.ID, req.Name, req.MemberIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ConversationIDDTO{ConversationID: convID})
}

// ListMine 当前用户的会话列表
func (s *ConversationHandler) ListMine(c *gin.Context) {
	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, []*dto.ConversationListItemDTO{})
		return
	}

	res, err := s.convService.ListMine(c, caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Get 会话详情
func (s *ConversationHandler) Get(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, nil)
		return
	}

	res, err := s.convService.Get(c, caller.ID, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkRead 清零未读
func (s *ConversationHandler) MarkRead(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := s.convService.MarkRead(c, caller.ID, convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
