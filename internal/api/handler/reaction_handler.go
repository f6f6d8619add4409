package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	userService     service.UserService
	reactionService service.ReactionService
}

func NewReactionHandler(userService service.UserService, reactionService service.ReactionService) *ReactionHandler {
	return &ReactionHandler{userService: userService, reactionService: reactionService}
}

// Toggle 表情回应开关
func (s *ReactionHandler) Toggle(c *gin.Context) {
	var req dto.ToggleReactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.reactionService.Toggle(c, caller.ID, req.MessageID, req.Emoji)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
