package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SignalHandler struct {
	userService   service.UserService
	signalService service.SignalService
}

func NewSignalHandler(userService service.UserService, signalService service.SignalService) *SignalHandler {
	return &SignalHandler{userService: userService, signalService: signalService}
}

// Heartbeat 在线心跳，未登录时返回 ok:false 而非报错
func (s *SignalHandler) Heartbeat(c *gin.Context) {
	var req dto.HeartbeatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, &dto.OkDTO{Ok: false})
		return
	}

	if err := s.signalService.Heartbeat(c, caller.ID, req.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.OkDTO{Ok: true})
}

// EndSession 主动下线
func (s *SignalHandler) EndSession(c *gin.Context) {
	var req dto.HeartbeatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, &dto.OkDTO{Ok: false})
		return
	}

	if err := s.signalService.EndSession(c, caller.ID, req.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.OkDTO{Ok: true})
}

// Online 全局在线用户集合
func (s *SignalHandler) Online(c *gin.Context) {
	res, err := s.signalService.OnlineUserIds(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Ping 上报输入中状态，未登录时返回 ok:false
func (s *SignalHandler) Ping(c *gin.Context) {
	var req dto.TypingPingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, &dto.OkDTO{Ok: false})
		return
	}

	if err := s.signalService.Ping(c, caller.ID, req.ConversationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.OkDTO{Ok: true})
}

// Typing 窗口内输入中的其他成员
func (s *SignalHandler) Typing(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Query("conversation_id"), 10, 64)
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
		response.Success(c, []*dto.TypingUserDTO{})
		return
	}

	res, err := s.signalService.ListActive(c, caller.ID, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
