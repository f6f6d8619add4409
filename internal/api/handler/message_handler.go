package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	userService    service.UserService
	messageService service.MessageService
}

func NewMessageHandler(userService service.UserService, messageService service.MessageService) *MessageHandler {
	return &MessageHandler{userService: userService, messageService: messageService}
}

// List 拉取会话最近消息
func (s *MessageHandler) List(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Query("conversation_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, []*dto.MessageDTO{})
		return
	}

	res, err := s.messageService.List(c, caller.ID, convID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Send 发送文本消息
func (s *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.Send(c, caller.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendFile 发送文件消息
func (s *MessageHandler) SendFile(c *gin.Context) {
	var req dto.SendFileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.SendFile(c, caller.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendVoice 发送语音消息
func (s *MessageHandler) SendVoice(c *gin.Context) {
	var req dto.SendVoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.SendVoice(c, caller.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Delete 撤回消息
func (s *MessageHandler) Delete(c *gin.Context) {
	messageID := c.Param("id")
	if messageID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := s.messageService.SoftDelete(c, caller.ID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UploadURL 申请附件直传凭证
func (s *MessageHandler) UploadURL(c *gin.Context) {
	var req dto.UploadURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.messageService.GenerateUploadURL(c, caller.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
