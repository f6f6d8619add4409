package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/model"
	"Ripple/internal/pkg/response"
	"Ripple/internal/pkg/util"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Sync 登录后同步身份声明到本地用户行，幂等
func (s *UserHandler) Sync(c *gin.Context) {
	user, err := s.userService.ResolveOrCreate(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserDTO(user))
}

// Me 查询当前用户，未登录或未同步时返回空
func (s *UserHandler) Me(c *gin.Context) {
	user, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if user == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, toUserDTO(user))
}

// Discovery 搜索可发起会话的其他用户
func (s *UserHandler) Discovery(c *gin.Context) {
	var req dto.DiscoveryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	caller, err := s.userService.Lookup(c, claimsFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller == nil {
		response.Success(c, []*dto.UserDTO{})
		return
	}

	res, err := s.userService.ListForDiscovery(c, caller.ID, req.Query, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func toUserDTO(user *model.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AvatarURL:   user.AvatarURL,
		AvatarColor: util.ColorFor(strconv.FormatUint(user.ID, 10)),
		CreatedAt:   user.CreatedAt,
	}
}
