package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUnauthenticated      = errors.New("未认证或凭证已失效")
	ErrForbidden            = errors.New("权限不足")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrMessageNotFound      = errors.New("消息不存在")
	ErrSelfConversation     = errors.New("不能和自己建立单聊")
	ErrEmptyMessage         = errors.New("消息内容不能为空")
	ErrGroupNameEmpty       = errors.New("群聊名称不能为空")
	ErrFileSizeInvalid      = errors.New("文件大小超出限制")
	ErrFileNotSupported     = errors.New("不支持的文件类型")
	ErrVoiceDuration        = errors.New("语音时长超出限制")
	ErrEmojiNotAllowed      = errors.New("不支持的表情回应")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUnauthenticated:      Unauthorized,
	ErrForbidden:            Forbidden,
	ErrUserNotFound:         NotFound,
	ErrConversationNotFound: NotFound,
	ErrMessageNotFound:      NotFound,
	ErrSelfConversation:     BadRequest,
	ErrEmptyMessage:         BadRequest,
	ErrGroupNameEmpty:       BadRequest,
	ErrFileSizeInvalid:      BadRequest,
	ErrFileNotSupported:     BadRequest,
	ErrVoiceDuration:        BadRequest,
	ErrEmojiNotAllowed:      BadRequest,
	UnExpectedError:         InternalServerError,
}
