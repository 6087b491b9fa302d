package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrTitleEmpty          = errors.New("标题不能为空")
	ErrContentEmpty        = errors.New("内容不能为空")
	ErrStatusInvalid       = errors.New("状态只能是 active 或 inactive")
	ErrEntityTypeInvalid   = errors.New("无效的实体类型")
	ErrReactionTypeInvalid = errors.New("无效的反应类型")
	ErrParentInvalid       = errors.New("父评论无效")
	ErrCategoryInvalid     = errors.New("部分分类不存在")
	ErrUnauthenticated     = errors.New("请先登录")
	ErrForbidden           = errors.New("权限不足")
	ErrForbiddenField      = errors.New("无权修改字段")
	ErrPostNotFound        = errors.New("帖子不存在")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrReactionNotFound    = errors.New("反应不存在")
	ErrFavoriteNotFound    = errors.New("未收藏该帖子")
	ErrCategoryNotFound    = errors.New("分类不存在")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrReactionExists      = errors.New("已经做出过相同的反应")
	ErrFavoriteExists      = errors.New("已收藏该帖子")
	ErrCategoryTitleExists = errors.New("分类标题已存在")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrTitleEmpty:          BadRequest,
	ErrContentEmpty:        BadRequest,
	ErrStatusInvalid:       BadRequest,
	ErrEntityTypeInvalid:   BadRequest,
	ErrReactionTypeInvalid: BadRequest,
	ErrParentInvalid:       BadRequest,
	ErrCategoryInvalid:     BadRequest,
	ErrUnauthenticated:     Unauthorized,
	ErrForbidden:           Forbidden,
	ErrForbiddenField:      Forbidden,
	ErrPostNotFound:        NotFound,
	ErrCommentNotFound:     NotFound,
	ErrReactionNotFound:    NotFound,
	ErrFavoriteNotFound:    NotFound,
	ErrCategoryNotFound:    NotFound,
	ErrUserNotFound:        NotFound,
	ErrReactionExists:      Conflict,
	ErrFavoriteExists:      Conflict,
	ErrCategoryTitleExists: Conflict,
	UnExpectedError:        InternalServerError,
}

// ErrorCode 返回错误对应的业务码，支持 %w 包装过的错误
func ErrorCode(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}
