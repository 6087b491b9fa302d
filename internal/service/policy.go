package service

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/repository"
	"fmt"
	"slices"
	"strings"
)

// Viewer 当前请求的身份，UserID 为 0 表示匿名
type Viewer struct {
	UserID  uint64
	IsAdmin bool
}

// Anonymous 匿名访客
func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) IsAnonymous() bool {
	return v.UserID == 0
}

// IsAuthor 匿名访客永远不是作者
func (v Viewer) IsAuthor(authorID uint64) bool {
	return v.UserID != 0 && v.UserID == authorID
}

// 可更新的帖子字段
const (
	FieldTitle      = "title"
	FieldContent    = "content"
	FieldCategories = "categories"
	FieldStatus     = "status"
)

var (
	authorFields = []string{FieldTitle, FieldContent, FieldCategories}
	adminFields  = []string{FieldStatus, FieldCategories}
)

// CanView 管理员、内容为 active、或本人发布时可见
func CanView(v Viewer, authorID uint64, status string) bool {
	return v.IsAdmin || status == consts.StatusActive || v.IsAuthor(authorID)
}

// ListVisibility 列表查询时的可见范围
func ListVisibility(v Viewer) repository.Visibility {
	if v.IsAdmin {
		return repository.Visibility{All: true}
	}
	return repository.Visibility{OwnerID: v.UserID}
}

// ValidStatus 状态只能是 active / inactive
func ValidStatus(status string) bool {
	return status == consts.StatusActive || status == consts.StatusInactive
}

// AuthorizePostUpdate 按作者/管理员身份检查可修改字段，任何越权字段都会导致整个请求被拒绝
func AuthorizePostUpdate(v Viewer, authorID uint64, fields []string) error {
	if v.IsAnonymous() {
		return ErrUnauthenticated
	}
	isAuthor := v.IsAuthor(authorID)
	if !isAuthor && !v.IsAdmin {
		return ErrForbidden
	}

	var allowed []string
	switch {
	case isAuthor && v.IsAdmin:
		return nil
	case isAuthor:
		allowed = authorFields
	default:
		allowed = adminFields
	}

	var forbidden []string
	for _, f := range fields {
		if !slices.Contains(allowed, f) {
			forbidden = append(forbidden, f)
		}
	}
	return forbiddenFieldsError(forbidden)
}

// AuthorizeCommentUpdate 通用更新入口只允许修改 status，且只有作者或管理员可以修改
func AuthorizeCommentUpdate(v Viewer, authorID uint64, fields []string) error {
	if v.IsAnonymous() {
		return ErrUnauthenticated
	}
	if err := CheckCommentFields(fields); err != nil {
		return err
	}
	if !v.IsAuthor(authorID) && !v.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// CheckCommentFields 评论只允许修改 status
func CheckCommentFields(fields []string) error {
	var forbidden []string
	for _, f := range fields {
		if f != FieldStatus {
			forbidden = append(forbidden, f)
		}
	}
	return forbiddenFieldsError(forbidden)
}

// AuthorizeLock 帖子与评论的锁定都以帖子作者为准
func AuthorizeLock(v Viewer, postAuthorID uint64) error {
	if v.IsAnonymous() {
		return ErrUnauthenticated
	}
	if !v.IsAuthor(postAuthorID) && !v.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// AuthorizeDelete 删除只允许作者本人
func AuthorizeDelete(v Viewer, authorID uint64) error {
	if v.IsAnonymous() {
		return ErrUnauthenticated
	}
	if !v.IsAuthor(authorID) {
		return ErrForbidden
	}
	return nil
}

func forbiddenFieldsError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	sorted := slices.Clone(fields)
	slices.Sort(sorted)
	return fmt.Errorf("%w: %s", ErrForbiddenField, strings.Join(slices.Compact(sorted), ", "))
}
