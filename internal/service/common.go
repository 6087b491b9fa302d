package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/util"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// isDuplicateError 唯一键冲突
func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func toPostDTO(post *model.Post) (*dto.PostDTO, error) {
	postDTO := &dto.PostDTO{}
	if err := copier.Copy(postDTO, post); err != nil {
		return nil, err
	}
	postDTO.CategoryIDs = []uint64{}
	return postDTO, nil
}

func toCommentDTO(comment *model.Comment) (*dto.CommentDTO, error) {
	commentDTO := &dto.CommentDTO{}
	if err := copier.Copy(commentDTO, comment); err != nil {
		return nil, err
	}
	return commentDTO, nil
}

func toCategoryDTOs(categories []*model.Category) ([]*dto.CategoryDTO, error) {
	categoryDTOs := make([]*dto.CategoryDTO, 0, len(categories))
	if err := copier.Copy(&categoryDTOs, &categories); err != nil {
		return nil, err
	}
	return categoryDTOs, nil
}

func newPage[T any](page, pageSize int, total int64, items []T) *dto.PageDTO[T] {
	if items == nil {
		items = []T{}
	}
	return &dto.PageDTO[T]{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: util.TotalPages(total, pageSize),
		Items:      items,
	}
}

// normalizeEntityType 实体类型不区分大小写
func normalizeEntityType(entityType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case model.EntityTypePost:
		return model.EntityTypePost, nil
	case model.EntityTypeComment:
		return model.EntityTypeComment, nil
	}
	return "", ErrEntityTypeInvalid
}

func normalizeReactionType(reactionType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(reactionType)) {
	case model.ReactionLike:
		return model.ReactionLike, nil
	case model.ReactionDislike:
		return model.ReactionDislike, nil
	}
	return "", ErrReactionTypeInvalid
}
