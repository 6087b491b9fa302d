package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type FavoriteService interface {
	Add(ctx context.Context, viewer Viewer, postID uint64) error
	Remove(ctx context.Context, viewer Viewer, postID uint64) error
	ExistsMany(ctx context.Context, viewer Viewer, postIDs []uint64) (map[uint64]bool, error)
	ListMine(ctx context.Context, viewer Viewer, page, pageSize int) (*dto.PageDTO[*dto.FavoritePostDTO], error)
}

type favoriteServiceImpl struct {
	favoriteRepo repository.FavoriteRepo
	postRepo     repository.PostRepo
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepo, postRepo repository.PostRepo) FavoriteService {
	return &favoriteServiceImpl{
		favoriteRepo: favoriteRepo,
		postRepo:     postRepo,
	}
}

// Add 收藏帖子，并发重复收藏由主键兜底
func (s *favoriteServiceImpl) Add(ctx context.Context, viewer Viewer, postID uint64) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "get post error", "err", err)
		return UnExpectedError
	}
	if post == nil || !CanView(viewer, post.AuthorID, post.Status) {
		return ErrPostNotFound
	}

	exists, err := s.favoriteRepo.CheckFavoriteExists(ctx, viewer.UserID, postID)
	if err != nil {
		log.ErrorContext(ctx, "check favorite error", "err", err)
		return UnExpectedError
	}
	if exists {
		return ErrFavoriteExists
	}

	favorite := &model.Favorite{UserID: viewer.UserID, PostID: postID, CreatedAt: time.Now()}
	if err = s.favoriteRepo.CreateFavorite(ctx, favorite); err != nil {
		if isDuplicateError(err) {
			return ErrFavoriteExists
		}
		log.ErrorContext(ctx, "create favorite error", "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *favoriteServiceImpl) Remove(ctx context.Context, viewer Viewer, postID uint64) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	removed, err := s.favoriteRepo.DeleteFavorite(ctx, viewer.UserID, postID)
	if err != nil {
		log.ErrorContext(ctx, "delete favorite error", "err", err)
		return UnExpectedError
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	return nil
}

// ExistsMany 匿名用户全部返回 false
func (s *favoriteServiceImpl) ExistsMany(ctx context.Context, viewer Viewer, postIDs []uint64) (map[uint64]bool, error) {
	result, err := s.favoriteRepo.GetFavoritedPostIDs(ctx, viewer.UserID, util.UniqueUint64(postIDs))
	if err != nil {
		log.ErrorContext(ctx, "get favorited posts error", "err", err)
		return nil, UnExpectedError
	}
	return result, nil
}

func (s *favoriteServiceImpl) ListMine(ctx context.Context, viewer Viewer, page, pageSize int) (*dto.PageDTO[*dto.FavoritePostDTO], error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	page, pageSize, offset := util.NormalizePage(page, pageSize)

	rows, total, err := s.favoriteRepo.ListByUser(ctx, viewer.UserID, pageSize, offset)
	if err != nil {
		log.ErrorContext(ctx, "list favorites error", "err", err)
		return nil, UnExpectedError
	}
	items := make([]*dto.FavoritePostDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, &dto.FavoritePostDTO{
			ID:          row.ID,
			AuthorID:    row.AuthorID,
			Title:       row.Title,
			Content:     row.Content,
			Status:      row.Status,
			PublishDate: row.PublishDate,
			FavoritedAt: row.FavoritedAt,
		})
	}
	return newPage(page, pageSize, total, items), nil
}
