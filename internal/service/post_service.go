package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type PostService interface {
	List(ctx context.Context, viewer Viewer, query *dto.PostListQuery) (*dto.PageDTO[*dto.PostDTO], error)
	GetByID(ctx context.Context, viewer Viewer, postID uint64) (*dto.PostDTO, error)
	Create(ctx context.Context, viewer Viewer, req *dto.PostCreateDTO) (*dto.PostDTO, error)
	Update(ctx context.Context, viewer Viewer, postID uint64, req *dto.PostUpdateDTO) (*dto.PostDTO, error)
	Delete(ctx context.Context, viewer Viewer, postID uint64) error
	Lock(ctx context.Context, viewer Viewer, postID uint64) error
	Unlock(ctx context.Context, viewer Viewer, postID uint64) error
	ListCategories(ctx context.Context, viewer Viewer, postID uint64) ([]*dto.CategoryDTO, error)
}

type postServiceImpl struct {
	postRepo     repository.PostRepo
	categoryRepo repository.CategoryRepo
	favoriteRepo repository.FavoriteRepo
	counter      *engagementCounter
}

func NewPostService(postRepo repository.PostRepo, categoryRepo repository.CategoryRepo, favoriteRepo repository.FavoriteRepo,
	commentRepo repository.CommentRepo, reactionRepo repository.ReactionRepo, cache CounterCache) PostService {
	return &postServiceImpl{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		favoriteRepo: favoriteRepo,
		counter:      newEngagementCounter(cache, reactionRepo, commentRepo),
	}
}

// List 帖子列表。非管理员忽略 status 过滤，只能看到 active 帖子和自己的帖子
func (s *postServiceImpl) List(ctx context.Context, viewer Viewer, query *dto.PostListQuery) (*dto.PageDTO[*dto.PostDTO], error) {
	page, pageSize, offset := util.NormalizePage(query.Page, query.PageSize)

	q := &repository.PostQuery{
		Visibility:  ListVisibility(viewer),
		CategoryIDs: util.UniqueUint64(query.CategoryIDs),
		DateFrom:    query.DateFrom,
		DateTo:      endOfDay(query.DateTo),
		AuthorID:    query.AuthorID,
		SortBy:      consts.SortByDate,
		SortOrder:   consts.SortDesc,
		Limit:       pageSize,
		Offset:      offset,
	}
	switch strings.ToLower(query.SortBy) {
	case "", consts.SortByDate:
	case consts.SortByLikes:
		q.SortBy = consts.SortByLikes
	default:
		return nil, ErrParamInvalid
	}
	switch strings.ToLower(query.SortOrder) {
	case "", consts.SortDesc:
	case consts.SortAsc:
		q.SortOrder = consts.SortAsc
	default:
		return nil, ErrParamInvalid
	}
	if viewer.IsAdmin {
		switch query.Status {
		case "", consts.StatusAll:
			q.Status = consts.StatusAll
		case consts.StatusActive, consts.StatusInactive:
			q.Status = query.Status
		default:
			return nil, ErrStatusInvalid
		}
	}

	posts, total, err := s.postRepo.ListPosts(ctx, q)
	if err != nil {
		log.ErrorContext(ctx, "list posts error", "err", err)
		return nil, UnExpectedError
	}
	items, err := s.hydrate(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return newPage(page, pageSize, total, items), nil
}

func (s *postServiceImpl) GetByID(ctx context.Context, viewer Viewer, postID uint64) (*dto.PostDTO, error) {
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, viewer, post)
}

func (s *postServiceImpl) Create(ctx context.Context, viewer Viewer, req *dto.PostCreateDTO) (*dto.PostDTO, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(req.Title)
	if util.IsBlank(title) {
		return nil, ErrTitleEmpty
	}
	if util.IsBlank(req.Content) {
		return nil, ErrContentEmpty
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParamInvalid, err)
	}
	categoryIDs := util.UniqueUint64(req.CategoryIDs)
	if err := s.checkCategories(ctx, categoryIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.Post{
		AuthorID:    viewer.UserID,
		Title:       title,
		Content:     req.Content,
		Status:      consts.StatusActive,
		PublishDate: now,
		UpdatedAt:   now,
	}
	if err := s.postRepo.CreatePost(ctx, post, categoryIDs); err != nil {
		log.ErrorContext(ctx, "create post error", "err", err)
		return nil, UnExpectedError
	}
	return s.hydrateOne(ctx, viewer, post)
}

// Update 按字段权限矩阵更新，任何越权字段都会拒绝整个请求
func (s *postServiceImpl) Update(ctx context.Context, viewer Viewer, postID uint64, req *dto.PostUpdateDTO) (*dto.PostDTO, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	var fields []string
	updates := make(map[string]any)
	if req.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if req.Content != nil {
		fields = append(fields, FieldContent)
	}
	if req.CategoryIDs != nil {
		fields = append(fields, FieldCategories)
	}
	if req.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if len(fields) == 0 {
		return nil, ErrParamInvalid
	}
	if err = AuthorizePostUpdate(viewer, post.AuthorID, fields); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if util.IsBlank(title) {
			return nil, ErrTitleEmpty
		}
		updates["title"] = title
	}
	if req.Content != nil {
		if util.IsBlank(*req.Content) {
			return nil, ErrContentEmpty
		}
		updates["content"] = *req.Content
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, ErrStatusInvalid
		}
		updates["status"] = *req.Status
	}
	var categoryIDs *[]uint64
	if req.CategoryIDs != nil {
		ids := util.UniqueUint64(*req.CategoryIDs)
		if err = s.checkCategories(ctx, ids); err != nil {
			return nil, err
		}
		categoryIDs = &ids
	}

	if err = s.postRepo.UpdatePost(ctx, postID, updates, categoryIDs); err != nil {
		log.ErrorContext(ctx, "update post error", "err", err)
		return nil, UnExpectedError
	}
	return s.GetByID(ctx, viewer, postID)
}

// Delete 仅作者本人可删除，评论、反应、收藏与分类关联在同一事务中删除
func (s *postServiceImpl) Delete(ctx context.Context, viewer Viewer, postID uint64) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return err
	}
	if err = AuthorizeDelete(viewer, post.AuthorID); err != nil {
		return err
	}
	if err = s.postRepo.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		log.ErrorContext(ctx, "delete post error", "err", err)
		return UnExpectedError
	}
	s.counter.evictReactions(ctx, model.EntityTypePost, postID)
	s.counter.evict(ctx, CommentCountKeys(postID, nil)...)
	return nil
}

func (s *postServiceImpl) Lock(ctx context.Context, viewer Viewer, postID uint64) error {
	return s.setLocked(ctx, viewer, postID, true)
}

func (s *postServiceImpl) Unlock(ctx context.Context, viewer Viewer, postID uint64) error {
	return s.setLocked(ctx, viewer, postID, false)
}

func (s *postServiceImpl) ListCategories(ctx context.Context, viewer Viewer, postID uint64) ([]*dto.CategoryDTO, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "list post categories error", "err", err)
		return nil, UnExpectedError
	}
	categoryDTOs, err := toCategoryDTOs(categories)
	if err != nil {
		log.ErrorContext(ctx, "copy categories error", "err", err)
		return nil, UnExpectedError
	}
	return categoryDTOs, nil
}

func (s *postServiceImpl) setLocked(ctx context.Context, viewer Viewer, postID uint64, locked bool) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return err
	}
	if err = AuthorizeLock(viewer, post.AuthorID); err != nil {
		return err
	}
	if err = s.postRepo.SetLocked(ctx, postID, locked); err != nil {
		log.ErrorContext(ctx, "set post locked error", "err", err, "locked", locked)
		return UnExpectedError
	}
	return nil
}

func (s *postServiceImpl) checkCategories(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.categoryRepo.CountExisting(ctx, ids)
	if err != nil {
		log.ErrorContext(ctx, "count categories error", "err", err)
		return UnExpectedError
	}
	if count != int64(len(ids)) {
		return ErrCategoryInvalid
	}
	return nil
}

func (s *postServiceImpl) visiblePost(ctx context.Context, viewer Viewer, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "get post error", "err", err)
		return nil, UnExpectedError
	}
	if post == nil || !CanView(viewer, post.AuthorID, post.Status) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postServiceImpl) hydrateOne(ctx context.Context, viewer Viewer, post *model.Post) (*dto.PostDTO, error) {
	items, err := s.hydrate(ctx, viewer, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// hydrate 并发批量获取分类、赞踩数、评论数与收藏状态，每类数据每页只查询一次
func (s *postServiceImpl) hydrate(ctx context.Context, viewer Viewer, posts []*model.Post) ([]*dto.PostDTO, error) {
	items := make([]*dto.PostDTO, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}
	ids := make([]uint64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var (
		categories map[uint64][]uint64
		reactions  map[uint64]repository.ReactionCount
		comments   map[uint64]int64
		favorites  map[uint64]bool
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.postRepo.GetCategoryIDs(gCtx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		reactions, err = s.counter.reactionCounts(gCtx, model.EntityTypePost, ids)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.counter.commentCounts(gCtx, ids, viewer.IsAdmin)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = s.favoriteRepo.GetFavoritedPostIDs(gCtx, viewer.UserID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "hydrate posts error", "err", err)
		return nil, UnExpectedError
	}

	for _, p := range posts {
		item, err := toPostDTO(p)
		if err != nil {
			log.ErrorContext(ctx, "copy post error", "err", err)
			return nil, UnExpectedError
		}
		if cids, ok := categories[p.ID]; ok {
			item.CategoryIDs = cids
		}
		item.LikesCount = reactions[p.ID].Likes
		item.DislikesCount = reactions[p.ID].Dislikes
		item.CommentsCount = comments[p.ID]
		item.IsFavorite = favorites[p.ID]
		items = append(items, item)
	}
	return items, nil
}

// endOfDay 只精确到日期的上界扩展到当天结束
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}
