package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type CategoryService interface {
	List(ctx context.Context) ([]*dto.CategoryDTO, error)
	GetByID(ctx context.Context, id uint64) (*dto.CategoryDTO, error)
	Create(ctx context.Context, req *dto.CategoryCreateDTO) (*dto.CategoryDTO, error)
	Update(ctx context.Context, id uint64, req *dto.CategoryUpdateDTO) (*dto.CategoryDTO, error)
	Delete(ctx context.Context, id uint64) error
	ListPosts(ctx context.Context, viewer Viewer, id uint64, query *dto.PostListQuery) (*dto.PageDTO[*dto.PostDTO], error)
}

type categoryServiceImpl struct {
	categoryRepo repository.CategoryRepo
	postService  PostService
}

func NewCategoryService(categoryRepo repository.CategoryRepo, postService PostService) CategoryService {
	return &categoryServiceImpl{
		categoryRepo: categoryRepo,
		postService:  postService,
	}
}

func (s *categoryServiceImpl) List(ctx context.Context) ([]*dto.CategoryDTO, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		log.ErrorContext(ctx, "list categories error", "err", err)
		return nil, UnExpectedError
	}
	categoryDTOs, err := toCategoryDTOs(categories)
	if err != nil {
		log.ErrorContext(ctx, "copy categories error", "err", err)
		return nil, UnExpectedError
	}
	return categoryDTOs, nil
}

func (s *categoryServiceImpl) GetByID(ctx context.Context, id uint64) (*dto.CategoryDTO, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryDTO(category)
}

func (s *categoryServiceImpl) Create(ctx context.Context, req *dto.CategoryCreateDTO) (*dto.CategoryDTO, error) {
	title := strings.TrimSpace(req.Title)
	if util.IsBlank(title) {
		return nil, ErrTitleEmpty
	}
	category := &model.Category{Title: title, Description: req.Description}
	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		if isDuplicateError(err) {
			return nil, ErrCategoryTitleExists
		}
		log.ErrorContext(ctx, "create category error", "err", err)
		return nil, UnExpectedError
	}
	return toCategoryDTO(category)
}

func (s *categoryServiceImpl) Update(ctx context.Context, id uint64, req *dto.CategoryUpdateDTO) (*dto.CategoryDTO, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if util.IsBlank(title) {
			return nil, ErrTitleEmpty
		}
		updates["title"] = title
		category.Title = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		category.Description = *req.Description
	}
	if err = s.categoryRepo.UpdateCategory(ctx, id, updates); err != nil {
		if isDuplicateError(err) {
			return nil, ErrCategoryTitleExists
		}
		log.ErrorContext(ctx, "update category error", "err", err)
		return nil, UnExpectedError
	}
	return toCategoryDTO(category)
}

// Delete 同时删除帖子与分类的关联，帖子本身保留
func (s *categoryServiceImpl) Delete(ctx context.Context, id uint64) error {
	if _, err := s.getCategory(ctx, id); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		log.ErrorContext(ctx, "delete category error", "err", err)
		return UnExpectedError
	}
	return nil
}

// ListPosts 分类下的帖子，复用帖子列表的可见性与排序规则
func (s *categoryServiceImpl) ListPosts(ctx context.Context, viewer Viewer, id uint64, query *dto.PostListQuery) (*dto.PageDTO[*dto.PostDTO], error) {
	if _, err := s.getCategory(ctx, id); err != nil {
		return nil, err
	}
	q := *query
	q.CategoryIDs = []uint64{id}
	return s.postService.List(ctx, viewer, &q)
}

func (s *categoryServiceImpl) getCategory(ctx context.Context, id uint64) (*model.Category, error) {
	category, err := s.categoryRepo.GetCategory(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "get category error", "err", err)
		return nil, UnExpectedError
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func toCategoryDTO(category *model.Category) (*dto.CategoryDTO, error) {
	categoryDTO := &dto.CategoryDTO{}
	if err := copier.Copy(categoryDTO, category); err != nil {
		return nil, UnExpectedError
	}
	return categoryDTO, nil
}
