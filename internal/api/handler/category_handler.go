package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categorySvc service.CategoryService
}

func NewCategoryHandler(categorySvc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categorySvc: categorySvc,
	}
}

func (s *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

func (s *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, err := parseIDParam(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	category, err := s.categorySvc.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

func (s *CategoryHandler) ListCategoryPosts(c *gin.Context) {
	categoryID, err := parseIDParam(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	query, err := bindPostListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.categorySvc.ListPosts(c.Request.Context(), viewerFromContext(c), categoryID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryCreateDTO
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	category, err := s.categorySvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

func (s *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := parseIDParam(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CategoryUpdateDTO
	if err = bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	category, err := s.categorySvc.Update(c.Request.Context(), categoryID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

func (s *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := parseIDParam(c, "category_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.categorySvc.Delete(c.Request.Context(), categoryID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
