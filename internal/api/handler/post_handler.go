package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	query, err := bindPostListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	posts, err := s.postSvc.List(c.Request.Context(), viewerFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.GetByID(c.Request.Context(), viewerFromContext(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetPostCategories(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	categories, err := s.postSvc.ListCategories(c.Request.Context(), viewerFromContext(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	var req dto.PostCreateDTO
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.Create(c.Request.Context(), viewerFromContext(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PostUpdateDTO
	if err = bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.Update(c.Request.Context(), viewerFromContext(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.Delete(c.Request.Context(), viewerFromContext(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) LockPost(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.Lock(c.Request.Context(), viewerFromContext(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) UnlockPost(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.Unlock(c.Request.Context(), viewerFromContext(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// bindPostListQuery 解析列表查询参数，categories 为逗号分隔的 id
func bindPostListQuery(c *gin.Context) (*dto.PostListQuery, error) {
	var query dto.PostListQuery
	if err := bindQuery(c, &query); err != nil {
		return nil, err
	}
	ids, err := util.ParseUint64List(query.Categories)
	if err != nil {
		return nil, service.ErrParamInvalid
	}
	query.CategoryIDs = ids
	return &query, nil
}
