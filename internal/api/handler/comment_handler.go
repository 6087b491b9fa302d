package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

func (s *CommentHandler) ListComments(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var page pageQuery
	if err = bindQuery(c, &page); err != nil {
		response.Error(c, err)
		return
	}

	comments, err := s.commentSvc.ListTopLevel(c.Request.Context(), viewerFromContext(c), postID, page.Page, page.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

func (s *CommentHandler) ListReplies(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var page pageQuery
	if err = bindQuery(c, &page); err != nil {
		response.Error(c, err)
		return
	}

	replies, err := s.commentSvc.ListReplies(c.Request.Context(), viewerFromContext(c), postID, commentID, page.Page, page.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, replies)
}

func (s *CommentHandler) GetComment(c *gin.Context) {
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.commentSvc.GetByID(c.Request.Context(), viewerFromContext(c), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) CreateComment(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CommentCreateDTO
	if err = bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.commentSvc.Add(c.Request.Context(), viewerFromContext(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// UpdateComment 请求体按原样传给服务层，以便识别并拒绝不允许修改的字段
func (s *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var fields map[string]any
	if err = bindJSON(c, &fields); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.commentSvc.UpdateStatus(c.Request.Context(), viewerFromContext(c), commentID, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.commentSvc.Delete(c.Request.Context(), viewerFromContext(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommentHandler) LockComment(c *gin.Context) {
	s.setLocked(c, true)
}

func (s *CommentHandler) UnlockComment(c *gin.Context) {
	s.setLocked(c, false)
}

func (s *CommentHandler) setLocked(c *gin.Context, locked bool) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	commentID, err := parseIDParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	viewer := viewerFromContext(c)
	if locked {
		err = s.commentSvc.Lock(c.Request.Context(), viewer, postID, commentID)
	} else {
		err = s.commentSvc.Unlock(c.Request.Context(), viewer, postID, commentID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
