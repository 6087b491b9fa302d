package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	reactionSvc service.ReactionService
}

func NewReactionHandler(reactionSvc service.ReactionService) *ReactionHandler {
	return &ReactionHandler{
		reactionSvc: reactionSvc,
	}
}

func (s *ReactionHandler) GetReactions(c *gin.Context) {
	entityID, err := parseIDParam(c, "entity_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := s.reactionSvc.Summary(c.Request.Context(), viewerFromContext(c), c.Param("entity_type"), entityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

func (s *ReactionHandler) React(c *gin.Context) {
	entityID, err := parseIDParam(c, "entity_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReactionReq
	if err = bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.reactionSvc.React(c.Request.Context(), viewerFromContext(c), c.Param("entity_type"), entityID, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *ReactionHandler) RemoveReaction(c *gin.Context) {
	entityID, err := parseIDParam(c, "entity_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.reactionSvc.Remove(c.Request.Context(), viewerFromContext(c), c.Param("entity_type"), entityID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
