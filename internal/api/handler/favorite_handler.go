package handler

import (
	"Agora/internal/pkg/response"
	"Agora/internal/service"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favoriteSvc service.FavoriteService
}

func NewFavoriteHandler(favoriteSvc service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteSvc: favoriteSvc,
	}
}

func (s *FavoriteHandler) ListFavorites(c *gin.Context) {
	var page pageQuery
	if err := bindQuery(c, &page); err != nil {
		response.Error(c, err)
		return
	}

	favorites, err := s.favoriteSvc.ListMine(c.Request.Context(), viewerFromContext(c), page.Page, page.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, favorites)
}

func (s *FavoriteHandler) AddFavorite(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.favoriteSvc.Add(c.Request.Context(), viewerFromContext(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	postID, err := parseIDParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.favoriteSvc.Remove(c.Request.Context(), viewerFromContext(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
