package api

import (
	"Agora/internal/api/middleware"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, logIndex string, corsOrigins []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/api/ping"))
	r.Use(middleware.CORSMiddleware(corsOrigins))
	logger.SetupGin(r, logIndex)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.PostHandler.ListPosts)
				authOptGroup.GET("/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/:post_id/categories", group.PostHandler.GetPostCategories)
				authOptGroup.GET("/:post_id/comments", group.CommentHandler.ListComments)
				authOptGroup.GET("/:post_id/comments/:comment_id/replies", group.CommentHandler.ListReplies)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PATCH("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				authGroup.POST("/:post_id/lock", group.PostHandler.LockPost)
				authGroup.DELETE("/:post_id/lock", group.PostHandler.UnlockPost)

				authGroup.POST("/:post_id/comments", group.CommentHandler.CreateComment)
				authGroup.POST("/:post_id/comments/:comment_id/lock", group.CommentHandler.LockComment)
				authGroup.DELETE("/:post_id/comments/:comment_id/lock", group.CommentHandler.UnlockComment)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		{
			commentGroup.GET("/:comment_id", middleware.AuthOptionalMiddleware(), group.CommentHandler.GetComment)

			authGroup := commentGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.PATCH("/:comment_id", group.CommentHandler.UpdateComment)
				authGroup.DELETE("/:comment_id", group.CommentHandler.DeleteComment)
			}
		}

		reactionGroup := apiGroup.Group("/reactions")
		{
			reactionGroup.GET("/:entity_type/:entity_id", middleware.AuthOptionalMiddleware(), group.ReactionHandler.GetReactions)

			authGroup := reactionGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/:entity_type/:entity_id", group.ReactionHandler.React)
				authGroup.DELETE("/:entity_type/:entity_id", group.ReactionHandler.RemoveReaction)
			}
		}

		favoriteGroup := apiGroup.Group("/favorites")
		favoriteGroup.Use(middleware.AuthMiddleware())
		{
			favoriteGroup.GET("", group.FavoriteHandler.ListFavorites)
			favoriteGroup.POST("/:post_id", group.FavoriteHandler.AddFavorite)
			favoriteGroup.DELETE("/:post_id", group.FavoriteHandler.RemoveFavorite)
		}

		categoryGroup := apiGroup.Group("/categories")
		{
			categoryGroup.GET("", group.CategoryHandler.ListCategories)
			categoryGroup.GET("/:category_id", group.CategoryHandler.GetCategory)
			categoryGroup.GET("/:category_id/posts", middleware.AuthOptionalMiddleware(), group.CategoryHandler.ListCategoryPosts)

			// 需要登录 & 拥有 admin 角色
			adminGroup := categoryGroup.Group("")
			adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin))
			{
				adminGroup.POST("", group.CategoryHandler.CreateCategory)
				adminGroup.PATCH("/:category_id", group.CategoryHandler.UpdateCategory)
				adminGroup.DELETE("/:category_id", group.CategoryHandler.DeleteCategory)
			}
		}
	}

	return r
}
