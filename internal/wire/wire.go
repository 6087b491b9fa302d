package wire

import (
	"Agora/internal/api"
	"Agora/internal/api/config"
	"Agora/internal/api/handler"
	"Agora/internal/job"
	"Agora/internal/pkg/cron"
	"Agora/internal/pkg/kafka"
	"Agora/internal/repository"
	"Agora/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // kafka.enable 为 false 时为 nil
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	reactionRepo := repository.NewReactionRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	userRepo := repository.NewUserRepo(db)

	counterCache := service.NewNoopCounterCache()
	if cfg.Cache.Enable {
		counterCache = service.NewDelayedEvictCache(
			service.NewRedisCounterCache(time.Duration(cfg.Cache.TTL)*time.Second),
			time.Duration(cfg.Cache.EvictDelay)*time.Millisecond,
		)
	}

	postService := service.NewPostService(postRepo, categoryRepo, favoriteRepo, commentRepo, reactionRepo, counterCache)
	commentService := service.NewCommentService(commentRepo, postRepo, reactionRepo, counterCache)
	reactionService := service.NewReactionService(reactionRepo, postRepo, commentRepo, counterCache)
	favoriteService := service.NewFavoriteService(favoriteRepo, postRepo)
	categoryService := service.NewCategoryService(categoryRepo, postService)
	ratingService := service.NewRatingService(userRepo, reactionRepo)

	handlers := &api.HandlersGroup{
		PostHandler:     handler.NewPostHandler(postService),
		CommentHandler:  handler.NewCommentHandler(commentService),
		ReactionHandler: handler.NewReactionHandler(reactionService),
		FavoriteHandler: handler.NewFavoriteHandler(favoriteService),
		CategoryHandler: handler.NewCategoryHandler(categoryService),
	}

	router := api.SetupRouter(handlers, cfg.Logger.Index, cfg.Server.CORSOrigins)

	cronMgr := cron.NewCronManager(job.NewRatingAuditJob(ratingService), cfg.Cron.RatingAudit)

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, counterCache, postRepo, commentRepo)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
