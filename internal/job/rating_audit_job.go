package job

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/redis"
	"Agora/internal/pkg/util"
	"Agora/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/google/uuid"
)

// RatingAuditJob 巡检被标记的作者，比对存储评分与反应账本，只记录偏差
type RatingAuditJob struct {
	ratingSvc service.RatingService
}

func NewRatingAuditJob(ratingSvc service.RatingService) *RatingAuditJob {
	return &RatingAuditJob{
		ratingSvc: ratingSvc,
	}
}

func (s *RatingAuditJob) Run() {
	traceID := "job-rating-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	processingKey := consts.RatingDirtyKey + ":processing"
	ok, err := redis.Rename(ctx, consts.RatingDirtyKey, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "rename rating dirty set error", "err", err)
		return
	}
	if !ok {
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get rating dirty set error", "err", err)
		return
	}
	userIDs, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert rating set to int slice error", "err", err)
		return
	}

	drifted := s.audit(ctx, userIDs)

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete rating processing set error", "err", err)
	}

	log.InfoContext(ctx, "rating audit finished",
		"user_count", len(userIDs),
		"drift_count", drifted)
}

func (s *RatingAuditJob) audit(ctx context.Context, userIDs []uint64) int {
	drifted := 0
	for _, uid := range userIDs {
		drift, err := s.ratingSvc.Audit(ctx, uid)
		if err != nil {
			if !errors.Is(err, service.ErrUserNotFound) {
				log.ErrorContext(ctx, "audit rating error", "uid", uid, "err", err)
			}
			continue
		}
		if drift.Drifted() {
			drifted++
			log.WarnContext(ctx, "rating drift detected",
				"uid", uid,
				"stored", drift.Stored,
				"derived", drift.Derived)
		}
	}
	return drifted
}
