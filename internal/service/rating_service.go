package service

import (
	"Agora/internal/repository"
	"context"
	log "log/slog"
)

// RatingDrift 用户存储的评分与按反应账本重新计算的结果
type RatingDrift struct {
	UserID  uint64
	Stored  int64
	Derived int64
}

// Drifted 两者不一致说明有绕过账本的写入
func (d *RatingDrift) Drifted() bool {
	return d.Stored != d.Derived
}

type RatingService interface {
	Audit(ctx context.Context, userID uint64) (*RatingDrift, error)
}

type ratingServiceImpl struct {
	userRepo     repository.UserRepo
	reactionRepo repository.ReactionRepo
}

func NewRatingService(userRepo repository.UserRepo, reactionRepo repository.ReactionRepo) RatingService {
	return &ratingServiceImpl{
		userRepo:     userRepo,
		reactionRepo: reactionRepo,
	}
}

// Audit 只做比对不做修正
func (s *ratingServiceImpl) Audit(ctx context.Context, userID uint64) (*RatingDrift, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get user error", "err", err)
		return nil, UnExpectedError
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	derived, err := s.reactionRepo.GetNetScoreByAuthor(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get net score error", "err", err)
		return nil, UnExpectedError
	}
	return &RatingDrift{UserID: userID, Stored: int64(user.Rating), Derived: derived}, nil
}
