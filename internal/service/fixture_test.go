package service

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/database"
	"Agora/internal/repository"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryCache 进程内的 CounterCache，用于观察读穿与失效
type memoryCache struct {
	mu      sync.Mutex
	values  map[string]int64
	evicted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]int64)}
}

func (m *memoryCache) GetMany(_ context.Context, keys []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string]int64)
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			res[k] = v
		}
	}
	return res, nil
}

func (m *memoryCache) SetMany(_ context.Context, values map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *memoryCache) Evict(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		m.evicted = append(m.evicted, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

type fixture struct {
	db    *gorm.DB
	cache *memoryCache

	postRepo     repository.PostRepo
	commentRepo  repository.CommentRepo
	reactionRepo repository.ReactionRepo
	favoriteRepo repository.FavoriteRepo
	categoryRepo repository.CategoryRepo
	userRepo     repository.UserRepo

	posts      PostService
	comments   CommentService
	reactions  ReactionService
	favorites  FavoriteService
	categories CategoryService
	ratings    RatingService

	users int
}

// newFixture 单连接内存库
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, "file::memory:", 1)
}

// newFileFixture 临时目录下的 WAL 文件库，允许 maxOpen 个连接并发读写。
// 写事务以 BEGIN IMMEDIATE 开始，冲突时由 busy_timeout 等待。
func newFileFixture(t *testing.T, maxOpen int) *fixture {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "agora.db") + "?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL"
	return newFixtureWith(t, dsn, maxOpen)
}

func newFixtureWith(t *testing.T, dsn string, maxOpen int) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err = database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{
		db:           db,
		cache:        newMemoryCache(),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepo(db),
		reactionRepo: repository.NewReactionRepo(db),
		favoriteRepo: repository.NewFavoriteRepo(db),
		categoryRepo: repository.NewCategoryRepo(db),
		userRepo:     repository.NewUserRepo(db),
	}
	f.posts = NewPostService(f.postRepo, f.categoryRepo, f.favoriteRepo, f.commentRepo, f.reactionRepo, f.cache)
	f.comments = NewCommentService(f.commentRepo, f.postRepo, f.reactionRepo, f.cache)
	f.reactions = NewReactionService(f.reactionRepo, f.postRepo, f.commentRepo, f.cache)
	f.favorites = NewFavoriteService(f.favoriteRepo, f.postRepo)
	f.categories = NewCategoryService(f.categoryRepo, f.posts)
	f.ratings = NewRatingService(f.userRepo, f.reactionRepo)
	return f
}

func (f *fixture) user(t *testing.T) Viewer {
	t.Helper()
	f.users++
	u := &model.User{Login: fmt.Sprintf("user%d", f.users), Role: "user"}
	if err := f.userRepo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return Viewer{UserID: u.ID}
}

func (f *fixture) admin(t *testing.T) Viewer {
	t.Helper()
	v := f.user(t)
	v.IsAdmin = true
	return v
}

// post 直接写库以控制发布时间与状态
func (f *fixture) post(t *testing.T, author Viewer, title, status string, publish time.Time, categoryIDs ...uint64) *model.Post {
	t.Helper()
	p := &model.Post{
		AuthorID:    author.UserID,
		Title:       title,
		Content:     title + " content",
		Status:      status,
		PublishDate: publish,
		UpdatedAt:   publish,
	}
	if err := f.postRepo.CreatePost(context.Background(), p, categoryIDs); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) activePost(t *testing.T, author Viewer) *model.Post {
	t.Helper()
	return f.post(t, author, "post", consts.StatusActive, time.Now())
}

func (f *fixture) comment(t *testing.T, author Viewer, postID uint64, parentID *uint64, status string, publish time.Time) *model.Comment {
	t.Helper()
	c := &model.Comment{
		PostID:      postID,
		AuthorID:    author.UserID,
		Content:     "comment",
		ParentID:    parentID,
		Status:      status,
		PublishDate: publish,
		UpdatedAt:   publish,
	}
	if err := f.commentRepo.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func (f *fixture) category(t *testing.T, title string) *model.Category {
	t.Helper()
	c := &model.Category{Title: title}
	if err := f.categoryRepo.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func (f *fixture) rating(t *testing.T, v Viewer) int {
	t.Helper()
	u, err := f.userRepo.GetUserById(context.Background(), v.UserID)
	if err != nil || u == nil {
		t.Fatalf("get user %d: %v", v.UserID, err)
	}
	return u.Rating
}

func (f *fixture) reactionRows(t *testing.T, entityType string, entityID uint64) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Reaction{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&n).Error; err != nil {
		t.Fatalf("count reactions: %v", err)
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
