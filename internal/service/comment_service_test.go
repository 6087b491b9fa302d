package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestRepliesAndReplyCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	p := f.activePost(t, a)
	c1 := f.comment(t, a, p.ID, nil, consts.StatusActive, base)
	r2 := f.comment(t, b, p.ID, &c1.ID, consts.StatusActive, base.Add(2*time.Minute))
	r1 := f.comment(t, b, p.ID, &c1.ID, consts.StatusActive, base.Add(time.Minute))

	top, err := f.comments.ListTopLevel(ctx, b, p.ID, 1, 10)
	if err != nil {
		t.Fatalf("list top level: %v", err)
	}
	if top.Total != 1 || len(top.Items) != 1 || top.Items[0].ReplyCount != 2 {
		t.Fatalf("top level = %+v", top)
	}

	replies, err := f.comments.ListReplies(ctx, b, p.ID, c1.ID, 1, 10)
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if len(replies.Items) != 2 || replies.Items[0].ID != r1.ID || replies.Items[1].ID != r2.ID {
		t.Fatalf("replies not ordered by publish date: %+v", replies.Items)
	}
	for _, r := range replies.Items {
		if r.ReplyCount != 0 {
			t.Fatalf("reply %d has reply count %d", r.ID, r.ReplyCount)
		}
	}

	got, err := f.posts.GetByID(ctx, b, p.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.CommentsCount != 3 {
		t.Fatalf("comments count = %d, want 3", got.CommentsCount)
	}
}

func TestLockedCommentsFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	p := f.activePost(t, a)
	first := f.comment(t, b, p.ID, nil, consts.StatusActive, base)
	second := f.comment(t, b, p.ID, nil, consts.StatusActive, base.Add(time.Minute))
	third := f.comment(t, b, p.ID, nil, consts.StatusActive, base.Add(2*time.Minute))

	if err := f.comments.Lock(ctx, a, p.ID, third.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	page, err := f.comments.ListTopLevel(ctx, b, p.ID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []uint64{third.ID, first.ID, second.ID}
	for i, id := range want {
		if page.Items[i].ID != id {
			t.Fatalf("position %d = %d, want %d", i, page.Items[i].ID, id)
		}
	}
	if !page.Items[0].Locked {
		t.Fatal("locked flag not returned")
	}

	if err = f.comments.Unlock(ctx, a, p.ID, third.ID); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	page, err = f.comments.ListTopLevel(ctx, b, p.ID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Items[2].ID != third.ID {
		t.Fatalf("unlocked comment should return to date order, got %d last", page.Items[2].ID)
	}
}

func TestInactiveCommentVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, stranger := f.user(t), f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.activePost(t, a)
	c1 := f.comment(t, a, p.ID, nil, consts.StatusActive, base)
	f.comment(t, b, p.ID, &c1.ID, consts.StatusActive, base.Add(time.Minute))
	hidden := f.comment(t, b, p.ID, &c1.ID, consts.StatusInactive, base.Add(2*time.Minute))

	cases := []struct {
		name        string
		viewer      Viewer
		wantReplies int
		wantCount   int64
	}{
		{"stranger", stranger, 1, 1},
		{"anonymous", Anonymous(), 1, 1},
		{"reply author", b, 2, 1},
		{"admin", admin, 2, 2},
	}
	for _, c := range cases {
		replies, err := f.comments.ListReplies(ctx, c.viewer, p.ID, c1.ID, 1, 10)
		if err != nil {
			t.Fatalf("%s: list replies: %v", c.name, err)
		}
		if len(replies.Items) != c.wantReplies {
			t.Fatalf("%s: replies = %d, want %d", c.name, len(replies.Items), c.wantReplies)
		}
		top, err := f.comments.ListTopLevel(ctx, c.viewer, p.ID, 1, 10)
		if err != nil {
			t.Fatalf("%s: list top level: %v", c.name, err)
		}
		if top.Items[0].ReplyCount != c.wantCount {
			t.Fatalf("%s: reply count = %d, want %d", c.name, top.Items[0].ReplyCount, c.wantCount)
		}
	}

	if _, err := f.comments.GetByID(ctx, stranger, hidden.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("stranger get hidden: %v", err)
	}
	if _, err := f.comments.GetByID(ctx, b, hidden.ID); err != nil {
		t.Fatalf("author get hidden: %v", err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	p := f.activePost(t, a)
	other := f.activePost(t, a)
	hiddenPost := f.post(t, a, "hidden", consts.StatusInactive, base)
	c1 := f.comment(t, a, p.ID, nil, consts.StatusActive, base)
	r1 := f.comment(t, b, p.ID, &c1.ID, consts.StatusActive, base.Add(time.Minute))

	cases := []struct {
		name    string
		viewer  Viewer
		postID  uint64
		req     *dto.CommentCreateDTO
		wantErr error
	}{
		{"anonymous", Anonymous(), p.ID, &dto.CommentCreateDTO{Content: "hi"}, ErrUnauthenticated},
		{"blank content", b, p.ID, &dto.CommentCreateDTO{Content: "  \n\t"}, ErrContentEmpty},
		{"missing post", b, 9999, &dto.CommentCreateDTO{Content: "hi"}, ErrPostNotFound},
		{"invisible post", b, hiddenPost.ID, &dto.CommentCreateDTO{Content: "hi"}, ErrPostNotFound},
		{"reply to reply", b, p.ID, &dto.CommentCreateDTO{Content: "hi", ParentID: &r1.ID}, ErrParentInvalid},
		{"parent on other post", b, other.ID, &dto.CommentCreateDTO{Content: "hi", ParentID: &c1.ID}, ErrParentInvalid},
		{"missing parent", b, p.ID, &dto.CommentCreateDTO{Content: "hi", ParentID: ptr(uint64(9999))}, ErrParentInvalid},
	}
	for _, c := range cases {
		if _, err := f.comments.Add(ctx, c.viewer, c.postID, c.req); !errors.Is(err, c.wantErr) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.wantErr)
		}
	}

	reply, err := f.comments.Add(ctx, b, p.ID, &dto.CommentCreateDTO{Content: " reply ", ParentID: &c1.ID})
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if reply.Content != "reply" || reply.Status != consts.StatusActive || reply.AuthorID != b.UserID {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestAddCommentEvictsCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	p := f.activePost(t, a)
	c1 := f.comment(t, a, p.ID, nil, consts.StatusActive, base)

	if _, err := f.comments.ListTopLevel(ctx, b, p.ID, 1, 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	replyKey := countKey(consts.CommentReplyCountKey, c1.ID)
	if !f.cache.has(replyKey) {
		t.Fatal("reply count not cached")
	}
	if _, err := f.comments.Add(ctx, b, p.ID, &dto.CommentCreateDTO{Content: "reply", ParentID: &c1.ID}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if f.cache.has(replyKey) || f.cache.has(countKey(consts.PostCommentCountKey, p.ID)) {
		t.Fatal("counts still cached after new reply")
	}
	top, err := f.comments.ListTopLevel(ctx, b, p.ID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if top.Items[0].ReplyCount != 1 {
		t.Fatalf("reply count = %d, want 1", top.Items[0].ReplyCount)
	}
}

func TestUpdateCommentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, stranger := f.user(t), f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.activePost(t, a)
	c := f.comment(t, b, p.ID, nil, consts.StatusActive, base)

	_, err := f.comments.UpdateStatus(ctx, b, c.ID, map[string]any{"content": "x", "locked": true, "status": "inactive"})
	if !errors.Is(err, ErrForbiddenField) {
		t.Fatalf("forbidden fields: %v", err)
	}
	if !strings.Contains(err.Error(), "content") || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("forbidden fields not named: %v", err)
	}
	if _, err = f.comments.UpdateStatus(ctx, b, c.ID, map[string]any{"status": "hidden"}); !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("invalid status: %v", err)
	}
	if _, err = f.comments.UpdateStatus(ctx, b, c.ID, map[string]any{}); !errors.Is(err, ErrParamInvalid) {
		t.Fatalf("empty body: %v", err)
	}
	if _, err = f.comments.UpdateStatus(ctx, stranger, c.ID, map[string]any{"status": "inactive"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: %v", err)
	}

	updated, err := f.comments.UpdateStatus(ctx, b, c.ID, map[string]any{"status": "inactive"})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Status != consts.StatusInactive {
		t.Fatalf("status = %s", updated.Status)
	}
	if _, err = f.comments.UpdateStatus(ctx, stranger, c.ID, map[string]any{"status": "active"}); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("stranger on hidden comment: %v", err)
	}
	if _, err = f.comments.UpdateStatus(ctx, admin, c.ID, map[string]any{"status": "active"}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	stored, err := f.commentRepo.GetCommentByID(ctx, c.ID)
	if err != nil || stored.Status != consts.StatusActive {
		t.Fatalf("stored = %+v, err = %v", stored, err)
	}
}

func TestCommentLockAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.activePost(t, a)
	other := f.activePost(t, a)
	c := f.comment(t, b, p.ID, nil, consts.StatusActive, base)

	if err := f.comments.Lock(ctx, b, p.ID, c.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("comment author lock: %v", err)
	}
	if err := f.comments.Lock(ctx, Anonymous(), p.ID, c.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous lock: %v", err)
	}
	if err := f.comments.Lock(ctx, a, other.ID, c.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("comment on other post: %v", err)
	}
	if err := f.comments.Lock(ctx, a, p.ID, c.ID); err != nil {
		t.Fatalf("post author lock: %v", err)
	}
	if err := f.comments.Unlock(ctx, admin, p.ID, c.ID); err != nil {
		t.Fatalf("admin unlock: %v", err)
	}
	stored, err := f.commentRepo.GetCommentByID(ctx, c.ID)
	if err != nil || stored.Locked {
		t.Fatalf("stored = %+v, err = %v", stored, err)
	}
}

func TestDeleteCommentCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.user(t), f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.activePost(t, a)
	c1 := f.comment(t, a, p.ID, nil, consts.StatusActive, base)
	r1 := f.comment(t, b, p.ID, &c1.ID, consts.StatusActive, base.Add(time.Minute))

	if _, err := f.reactions.React(ctx, c, model.EntityTypeComment, c1.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reactions.React(ctx, c, model.EntityTypeComment, r1.ID, model.ReactionDislike); err != nil {
		t.Fatal(err)
	}
	if f.rating(t, a) != 1 || f.rating(t, b) != -1 {
		t.Fatalf("ratings before delete: a=%d b=%d", f.rating(t, a), f.rating(t, b))
	}

	if err := f.comments.Delete(ctx, admin, c1.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin delete: %v", err)
	}
	if err := f.comments.Delete(ctx, b, c1.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non author delete: %v", err)
	}
	if err := f.comments.Delete(ctx, a, c1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, id := range []uint64{c1.ID, r1.ID} {
		stored, err := f.commentRepo.GetCommentByID(ctx, id)
		if err != nil || stored != nil {
			t.Fatalf("comment %d still present: %+v, %v", id, stored, err)
		}
		if n := f.reactionRows(t, model.EntityTypeComment, id); n != 0 {
			t.Fatalf("comment %d still has %d reactions", id, n)
		}
	}
	if f.rating(t, a) != 0 || f.rating(t, b) != 0 {
		t.Fatalf("ratings after delete: a=%d b=%d", f.rating(t, a), f.rating(t, b))
	}
	if err := f.comments.Delete(ctx, a, c1.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestCommentPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t)
	p := f.activePost(t, a)
	for i := 0; i < 5; i++ {
		f.comment(t, a, p.ID, nil, consts.StatusActive, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := f.comments.ListTopLevel(ctx, a, p.ID, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	beyond, err := f.comments.ListTopLevel(ctx, a, p.ID, 9, 2)
	if err != nil {
		t.Fatalf("list beyond: %v", err)
	}
	if beyond.Total != 5 || len(beyond.Items) != 0 {
		t.Fatalf("beyond = %+v", beyond)
	}

	huge, err := f.comments.ListTopLevel(ctx, Anonymous(), p.ID, math.MaxInt64/50, 100)
	if err != nil {
		t.Fatalf("list huge page: %v", err)
	}
	if len(huge.Items) != 0 || huge.Total != 5 {
		t.Fatalf("huge page = %+v", huge)
	}
}
