package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"
)

func postIDs(items []*dto.PostDTO) []uint64 {
	ids := make([]uint64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t)
	go1 := f.category(t, "go")

	cases := []struct {
		name    string
		viewer  Viewer
		req     *dto.PostCreateDTO
		wantErr error
	}{
		{"anonymous", Anonymous(), &dto.PostCreateDTO{Title: "t", Content: "c"}, ErrUnauthenticated},
		{"blank title", a, &dto.PostCreateDTO{Title: "   ", Content: "c"}, ErrTitleEmpty},
		{"blank content", a, &dto.PostCreateDTO{Title: "t", Content: "\n"}, ErrContentEmpty},
		{"title too long", a, &dto.PostCreateDTO{Title: strings.Repeat("x", 256), Content: "c"}, ErrParamInvalid},
		{"unknown category", a, &dto.PostCreateDTO{Title: "t", Content: "c", CategoryIDs: []uint64{go1.ID, 9999}}, ErrCategoryInvalid},
	}
	for _, c := range cases {
		if _, err := f.posts.Create(ctx, c.viewer, c.req); !errors.Is(err, c.wantErr) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.wantErr)
		}
	}
	var n int64
	f.db.Model(&model.Post{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected creates wrote %d posts", n)
	}

	created, err := f.posts.Create(ctx, a, &dto.PostCreateDTO{Title: " hello ", Content: "world", CategoryIDs: []uint64{go1.ID, go1.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Title != "hello" || created.Status != consts.StatusActive || created.AuthorID != a.UserID {
		t.Fatalf("created = %+v", created)
	}
	if !slices.Equal(created.CategoryIDs, []uint64{go1.ID}) {
		t.Fatalf("categories = %v", created.CategoryIDs)
	}
}

func TestInactivePostVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, stranger := f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.post(t, a, "draft", consts.StatusInactive, base)

	if _, err := f.posts.GetByID(ctx, Anonymous(), p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("anonymous: %v", err)
	}
	if _, err := f.posts.GetByID(ctx, stranger, p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("stranger: %v", err)
	}
	for _, v := range []Viewer{a, admin} {
		got, err := f.posts.GetByID(ctx, v, p.ID)
		if err != nil {
			t.Fatalf("viewer %d: %v", v.UserID, err)
		}
		if got.Status != consts.StatusInactive {
			t.Fatalf("status = %s", got.Status)
		}
	}
	if _, err := f.posts.ListCategories(ctx, stranger, p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("stranger categories: %v", err)
	}
}

func TestUpdatePostMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, stranger := f.user(t), f.user(t)
	admin := f.admin(t)
	c1, c2 := f.category(t, "one"), f.category(t, "two")
	p := f.post(t, a, "original", consts.StatusActive, base, c1.ID)

	cases := []struct {
		name    string
		viewer  Viewer
		req     *dto.PostUpdateDTO
		wantErr error
	}{
		{"author sets status", a, &dto.PostUpdateDTO{Title: ptr("new"), Status: ptr("inactive")}, ErrForbiddenField},
		{"admin sets title", admin, &dto.PostUpdateDTO{Title: ptr("new"), Status: ptr("inactive")}, ErrForbiddenField},
		{"admin sets content", admin, &dto.PostUpdateDTO{Content: ptr("x")}, ErrForbiddenField},
		{"stranger", stranger, &dto.PostUpdateDTO{Title: ptr("new")}, ErrForbidden},
		{"anonymous", Anonymous(), &dto.PostUpdateDTO{Title: ptr("new")}, ErrUnauthenticated},
		{"empty body", a, &dto.PostUpdateDTO{}, ErrParamInvalid},
		{"blank title", a, &dto.PostUpdateDTO{Title: ptr(" ")}, ErrTitleEmpty},
		{"invalid status", admin, &dto.PostUpdateDTO{Status: ptr("archived")}, ErrStatusInvalid},
		{"unknown category", a, &dto.PostUpdateDTO{Title: ptr("new"), CategoryIDs: &[]uint64{9999}}, ErrCategoryInvalid},
	}
	for _, c := range cases {
		if _, err := f.posts.Update(ctx, c.viewer, p.ID, c.req); !errors.Is(err, c.wantErr) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.wantErr)
		}
	}

	stored, err := f.postRepo.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != "original" || stored.Status != consts.StatusActive {
		t.Fatalf("rejected updates were partially applied: %+v", stored)
	}
	cats, err := f.postRepo.GetCategoryIDs(ctx, []uint64{p.ID})
	if err != nil || !slices.Equal(cats[p.ID], []uint64{c1.ID}) {
		t.Fatalf("categories changed by rejected update: %v, %v", cats, err)
	}

	updated, err := f.posts.Update(ctx, a, p.ID, &dto.PostUpdateDTO{Title: ptr("renamed"), CategoryIDs: &[]uint64{c2.ID}})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Title != "renamed" || !slices.Equal(updated.CategoryIDs, []uint64{c2.ID}) {
		t.Fatalf("updated = %+v", updated)
	}

	updated, err = f.posts.Update(ctx, admin, p.ID, &dto.PostUpdateDTO{Status: ptr("inactive"), CategoryIDs: &[]uint64{}})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != consts.StatusInactive || len(updated.CategoryIDs) != 0 {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestForbiddenFieldErrorNamesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t)
	admin := f.admin(t)
	p := f.post(t, a, "post", consts.StatusActive, base)

	_, err := f.posts.Update(ctx, admin, p.ID, &dto.PostUpdateDTO{Title: ptr("x"), Content: ptr("y")})
	if !errors.Is(err, ErrForbiddenField) || !strings.HasSuffix(err.Error(), ": content, title") {
		t.Fatalf("err = %v", err)
	}
}

func TestListPostsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	admin := f.admin(t)
	golang, rust := f.category(t, "golang"), f.category(t, "rust")

	p1 := f.post(t, a, "p1", consts.StatusActive, base, golang.ID)
	p2 := f.post(t, a, "p2", consts.StatusActive, base.Add(time.Hour), rust.ID)
	p3 := f.post(t, a, "p3", consts.StatusInactive, base.Add(2*time.Hour), golang.ID)
	p4 := f.post(t, b, "p4", consts.StatusActive, base.Add(3*time.Hour), golang.ID, rust.ID)

	cases := []struct {
		name   string
		viewer Viewer
		query  dto.PostListQuery
		want   []uint64
	}{
		{"anonymous default", Anonymous(), dto.PostListQuery{}, []uint64{p4.ID, p2.ID, p1.ID}},
		{"author sees own inactive", a, dto.PostListQuery{}, []uint64{p4.ID, p3.ID, p2.ID, p1.ID}},
		{"status ignored for non admin", b, dto.PostListQuery{Status: consts.StatusInactive}, []uint64{p4.ID, p2.ID, p1.ID}},
		{"unknown status ignored for non admin", b, dto.PostListQuery{Status: "bogus"}, []uint64{p4.ID, p2.ID, p1.ID}},
		{"unknown status ignored for anonymous", Anonymous(), dto.PostListQuery{Status: "bogus"}, []uint64{p4.ID, p2.ID, p1.ID}},
		{"admin status filter", admin, dto.PostListQuery{Status: consts.StatusInactive}, []uint64{p3.ID}},
		{"admin all", admin, dto.PostListQuery{}, []uint64{p4.ID, p3.ID, p2.ID, p1.ID}},
		{"category", b, dto.PostListQuery{CategoryIDs: []uint64{golang.ID}}, []uint64{p4.ID, p1.ID}},
		{"any category", b, dto.PostListQuery{CategoryIDs: []uint64{golang.ID, rust.ID}}, []uint64{p4.ID, p2.ID, p1.ID}},
		{"ascending", b, dto.PostListQuery{SortOrder: consts.SortAsc}, []uint64{p1.ID, p2.ID, p4.ID}},
		{"author", b, dto.PostListQuery{AuthorID: a.UserID}, []uint64{p2.ID, p1.ID}},
		{"date range", b, dto.PostListQuery{DateFrom: ptr(base.Add(30 * time.Minute)), DateTo: ptr(base.Add(90 * time.Minute))}, []uint64{p2.ID}},
		{"date only upper bound", b, dto.PostListQuery{DateTo: ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))}, []uint64{p4.ID, p2.ID, p1.ID}},
	}
	for _, c := range cases {
		q := c.query
		page, err := f.posts.List(ctx, c.viewer, &q)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got := postIDs(page.Items); !slices.Equal(got, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
		if page.Total != int64(len(c.want)) {
			t.Fatalf("%s: total = %d", c.name, page.Total)
		}
	}

	if _, err := f.posts.List(ctx, admin, &dto.PostListQuery{Status: "deleted"}); !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("admin invalid status: %v", err)
	}
	if _, err := f.posts.List(ctx, b, &dto.PostListQuery{SortBy: "title"}); !errors.Is(err, ErrParamInvalid) {
		t.Fatalf("invalid sort: %v", err)
	}
}

func TestListPostsByAuthorLockedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t)
	old := f.post(t, a, "old", consts.StatusActive, base)
	mid := f.post(t, a, "mid", consts.StatusActive, base.Add(time.Hour))
	recent := f.post(t, a, "recent", consts.StatusActive, base.Add(2*time.Hour))

	if err := f.posts.Lock(ctx, a, old.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	page, err := f.posts.List(ctx, Anonymous(), &dto.PostListQuery{AuthorID: a.UserID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := postIDs(page.Items), []uint64{old.ID, recent.ID, mid.ID}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !page.Items[0].LockedByAuthor {
		t.Fatal("locked flag not returned")
	}

	page, err = f.posts.List(ctx, Anonymous(), &dto.PostListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := postIDs(page.Items), []uint64{recent.ID, mid.ID, old.ID}; !slices.Equal(got, want) {
		t.Fatalf("general listing should ignore locks, got %v", got)
	}
}

func TestPostLockAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, stranger := f.user(t), f.user(t)
	admin := f.admin(t)
	p := f.post(t, a, "post", consts.StatusActive, base)

	if err := f.posts.Lock(ctx, stranger, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: %v", err)
	}
	if err := f.posts.Lock(ctx, Anonymous(), p.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous: %v", err)
	}
	if err := f.posts.Lock(ctx, admin, p.ID); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := f.posts.Unlock(ctx, a, p.ID); err != nil {
		t.Fatalf("author: %v", err)
	}
	stored, err := f.postRepo.GetPost(ctx, p.ID)
	if err != nil || stored.LockedByAuthor {
		t.Fatalf("stored = %+v, err = %v", stored, err)
	}
}

func TestListPostsSortByLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.user(t), f.user(t), f.user(t)
	p1 := f.post(t, a, "p1", consts.StatusActive, base)
	p2 := f.post(t, a, "p2", consts.StatusActive, base.Add(time.Hour))
	p3 := f.post(t, a, "p3", consts.StatusActive, base.Add(2*time.Hour))

	for _, v := range []Viewer{b, c} {
		if _, err := f.reactions.React(ctx, v, model.EntityTypePost, p1.ID, model.ReactionLike); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.reactions.React(ctx, b, model.EntityTypePost, p3.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reactions.React(ctx, c, model.EntityTypePost, p2.ID, model.ReactionDislike); err != nil {
		t.Fatal(err)
	}

	page, err := f.posts.List(ctx, b, &dto.PostListQuery{SortBy: consts.SortByLikes})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := postIDs(page.Items), []uint64{p1.ID, p3.ID, p2.ID}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if page.Items[0].LikesCount != 2 || page.Items[2].DislikesCount != 1 {
		t.Fatalf("counts = %+v", page.Items)
	}
}

func TestListPostsPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t)
	for i := 0; i < 7; i++ {
		f.post(t, a, "p", consts.StatusActive, base.Add(time.Duration(i)*time.Minute))
	}

	var seen []uint64
	for page := 1; page <= 3; page++ {
		res, err := f.posts.List(ctx, a, &dto.PostListQuery{Page: page, PageSize: 3})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		again, err := f.posts.List(ctx, a, &dto.PostListQuery{Page: page, PageSize: 3})
		if err != nil {
			t.Fatalf("page %d again: %v", page, err)
		}
		if !slices.Equal(postIDs(res.Items), postIDs(again.Items)) {
			t.Fatalf("page %d is not stable", page)
		}
		if res.Total != 7 || res.TotalPages != 3 {
			t.Fatalf("page %d meta = %+v", page, res)
		}
		seen = append(seen, postIDs(res.Items)...)
	}
	slices.Sort(seen)
	if len(slices.Compact(seen)) != 7 {
		t.Fatalf("pages overlap or miss posts: %v", seen)
	}

	clamped, err := f.posts.List(ctx, a, &dto.PostListQuery{Page: -1, PageSize: 1000})
	if err != nil {
		t.Fatalf("clamped: %v", err)
	}
	if clamped.Page != 1 || clamped.PageSize != 100 || len(clamped.Items) != 7 {
		t.Fatalf("clamped = page %d size %d items %d", clamped.Page, clamped.PageSize, len(clamped.Items))
	}

	for _, q := range []*dto.PostListQuery{
		{Page: math.MaxInt64 / 50},
		{Page: math.MaxInt, PageSize: 100},
		{Page: 4, PageSize: 3},
	} {
		res, err := f.posts.List(ctx, a, q)
		if err != nil {
			t.Fatalf("page %d: %v", q.Page, err)
		}
		if len(res.Items) != 0 || res.Total != 7 {
			t.Fatalf("page %d past the end returned %d items, total %d", q.Page, len(res.Items), res.Total)
		}
	}
}

func TestPostIsFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t), f.user(t)
	p1 := f.post(t, a, "p1", consts.StatusActive, base)
	p2 := f.post(t, a, "p2", consts.StatusActive, base.Add(time.Hour))

	if err := f.favorites.Add(ctx, b, p1.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	page, err := f.posts.List(ctx, b, &dto.PostListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	fav := map[uint64]bool{}
	for _, item := range page.Items {
		fav[item.ID] = item.IsFavorite
	}
	if !fav[p1.ID] || fav[p2.ID] {
		t.Fatalf("favorites = %v", fav)
	}

	anon, err := f.posts.GetByID(ctx, Anonymous(), p1.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if anon.IsFavorite {
		t.Fatal("anonymous viewer cannot have favorites")
	}
}

func TestDeletePostCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.user(t), f.user(t), f.user(t)
	admin := f.admin(t)
	cat := f.category(t, "cat")
	p := f.post(t, a, "post", consts.StatusActive, base, cat.ID)
	other := f.post(t, a, "other", consts.StatusActive, base)
	comment := f.comment(t, b, p.ID, nil, consts.StatusActive, base)

	if _, err := f.reactions.React(ctx, c, model.EntityTypePost, p.ID, model.ReactionDislike); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reactions.React(ctx, c, model.EntityTypePost, other.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reactions.React(ctx, c, model.EntityTypeComment, comment.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if err := f.favorites.Add(ctx, c, p.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.posts.Delete(ctx, admin, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin delete: %v", err)
	}
	if err := f.posts.Delete(ctx, a, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := f.rating(t, a); got != 1 {
		t.Fatalf("post author rating = %d, want 1 from the surviving post", got)
	}
	if got := f.rating(t, b); got != 0 {
		t.Fatalf("commenter rating = %d, want 0", got)
	}
	if f.reactionRows(t, model.EntityTypePost, p.ID) != 0 || f.reactionRows(t, model.EntityTypeComment, comment.ID) != 0 {
		t.Fatal("reactions survived delete")
	}
	for _, tbl := range []any{&model.Comment{}, &model.Favorite{}, &model.PostCategory{}} {
		var n int64
		f.db.Model(tbl).Where("post_id = ?", p.ID).Count(&n)
		if n != 0 {
			t.Fatalf("%T rows survived delete: %d", tbl, n)
		}
	}
	if _, err := f.posts.GetByID(ctx, a, p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if got, err := f.categoryRepo.GetCategory(ctx, cat.ID); err != nil || got == nil {
		t.Fatalf("category should survive: %v", err)
	}
}
