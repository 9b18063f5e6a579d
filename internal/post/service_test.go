package post_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dchesnokov/inkwell/internal/group"
	"github.com/dchesnokov/inkwell/internal/post"
	"github.com/dchesnokov/inkwell/internal/user"
)

// mockPostRepo is an in-memory repository honoring the listing contract:
// reverse-chronological with id as tie-break, update touches text/group only
type mockPostRepo struct {
	nextID int64
	clock  time.Time
	posts  []*post.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *mockPostRepo) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	m.nextID++
	m.clock = m.clock.Add(time.Second)

	created := *p
	created.ID = m.nextID
	created.PubDate = m.clock
	m.posts = append(m.posts, &created)

	copied := created
	return &copied, nil
}

// seed inserts a post with an explicit publication time
func (m *mockPostRepo) seed(text string, authorID int64, groupID *int64, pubDate time.Time) *post.Post {
	m.nextID++
	p := &post.Post{ID: m.nextID, Text: text, AuthorID: authorID, GroupID: groupID, PubDate: pubDate}
	m.posts = append(m.posts, p)
	return p
}

func (m *mockPostRepo) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPostRepo) List(ctx context.Context, filter post.Filter, limit, offset int) ([]*post.Post, int, error) {
	var matched []*post.Post
	for _, p := range m.posts {
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *mockPostRepo) Update(ctx context.Context, id int64, text string, groupID *int64) (*post.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			p.Text = text
			p.GroupID = groupID
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

type mockGroupDir struct {
	groups []*group.Group
}

func (m *mockGroupDir) GetByID(ctx context.Context, id int64) (*group.Group, error) {
	for _, g := range m.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, group.ErrGroupNotFound
}

func (m *mockGroupDir) GetBySlug(ctx context.Context, slug string) (*group.Group, error) {
	for _, g := range m.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, group.ErrGroupNotFound
}

func (m *mockGroupDir) List(ctx context.Context) ([]*group.Group, error) {
	return m.groups, nil
}

type mockUserDir struct {
	users []*user.User
}

func (m *mockUserDir) GetByID(ctx context.Context, id int64) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserDir) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func newTestService() (*post.Service, *mockPostRepo, *mockGroupDir, *mockUserDir) {
	repo := newMockPostRepo()
	groups := &mockGroupDir{groups: []*group.Group{
		{ID: 1, Title: "Cats", Slug: "cats"},
		{ID: 2, Title: "Dogs", Slug: "dogs"},
	}}
	users := &mockUserDir{users: []*user.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}}
	return post.NewService(repo, groups, users), repo, groups, users
}

func TestListAllOrdersNewestFirst(t *testing.T) {
	svc, repo, _, _ := newTestService()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.seed("oldest", 1, nil, base)
	repo.seed("newest", 1, nil, base.Add(2*time.Hour))
	repo.seed("middle", 1, nil, base.Add(time.Hour))

	page, err := svc.ListAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	if len(page.Posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(page.Posts))
	}
	for i, text := range want {
		if page.Posts[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, page.Posts[i].Text)
		}
	}
}

func TestListAllPagination(t *testing.T) {
	svc, repo, _, _ := newTestService()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 13; i++ {
		repo.seed(fmt.Sprintf("post %d", i), 1, nil, base.Add(time.Duration(i)*time.Minute))
	}

	page1, err := svc.ListAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	if len(page1.Posts) != 10 {
		t.Errorf("page 1: expected 10 posts, got %d", len(page1.Posts))
	}
	if page1.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", page1.TotalPages)
	}
	if page1.Total != 13 {
		t.Errorf("expected total 13, got %d", page1.Total)
	}

	page2, err := svc.ListAll(context.Background(), 2)
	if err != nil {
		t.Fatalf("page 2 failed: %v", err)
	}
	if len(page2.Posts) != 3 {
		t.Errorf("page 2: expected 3 posts, got %d", len(page2.Posts))
	}

	// Past the end is empty, not an error
	page99, err := svc.ListAll(context.Background(), 99)
	if err != nil {
		t.Fatalf("page 99 failed: %v", err)
	}
	if len(page99.Posts) != 0 {
		t.Errorf("page 99: expected no posts, got %d", len(page99.Posts))
	}

	// Non-positive pages normalize to 1
	page0, err := svc.ListAll(context.Background(), 0)
	if err != nil {
		t.Fatalf("page 0 failed: %v", err)
	}
	if page0.Number != 1 || len(page0.Posts) != 10 {
		t.Errorf("page 0: expected page 1 with 10 posts, got page %d with %d", page0.Number, len(page0.Posts))
	}
}

func TestListByAuthorScopesToAuthor(t *testing.T) {
	svc, repo, _, _ := newTestService()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.seed("by alice", 1, nil, base)
	repo.seed("by bob", 2, nil, base.Add(time.Minute))

	author, page, err := svc.ListByAuthor(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}
	if author.Username != "alice" {
		t.Errorf("expected author alice, got %q", author.Username)
	}
	if len(page.Posts) != 1 || page.Posts[0].Text != "by alice" {
		t.Errorf("expected only alice's post, got %+v", page.Posts)
	}

	if _, _, err := svc.ListByAuthor(context.Background(), "nobody", 1); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListByGroupScopesToGroup(t *testing.T) {
	svc, repo, _, _ := newTestService()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cats := int64(1)

	repo.seed("in cats", 1, &cats, base)
	repo.seed("no group", 1, nil, base.Add(time.Minute))

	g, page, err := svc.ListByGroup(context.Background(), "cats", 1)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if g.Slug != "cats" {
		t.Errorf("expected group cats, got %q", g.Slug)
	}
	if len(page.Posts) != 1 || page.Posts[0].Text != "in cats" {
		t.Errorf("expected only the cats post, got %+v", page.Posts)
	}

	if _, _, err := svc.ListByGroup(context.Background(), "missing", 1); !errors.Is(err, group.ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestCreateSetsAuthorAndPubDate(t *testing.T) {
	svc, _, _, _ := newTestService()
	cats := int64(1)

	created, err := svc.Create(context.Background(), 1, &post.PostFormRequest{Text: "hello", GroupID: &cats})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.AuthorID != 1 {
		t.Errorf("expected author 1, got %d", created.AuthorID)
	}
	if created.AuthorUsername != "alice" {
		t.Errorf("expected author username alice, got %q", created.AuthorUsername)
	}
	if created.PubDate.IsZero() {
		t.Error("expected pub_date to be set at creation")
	}
	if created.GroupID == nil || *created.GroupID != cats {
		t.Errorf("expected group %d, got %v", cats, created.GroupID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, &post.PostFormRequest{Text: "   "})
	var verr *post.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["text"]; !ok {
		t.Errorf("expected a text field error, got %v", verr.Fields)
	}

	unknown := int64(99)
	_, err = svc.Create(context.Background(), 1, &post.PostFormRequest{Text: "hi", GroupID: &unknown})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown group, got %v", err)
	}
	if _, ok := verr.Fields["group_id"]; !ok {
		t.Errorf("expected a group_id field error, got %v", verr.Fields)
	}

	if len(repo.posts) != 0 {
		t.Errorf("expected no posts persisted on validation failure, found %d", len(repo.posts))
	}
}

func TestUpdatePreservesAuthorAndPubDate(t *testing.T) {
	svc, repo, _, _ := newTestService()
	pubDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dogs := int64(2)

	seeded := repo.seed("original", 1, nil, pubDate)

	updated, err := svc.Update(context.Background(), 1, seeded.ID, &post.PostFormRequest{Text: "edited", GroupID: &dogs})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Text != "edited" {
		t.Errorf("expected text to change, got %q", updated.Text)
	}
	if updated.GroupID == nil || *updated.GroupID != dogs {
		t.Errorf("expected group %d, got %v", dogs, updated.GroupID)
	}
	if updated.AuthorID != 1 {
		t.Errorf("author changed on edit: %d", updated.AuthorID)
	}
	if !updated.PubDate.Equal(pubDate) {
		t.Errorf("pub_date changed on edit: %v", updated.PubDate)
	}
}

func TestUpdateByNonAuthorMutatesNothing(t *testing.T) {
	svc, repo, _, _ := newTestService()
	pubDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seeded := repo.seed("original", 1, nil, pubDate)
	before := *seeded

	_, err := svc.Update(context.Background(), 2, seeded.ID, &post.PostFormRequest{Text: "hijacked"})
	if !errors.Is(err, post.ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if *stored != before {
		t.Errorf("post mutated by non-author edit: before %+v, after %+v", before, *stored)
	}
}

func TestUpdateUnknownPost(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), 1, 42, &post.PostFormRequest{Text: "hi"})
	if !errors.Is(err, post.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestEditablePost(t *testing.T) {
	svc, repo, _, _ := newTestService()
	seeded := repo.seed("mine", 1, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	p, err := svc.EditablePost(context.Background(), 1, seeded.ID)
	if err != nil {
		t.Fatalf("author should get the post: %v", err)
	}
	if p.Text != "mine" {
		t.Errorf("unexpected post %+v", p)
	}

	if _, err := svc.EditablePost(context.Background(), 2, seeded.ID); !errors.Is(err, post.ErrNotAuthor) {
		t.Errorf("expected ErrNotAuthor, got %v", err)
	}
	if _, err := svc.EditablePost(context.Background(), 1, 404); !errors.Is(err, post.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCreateThenDetailRoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()
	cats := int64(1)

	created, err := svc.Create(context.Background(), 2, &post.PostFormRequest{Text: "round trip", GroupID: &cats})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fetched, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Text != "round trip" {
		t.Errorf("text changed in round trip: %q", fetched.Text)
	}
	if fetched.GroupID == nil || *fetched.GroupID != cats {
		t.Errorf("group changed in round trip: %v", fetched.GroupID)
	}
}
