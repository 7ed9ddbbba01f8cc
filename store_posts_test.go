package inkwell

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCreatePostDerivesSlugAndExcerpt(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	post := mustPost(t, s, author, PostInput{
		Title:   "Hello, World! A First Post",
		Content: "# Heading\n\nSome **bold** body text.",
	})
	if post.Slug != "hello-world-a-first-post" {
		t.Errorf("Slug = %q, want hello-world-a-first-post", post.Slug)
	}
	if strings.Contains(post.Excerpt, "<") || strings.Contains(post.Excerpt, "**") {
		t.Errorf("excerpt should be plain text, got %q", post.Excerpt)
	}
	if !strings.Contains(post.Excerpt, "bold body text") {
		t.Errorf("excerpt missing content, got %q", post.Excerpt)
	}
	if post.Status != StatusDraft {
		t.Errorf("Status = %q, want draft by default", post.Status)
	}
	if post.PublishedAt != nil {
		t.Error("draft must not carry a published timestamp")
	}
}

func TestCreatePostExplicitSlugKept(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	post := mustPost(t, s, author, PostInput{Title: "Some Title", Slug: "custom-slug", Content: "c"})
	if post.Slug != "custom-slug" {
		t.Errorf("Slug = %q, want custom-slug", post.Slug)
	}
}

func TestCreatePostRequiresAuthor(t *testing.T) {
	s := setupTestStore(t)
	reader := mustUser(t, s, "reader", RoleReader, false)

	if _, err := s.CreatePost(reader, PostInput{Title: "Nope", Content: "c"}); !errors.Is(err, ErrPermission) {
		t.Errorf("reader create: got %v, want ErrPermission", err)
	}
	if _, err := s.CreatePost(User{}, PostInput{Title: "Nope", Content: "c"}); !errors.Is(err, ErrPermission) {
		t.Errorf("anonymous create: got %v, want ErrPermission", err)
	}
}

func TestSuperuserReaderCanCreate(t *testing.T) {
	s := setupTestStore(t)
	su := mustUser(t, s, "root", RoleReader, true)

	if _, err := s.CreatePost(su, PostInput{Title: "Allowed", Content: "c"}); err != nil {
		t.Fatalf("superuser create failed: %v", err)
	}
}

func TestSlugCollisionRejected(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	mustPost(t, s, author, PostInput{Title: "Same Title", Content: "c"})
	_, err := s.CreatePost(author, PostInput{Title: "Same Title", Content: "c"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "slug" {
		t.Errorf("Field = %q, want slug", verr.Field)
	}
}

func TestUpdatePostKeepsSlug(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)
	post := mustPost(t, s, author, PostInput{Title: "Original Title", Content: "c"})

	got, err := s.UpdatePost(author, post.Slug, PostInput{Title: "Completely New Title", Content: "c"})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.Slug != "original-title" {
		t.Errorf("Slug = %q, want original-title (never re-derived)", got.Slug)
	}
	if got.Title != "Completely New Title" {
		t.Errorf("Title = %q", got.Title)
	}

	got, err = s.UpdatePost(author, post.Slug, PostInput{Title: "Completely New Title", Slug: "picked-by-hand", Content: "c"})
	if err != nil {
		t.Fatalf("UpdatePost with explicit slug failed: %v", err)
	}
	if got.Slug != "picked-by-hand" {
		t.Errorf("Slug = %q, want picked-by-hand", got.Slug)
	}
}

func TestPublishSetsTimestampOnce(t *testing.T) {
	s := setupTestStore(t)
	rec := &recordingNotifier{}
	s.SetNotifier(rec)
	author := mustUser(t, s, "author", RoleAuthor, false)

	publishTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return publishTime }

	post := mustPost(t, s, author, PostInput{Title: "Lifecycle", Content: "c"})
	if rec.count() != 0 {
		t.Fatalf("draft creation must not notify, got %d events", rec.count())
	}

	got, err := s.UpdatePost(author, post.Slug, PostInput{Title: "Lifecycle", Content: "c", Status: StatusPublished})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(publishTime) {
		t.Fatalf("PublishedAt = %v, want %v", got.PublishedAt, publishTime)
	}
	if rec.count() != 1 {
		t.Fatalf("publish must notify exactly once, got %d", rec.count())
	}

	// Later edits while published must neither move the timestamp nor
	// notify again.
	s.now = func() time.Time { return publishTime.Add(48 * time.Hour) }
	got, err = s.UpdatePost(author, post.Slug, PostInput{Title: "Lifecycle v2", Content: "c2", Status: StatusPublished})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if !got.PublishedAt.Equal(publishTime) {
		t.Errorf("PublishedAt moved to %v, want %v", got.PublishedAt, publishTime)
	}
	if rec.count() != 1 {
		t.Errorf("second update notified, total %d events", rec.count())
	}
}

func TestCreatePublishedNotifiesImmediately(t *testing.T) {
	s := setupTestStore(t)
	rec := &recordingNotifier{}
	s.SetNotifier(rec)
	author := mustUser(t, s, "author", RoleAuthor, false)

	post := mustPost(t, s, author, PostInput{Title: "Straight Out", Content: "c", Status: StatusPublished})
	if post.PublishedAt == nil {
		t.Fatal("PublishedAt not set on direct publish")
	}
	if rec.count() != 1 {
		t.Errorf("got %d notifications, want 1", rec.count())
	}
}

func TestDraftVisibility(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)
	other := mustUser(t, s, "other", RoleAuthor, false)
	admin := mustUser(t, s, "admin", RoleAdmin, false)
	post := mustPost(t, s, author, PostInput{Title: "Secret Draft", Content: "c"})

	if _, err := s.GetPost(User{}, post.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous sees draft: %v", err)
	}
	if _, err := s.GetPost(other, post.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("other author sees draft: %v", err)
	}
	if _, err := s.GetPost(author, post.Slug); err != nil {
		t.Errorf("owner cannot see own draft: %v", err)
	}
	if _, err := s.GetPost(admin, post.Slug); err != nil {
		t.Errorf("admin cannot see draft: %v", err)
	}
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)
	other := mustUser(t, s, "other", RoleAuthor, false)
	admin := mustUser(t, s, "admin", RoleAdmin, false)
	post := mustPost(t, s, author, PostInput{Title: "Owned", Content: "c", Status: StatusPublished})

	in := PostInput{Title: "Owned", Content: "changed", Status: StatusPublished}
	if _, err := s.UpdatePost(other, post.Slug, in); !errors.Is(err, ErrPermission) {
		t.Errorf("other author update: got %v, want ErrPermission", err)
	}
	if err := s.DeletePost(other, post.Slug); !errors.Is(err, ErrPermission) {
		t.Errorf("other author delete: got %v, want ErrPermission", err)
	}

	// The rejected update must leave the record untouched.
	cur, err := s.GetPost(User{}, post.Slug)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if cur.Content != "c" {
		t.Errorf("content changed despite rejection: %q", cur.Content)
	}

	if _, err := s.UpdatePost(admin, post.Slug, in); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
	if err := s.DeletePost(admin, post.Slug); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
	if _, err := s.GetPost(admin, post.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("post still present after delete: %v", err)
	}
}

func TestUpdateUnknownSlug(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	if _, err := s.UpdatePost(author, "no-such-post", PostInput{Title: "X", Content: "c"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestIncrementViewsConcurrent(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)
	post := mustPost(t, s, author, PostInput{Title: "Popular", Content: "c", Status: StatusPublished})

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.IncrementViews(post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}

	got, err := s.GetPost(User{}, post.Slug)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Views != n {
		t.Errorf("Views = %d, want %d", got.Views, n)
	}
}

func TestSearchPosts(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	mustPost(t, s, author, PostInput{Title: "Gardening Basics", Content: "soil and water", Status: StatusPublished})
	mustPost(t, s, author, PostInput{Title: "Cooking", Content: "how to braise GARDEN vegetables", Status: StatusPublished})
	mustPost(t, s, author, PostInput{Title: "Garden Draft", Content: "unfinished"})

	page, err := s.SearchPosts("garden", 1)
	if err != nil {
		t.Fatalf("SearchPosts failed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("got %d results, want 2 (title and content matches, drafts excluded)", len(page.Posts))
	}

	page, err = s.SearchPosts("   ", 1)
	if err != nil {
		t.Fatalf("blank search failed: %v", err)
	}
	if page.Total != 0 || len(page.Posts) != 0 {
		t.Errorf("blank query must match nothing, got %d", len(page.Posts))
	}
}

func TestListPublishedPagination(t *testing.T) {
	s := setupTestStore(t)
	author := mustUser(t, s, "author", RoleAuthor, false)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < PublicPageSize+3; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		mustPost(t, s, author, PostInput{
			Title:   fmt.Sprintf("Post %02d", i),
			Content: "c",
			Status:  StatusPublished,
		})
	}

	page, err := s.ListPublished(1)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(page.Posts) != PublicPageSize {
		t.Errorf("page 1 size = %d, want %d", len(page.Posts), PublicPageSize)
	}
	if page.Total != PublicPageSize+3 {
		t.Errorf("Total = %d, want %d", page.Total, PublicPageSize+3)
	}
	if !page.HasNext() || page.HasPrev() {
		t.Errorf("page 1: HasNext=%v HasPrev=%v", page.HasNext(), page.HasPrev())
	}
	if page.Posts[0].Title != "Post 11" {
		t.Errorf("newest first: got %q", page.Posts[0].Title)
	}

	page, err = s.ListPublished(2)
	if err != nil {
		t.Fatalf("ListPublished page 2 failed: %v", err)
	}
	if len(page.Posts) != 3 {
		t.Errorf("page 2 size = %d, want 3", len(page.Posts))
	}
	if page.HasNext() || !page.HasPrev() {
		t.Errorf("page 2: HasNext=%v HasPrev=%v", page.HasNext(), page.HasPrev())
	}

	// Out-of-range and nonsense pages clamp rather than error.
	page, err = s.ListPublished(0)
	if err != nil {
		t.Fatalf("page 0 failed: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page 0 clamped to %d, want 1", page.Page)
	}
}

func TestListForDashboardScope(t *testing.T) {
	s := setupTestStore(t)
	admin := mustUser(t, s, "admin", RoleAdmin, false)
	author := mustUser(t, s, "author", RoleAuthor, false)
	other := mustUser(t, s, "other", RoleAuthor, false)
	reader := mustUser(t, s, "reader", RoleReader, false)

	mustPost(t, s, author, PostInput{Title: "Mine", Content: "c"})
	mustPost(t, s, other, PostInput{Title: "Theirs", Content: "c", Status: StatusPublished})

	page, err := s.ListForDashboard(author, 1)
	if err != nil {
		t.Fatalf("author dashboard failed: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Title != "Mine" {
		t.Errorf("author sees %d posts, want only their own", len(page.Posts))
	}

	page, err = s.ListForDashboard(admin, 1)
	if err != nil {
		t.Fatalf("admin dashboard failed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Errorf("admin sees %d posts, want 2", len(page.Posts))
	}
	if page.PageSize != DashboardPageSize {
		t.Errorf("PageSize = %d, want %d", page.PageSize, DashboardPageSize)
	}

	if _, err := s.ListForDashboard(reader, 1); !errors.Is(err, ErrPermission) {
		t.Errorf("reader dashboard: got %v, want ErrPermission", err)
	}
}
