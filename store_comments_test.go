package inkwell

import (
	"errors"
	"fmt"
	"testing"
)

func commentFixture(t *testing.T, s *Store) (admin, author, reader User, post Post) {
	t.Helper()
	admin = mustUser(t, s, "admin", RoleAdmin, false)
	author = mustUser(t, s, "author", RoleAuthor, false)
	reader = mustUser(t, s, "reader", RoleReader, false)
	post = mustPost(t, s, author, PostInput{Title: "Commented", Content: "c", Status: StatusPublished})
	return
}

func TestCommentAutoApprovalByRole(t *testing.T) {
	s := setupTestStore(t)
	admin, author, reader, post := commentFixture(t, s)

	cases := []struct {
		actor    User
		approved bool
	}{
		{reader, false},
		{author, true},
		{admin, true},
	}
	for _, tc := range cases {
		c, err := s.CreateComment(tc.actor, post.Slug, "nice post")
		if err != nil {
			t.Fatalf("CreateComment(%s) failed: %v", tc.actor.Username, err)
		}
		if c.Approved != tc.approved {
			t.Errorf("%s comment approved = %v, want %v", tc.actor.Username, c.Approved, tc.approved)
		}
	}

	visible, err := s.ApprovedComments(post.ID)
	if err != nil {
		t.Fatalf("ApprovedComments failed: %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("got %d visible comments, want 2", len(visible))
	}
}

func TestCommentRequiresLoginAndContent(t *testing.T) {
	s := setupTestStore(t)
	_, _, reader, post := commentFixture(t, s)

	if _, err := s.CreateComment(User{}, post.Slug, "anon"); !errors.Is(err, ErrPermission) {
		t.Errorf("anonymous comment: got %v, want ErrPermission", err)
	}
	_, err := s.CreateComment(reader, post.Slug, "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("blank comment: got %v, want ValidationError", err)
	}
	if _, err := s.CreateComment(reader, "no-such-post", "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown post: got %v, want ErrNotFound", err)
	}
}

func TestModerationGates(t *testing.T) {
	s := setupTestStore(t)
	admin, author, reader, post := commentFixture(t, s)
	other := mustUser(t, s, "other", RoleAuthor, false)

	c, err := s.CreateComment(reader, post.Slug, "pending")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if _, err := s.ApproveComment(reader, c.ID); !errors.Is(err, ErrPermission) {
		t.Errorf("reader approve: got %v, want ErrPermission", err)
	}
	if _, err := s.ApproveComment(other, c.ID); !errors.Is(err, ErrPermission) {
		t.Errorf("unrelated author approve: got %v, want ErrPermission", err)
	}
	got, err := s.GetComment(c.ID)
	if err != nil {
		t.Fatalf("GetComment failed: %v", err)
	}
	if got.Approved {
		t.Fatal("comment approved despite rejected moderation")
	}

	// The post's own author moderates comments on their post.
	if _, err := s.ApproveComment(author, c.ID); err != nil {
		t.Fatalf("post author approve failed: %v", err)
	}
	got, _ = s.GetComment(c.ID)
	if !got.Approved {
		t.Error("comment not approved")
	}

	if err := s.DeleteComment(other, c.ID); !errors.Is(err, ErrPermission) {
		t.Errorf("unrelated author delete: got %v, want ErrPermission", err)
	}
	if err := s.DeleteComment(admin, c.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := s.GetComment(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment still present: %v", err)
	}
}

func TestBulkSetApproved(t *testing.T) {
	s := setupTestStore(t)
	admin, author, reader, post := commentFixture(t, s)

	var ids []int64
	for i := 0; i < 3; i++ {
		c, err := s.CreateComment(reader, post.Slug, fmt.Sprintf("comment %d", i))
		if err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
		ids = append(ids, c.ID)
	}

	if _, err := s.BulkSetApproved(author, ids, true); !errors.Is(err, ErrPermission) {
		t.Errorf("non-admin bulk: got %v, want ErrPermission", err)
	}

	n, err := s.BulkSetApproved(admin, ids, true)
	if err != nil {
		t.Fatalf("bulk approve failed: %v", err)
	}
	if n != 3 {
		t.Errorf("changed %d rows, want 3", n)
	}
	visible, _ := s.ApprovedComments(post.ID)
	if len(visible) != 3 {
		t.Errorf("got %d approved, want 3", len(visible))
	}

	n, err = s.BulkSetApproved(admin, ids[:2], false)
	if err != nil {
		t.Fatalf("bulk disapprove failed: %v", err)
	}
	if n != 2 {
		t.Errorf("changed %d rows, want 2", n)
	}
	visible, _ = s.ApprovedComments(post.ID)
	if len(visible) != 1 {
		t.Errorf("got %d approved after disapprove, want 1", len(visible))
	}

	n, err = s.BulkSetApproved(admin, nil, true)
	if err != nil || n != 0 {
		t.Errorf("empty bulk: n=%d err=%v, want 0/nil", n, err)
	}
}

func TestPendingCommentsScope(t *testing.T) {
	s := setupTestStore(t)
	admin, author, reader, post := commentFixture(t, s)
	other := mustUser(t, s, "other", RoleAuthor, false)
	otherPost := mustPost(t, s, other, PostInput{Title: "Elsewhere", Content: "c", Status: StatusPublished})

	if _, err := s.CreateComment(reader, post.Slug, "on mine"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if _, err := s.CreateComment(reader, otherPost.Slug, "on theirs"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	pending, err := s.PendingComments(author)
	if err != nil {
		t.Fatalf("author queue failed: %v", err)
	}
	if len(pending) != 1 || pending[0].PostID != post.ID {
		t.Errorf("author queue = %d comments, want only their own post's", len(pending))
	}

	pending, err = s.PendingComments(admin)
	if err != nil {
		t.Fatalf("admin queue failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("admin queue = %d comments, want 2", len(pending))
	}

	if _, err := s.PendingComments(reader); !errors.Is(err, ErrPermission) {
		t.Errorf("reader queue: got %v, want ErrPermission", err)
	}
}

func TestCommentsCascadeWithPost(t *testing.T) {
	s := setupTestStore(t)
	_, author, reader, post := commentFixture(t, s)

	c, err := s.CreateComment(reader, post.Slug, "soon gone")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if err := s.DeletePost(author, post.Slug); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetComment(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment survived post deletion: %v", err)
	}
}
