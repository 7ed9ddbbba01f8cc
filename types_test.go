package inkwell

import "testing"

func TestRoleOrdering(t *testing.T) {
	if !(RoleReader < RoleAuthor && RoleAuthor < RoleAdmin) {
		t.Fatal("roles must be ordered reader < author < admin")
	}
}

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleReader, RoleAuthor, RoleAdmin} {
		if got := ParseRole(r.String()); got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
	if got := ParseRole("garbage"); got != RoleReader {
		t.Errorf("unknown role parsed as %v, want reader", got)
	}
}

func TestUserCapabilities(t *testing.T) {
	cases := []struct {
		name     string
		user     User
		isAdmin  bool
		isAuthor bool
		isReader bool
	}{
		{"reader", User{ID: 1, Role: RoleReader}, false, false, true},
		{"author", User{ID: 2, Role: RoleAuthor}, false, true, false},
		{"admin", User{ID: 3, Role: RoleAdmin}, true, true, false},
		{"superuser reader", User{ID: 4, Role: RoleReader, Superuser: true}, true, true, true},
	}
	for _, tc := range cases {
		if got := tc.user.IsAdmin(); got != tc.isAdmin {
			t.Errorf("%s: IsAdmin = %v, want %v", tc.name, got, tc.isAdmin)
		}
		if got := tc.user.IsAuthor(); got != tc.isAuthor {
			t.Errorf("%s: IsAuthor = %v, want %v", tc.name, got, tc.isAuthor)
		}
		if got := tc.user.IsReader(); got != tc.isReader {
			t.Errorf("%s: IsReader = %v, want %v", tc.name, got, tc.isReader)
		}
	}
}

func TestAnonymousUser(t *testing.T) {
	var u User
	if !u.IsAnonymous() {
		t.Error("zero user must be anonymous")
	}
	if u.IsAuthor() || u.IsAdmin() {
		t.Error("anonymous user must hold no capabilities")
	}
	if (User{ID: 5}).IsAnonymous() {
		t.Error("user with id must not be anonymous")
	}
}

func TestPostVisibleTo(t *testing.T) {
	owner := User{ID: 1, Role: RoleAuthor}
	stranger := User{ID: 2, Role: RoleAuthor}
	admin := User{ID: 3, Role: RoleAdmin}

	draft := Post{AuthorID: 1, Status: StatusDraft}
	if draft.VisibleTo(User{}) || draft.VisibleTo(stranger) {
		t.Error("draft visible to non-owners")
	}
	if !draft.VisibleTo(owner) || !draft.VisibleTo(admin) {
		t.Error("draft hidden from owner or admin")
	}

	pub := Post{AuthorID: 1, Status: StatusPublished}
	if !pub.VisibleTo(User{}) {
		t.Error("published post hidden from anonymous")
	}
}

func TestPostPagePaging(t *testing.T) {
	p := PostPage{Page: 1, PageSize: 9, Total: 0}
	if p.PageCount() != 1 || p.HasNext() || p.HasPrev() {
		t.Errorf("empty listing: count=%d next=%v prev=%v", p.PageCount(), p.HasNext(), p.HasPrev())
	}

	p = PostPage{Page: 2, PageSize: 9, Total: 19}
	if p.PageCount() != 3 {
		t.Errorf("PageCount = %d, want 3", p.PageCount())
	}
	if !p.HasNext() || !p.HasPrev() {
		t.Errorf("middle page: next=%v prev=%v", p.HasNext(), p.HasPrev())
	}
}
