package inkwell

import "time"

// Role is the single discriminant for what a user may do. Roles are
// ordered: a higher role includes every capability of the lower ones.
type Role int

const (
	RoleReader Role = iota
	RoleAuthor
	RoleAdmin
)

// String returns the storage/display form of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleAuthor:
		return "author"
	default:
		return "reader"
	}
}

// ParseRole maps a stored role string back to a Role. Unknown values
// degrade to RoleReader so a bad row never grants privileges.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "author":
		return RoleAuthor
	default:
		return RoleReader
	}
}

// User is the authenticated caller handle passed explicitly into every
// gated operation. The zero value (ID == 0) means "anonymous".
type User struct {
	ID           int64
	Username     string
	Role         Role
	Superuser    bool
	Bio          string
	CreatedAt    time.Time
	LastActivity time.Time
}

// IsAdmin reports whether the user holds the admin capability, either
// through the role or through the superuser escape hatch.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Superuser
}

// IsAuthor reports whether the user may create and manage posts.
// Admins are always authors.
func (u User) IsAuthor() bool {
	return u.Role >= RoleAuthor || u.Superuser
}

// IsReader reports whether the user holds exactly the reader role.
// This is an independent check: elevated accounts are not readers.
func (u User) IsReader() bool {
	return u.Role == RoleReader
}

// IsAnonymous reports whether the user is not logged in.
func (u User) IsAnonymous() bool {
	return u.ID == 0
}

// Status is the publication state of a post. There are exactly two
// states and one transition: draft to published.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the two known states.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Category groups posts. Deleting a category detaches its posts
// rather than deleting them.
type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	PostCount   int
}

// Tag labels posts, many-to-many.
type Tag struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
	PostCount int
}

// Post is the core content type. PublishedAt is set exactly once, the
// first time the post reaches StatusPublished, and never rewritten.
type Post struct {
	ID            int64
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	AuthorID      int64
	AuthorName    string
	CategoryID    int64 // 0 means no category
	CategoryName  string
	Tags          []Tag
	Status        Status
	Views         int
	CommentCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   *time.Time
}

// Published reports whether the post is publicly visible.
func (p Post) Published() bool {
	return p.Status == StatusPublished
}

// VisibleTo reports whether u may see the post: published posts are
// visible to everyone, drafts only to their owner or an admin.
func (p Post) VisibleTo(u User) bool {
	if p.Published() {
		return true
	}
	return u.IsAdmin() || (u.ID == p.AuthorID && u.IsAuthor())
}

// Editable reports whether u may edit or delete the post.
func (p Post) Editable(u User) bool {
	return u.IsAdmin() || (u.ID == p.AuthorID && u.IsAuthor())
}

// Comment belongs to exactly one post and one user. Unapproved
// comments sit in the moderation queue and are hidden from listings.
type Comment struct {
	ID        int64
	PostID    int64
	PostSlug  string
	PostTitle string
	UserID    int64
	Username  string
	Content   string
	Approved  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostInput carries the writable post fields through the create and
// update paths. Blank Slug and Excerpt are derived at save time.
type PostInput struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	CategoryID    int64
	TagIDs        []int64
	Status        Status
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts    []Post
	Page     int
	PageSize int
	Total    int
}

// PageCount returns the number of pages in the listing.
func (p PostPage) PageCount() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page exists.
func (p PostPage) HasNext() bool { return p.Page < p.PageCount() }

// HasPrev reports whether an earlier page exists.
func (p PostPage) HasPrev() bool { return p.Page > 1 }

// Page sizes for listings.
const (
	PublicPageSize    = 9
	DashboardPageSize = 10
)

// pendingCommentLimit caps the dashboard moderation queue.
const pendingCommentLimit = 10
