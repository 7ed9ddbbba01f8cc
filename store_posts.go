package inkwell

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image,
	p.author_id, u.username, COALESCE(p.category_id, 0), COALESCE(c.name, ''),
	p.status, p.views, p.created_at, p.updated_at, p.published_at,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.approved = 1)`

const postFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// CreatePost creates a post on behalf of actor, who must hold the
// author capability. Slug and excerpt are derived here when blank;
// creating directly in the published state timestamps and notifies
// immediately.
func (s *Store) CreatePost(actor User, in PostInput) (Post, error) {
	if !actor.IsAuthor() {
		return Post{}, ErrPermission
	}
	if err := validatePostInput(&in); err != nil {
		return Post{}, err
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		return Post{}, validationErr("title", "title must produce a non-empty slug")
	}
	excerpt := in.Excerpt
	if excerpt == "" {
		excerpt = MakeExcerpt(in.Content)
	}

	now := s.now()
	var publishedAt *time.Time
	if in.Status == StatusPublished {
		publishedAt = &now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO posts (title, slug, content, excerpt, featured_image, author_id, category_id, status, views, created_at, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		in.Title, slug, in.Content, excerpt, in.FeaturedImage,
		actor.ID, nullableID(in.CategoryID), string(in.Status),
		fmtTime(now), fmtTime(now), nullableTime(publishedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Post{}, validationErr("slug", fmt.Sprintf("slug %q is already in use", slug))
		}
		return Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	if err := replaceTags(tx, id, in.TagIDs); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}

	post, err := s.getPostByID(id)
	if err != nil {
		return Post{}, err
	}
	if publishedAt != nil {
		s.notifier.PostPublished(post, actor)
	}
	return post, nil
}

// UpdatePost updates the post identified by slug. Actor must be the
// post's owner or an admin. The slug is never re-derived from the
// title; an explicit new slug in the input replaces it. The first
// transition from draft to published sets published_at and fires the
// notification, detected against a fresh read of the persisted row.
func (s *Store) UpdatePost(actor User, slug string, in PostInput) (Post, error) {
	prior, err := s.getPostBySlug(slug)
	if err != nil {
		return Post{}, err
	}
	if !prior.Editable(actor) {
		return Post{}, ErrPermission
	}
	if err := validatePostInput(&in); err != nil {
		return Post{}, err
	}
	newSlug := strings.TrimSpace(in.Slug)
	if newSlug == "" {
		newSlug = prior.Slug
	}
	excerpt := in.Excerpt
	if excerpt == "" {
		excerpt = MakeExcerpt(in.Content)
	}

	publishedAt := prior.PublishedAt
	notify := false
	if in.Status == StatusPublished && publishedAt == nil {
		// Re-read by primary key right before the write. If the row
		// vanished underneath us the timestamping step is skipped
		// silently and the update below reports not-found.
		cur, err := s.getPostByID(prior.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// skip
		case err != nil:
			return Post{}, err
		case cur.PublishedAt != nil:
			publishedAt = cur.PublishedAt
		case cur.Status == StatusDraft:
			now := s.now()
			publishedAt = &now
			notify = true
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, featured_image = ?, category_id = ?, status = ?, updated_at = ?, published_at = ?
		 WHERE id = ?`,
		in.Title, newSlug, in.Content, excerpt, in.FeaturedImage,
		nullableID(in.CategoryID), string(in.Status),
		fmtTime(s.now()), nullableTime(publishedAt), prior.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Post{}, validationErr("slug", fmt.Sprintf("slug %q is already in use", newSlug))
		}
		return Post{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Post{}, ErrNotFound
	}
	if err := replaceTags(tx, prior.ID, in.TagIDs); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}

	post, err := s.getPostByID(prior.ID)
	if err != nil {
		return Post{}, err
	}
	if notify {
		author := actor
		if actor.ID != post.AuthorID {
			if a, err := s.GetUser(post.AuthorID); err == nil {
				author = a
			}
		}
		s.notifier.PostPublished(post, author)
	}
	return post, nil
}

// DeletePost removes the post identified by slug. Actor must be the
// owner or an admin. Comments cascade with the post.
func (s *Store) DeletePost(actor User, slug string) error {
	post, err := s.getPostBySlug(slug)
	if err != nil {
		return err
	}
	if !post.Editable(actor) {
		return ErrPermission
	}
	_, err = s.db.Exec(`DELETE FROM posts WHERE id = ?`, post.ID)
	return err
}

// GetPost returns the post identified by slug if it is visible to
// actor. Drafts belonging to other users read as not-found, so their
// existence is not leaked.
func (s *Store) GetPost(actor User, slug string) (Post, error) {
	post, err := s.getPostBySlug(slug)
	if err != nil {
		return Post{}, err
	}
	if !post.VisibleTo(actor) {
		return Post{}, ErrNotFound
	}
	return post, nil
}

// IncrementViews bumps the post's view counter by one with a single
// atomic update, so concurrent readers never lose increments.
func (s *Store) IncrementViews(postID int64) error {
	_, err := s.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = ?`, postID)
	return err
}

// ListPublished returns one page of published posts, newest first.
func (s *Store) ListPublished(page int) (PostPage, error) {
	return s.listPosts(`p.status = 'published'`, nil, page, PublicPageSize)
}

// AllPublished returns every published post, newest first. Used for
// the feed and sitemap, which are not paginated.
func (s *Store) AllPublished() ([]Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + postFrom +
		` WHERE p.status = 'published' ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// SearchPosts returns published posts whose title or content contains
// the query, case-insensitively. An empty query matches nothing.
func (s *Store) SearchPosts(query string, page int) (PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return PostPage{Page: 1, PageSize: PublicPageSize}, nil
	}
	where := `p.status = 'published' AND (lower(p.title) LIKE '%' || lower(?) || '%' OR lower(p.content) LIKE '%' || lower(?) || '%')`
	return s.listPosts(where, []any{query, query}, page, PublicPageSize)
}

// ListByCategory returns one page of published posts in the category.
func (s *Store) ListByCategory(slug string, page int) (Category, PostPage, error) {
	cat, err := s.GetCategory(slug)
	if err != nil {
		return Category{}, PostPage{}, err
	}
	pp, err := s.listPosts(`p.status = 'published' AND p.category_id = ?`, []any{cat.ID}, page, PublicPageSize)
	return cat, pp, err
}

// ListByTag returns one page of published posts carrying the tag.
func (s *Store) ListByTag(slug string, page int) (Tag, PostPage, error) {
	tag, err := s.GetTag(slug)
	if err != nil {
		return Tag{}, PostPage{}, err
	}
	where := `p.status = 'published' AND EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)`
	pp, err := s.listPosts(where, []any{tag.ID}, page, PublicPageSize)
	return tag, pp, err
}

// ListForDashboard returns the posts the actor manages: everything for
// admins, only the actor's own posts otherwise. Actor must hold the
// author capability.
func (s *Store) ListForDashboard(actor User, page int) (PostPage, error) {
	if !actor.IsAuthor() {
		return PostPage{}, ErrPermission
	}
	if actor.IsAdmin() {
		return s.listPosts(`1 = 1`, nil, page, DashboardPageSize)
	}
	return s.listPosts(`p.author_id = ?`, []any{actor.ID}, page, DashboardPageSize)
}

func (s *Store) listPosts(where string, args []any, page, pageSize int) (PostPage, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&total); err != nil {
		return PostPage{}, err
	}
	q := `SELECT ` + postColumns + postFrom + ` WHERE ` + where +
		` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(q, append(append([]any{}, args...), pageSize, (page-1)*pageSize)...)
	if err != nil {
		return PostPage{}, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return PostPage{}, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return PostPage{}, err
	}
	return PostPage{Posts: posts, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *Store) getPostBySlug(slug string) (Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+postFrom+` WHERE p.slug = ?`, slug)
	post, err := scanPost(row)
	if err != nil {
		return Post{}, err
	}
	post.Tags, err = s.postTags(post.ID)
	return post, err
}

func (s *Store) getPostByID(id int64) (Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+postFrom+` WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		return Post{}, err
	}
	post.Tags, err = s.postTags(post.ID)
	return post, err
}

func (s *Store) postTags(postID int64) ([]Tag, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.name, t.slug, t.created_at FROM tags t
		 JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = ? ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTime(created)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func replaceTags(tx *sql.Tx, postID int64, tagIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func validatePostInput(in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationErr("title", "title is required")
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !in.Status.Valid() {
		return validationErr("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var status, created, updated string
	var published sql.NullString
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.AuthorID, &p.AuthorName, &p.CategoryID, &p.CategoryName,
		&status, &p.Views, &created, &updated, &published, &p.CommentCount,
	); err != nil {
		return Post{}, err
	}
	p.Status = Status(status)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	if published.Valid {
		t := parseTime(published.String)
		p.PublishedAt = &t
	}
	return p, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}
