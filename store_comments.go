package inkwell

import (
	"fmt"
	"strings"
)

const commentColumns = `cm.id, cm.post_id, p.slug, p.title, cm.user_id, u.username,
	cm.content, cm.approved, cm.created_at, cm.updated_at`

const commentFrom = ` FROM comments cm
	JOIN posts p ON p.id = cm.post_id
	JOIN users u ON u.id = cm.user_id`

// CreateComment adds a comment by actor to the post identified by
// slug. Comments from authors and admins are approved on the spot;
// reader comments wait in the moderation queue regardless of input.
func (s *Store) CreateComment(actor User, postSlug, content string) (Comment, error) {
	if actor.IsAnonymous() {
		return Comment{}, ErrPermission
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, validationErr("content", "comment text is required")
	}
	post, err := s.getPostBySlug(postSlug)
	if err != nil {
		return Comment{}, err
	}
	approved := actor.IsAuthor()
	now := s.now()
	res, err := s.db.Exec(
		`INSERT INTO comments (post_id, user_id, content, approved, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, actor.ID, content, boolInt(approved), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, err
	}
	return s.GetComment(id)
}

// GetComment returns a comment by id.
func (s *Store) GetComment(id int64) (Comment, error) {
	row := s.db.QueryRow(`SELECT `+commentColumns+commentFrom+` WHERE cm.id = ?`, id)
	return scanComment(row)
}

// ApproveComment marks a comment approved. Actor must be an admin or
// the author of the comment's post.
func (s *Store) ApproveComment(actor User, id int64) (Comment, error) {
	comment, err := s.GetComment(id)
	if err != nil {
		return Comment{}, err
	}
	if !s.canModerate(actor, comment) {
		return Comment{}, ErrPermission
	}
	_, err = s.db.Exec(`UPDATE comments SET approved = 1, updated_at = ? WHERE id = ?`, fmtTime(s.now()), id)
	if err != nil {
		return Comment{}, err
	}
	comment.Approved = true
	return comment, nil
}

// DeleteComment removes a comment. Same gate as ApproveComment.
func (s *Store) DeleteComment(actor User, id int64) error {
	comment, err := s.GetComment(id)
	if err != nil {
		return err
	}
	if !s.canModerate(actor, comment) {
		return ErrPermission
	}
	_, err = s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}

// BulkSetApproved flips the approved flag on the given comments in a
// single update. Admin only; no per-row checks beyond the id filter.
// Returns the number of rows changed.
func (s *Store) BulkSetApproved(actor User, ids []int64, approved bool) (int64, error) {
	if !actor.IsAdmin() {
		return 0, ErrPermission
	}
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := []any{boolInt(approved), fmtTime(s.now())}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE comments SET approved = ?, updated_at = ? WHERE id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ApprovedComments returns the approved comments on a post, newest
// first.
func (s *Store) ApprovedComments(postID int64) ([]Comment, error) {
	return s.listComments(`cm.post_id = ? AND cm.approved = 1`, 0, postID)
}

// PendingComments returns the moderation queue visible to actor:
// everything for admins, comments on the actor's own posts for
// authors. Capped at the dashboard queue limit.
func (s *Store) PendingComments(actor User) ([]Comment, error) {
	if !actor.IsAuthor() {
		return nil, ErrPermission
	}
	if actor.IsAdmin() {
		return s.listComments(`cm.approved = 0`, pendingCommentLimit)
	}
	return s.listComments(`cm.approved = 0 AND p.author_id = ?`, pendingCommentLimit, actor.ID)
}

func (s *Store) canModerate(actor User, comment Comment) bool {
	if actor.IsAdmin() {
		return true
	}
	var authorID int64
	if err := s.db.QueryRow(`SELECT author_id FROM posts WHERE id = ?`, comment.PostID).Scan(&authorID); err != nil {
		return false
	}
	return authorID == actor.ID
}

func (s *Store) listComments(where string, limit int, args ...any) ([]Comment, error) {
	q := `SELECT ` + commentColumns + commentFrom + ` WHERE ` + where + ` ORDER BY cm.created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (Comment, error) {
	var c Comment
	var approved int
	var created, updated string
	if err := row.Scan(
		&c.ID, &c.PostID, &c.PostSlug, &c.PostTitle, &c.UserID, &c.Username,
		&c.Content, &approved, &created, &updated,
	); err != nil {
		return Comment{}, err
	}
	c.Approved = approved == 1
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}
