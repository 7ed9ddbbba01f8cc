package inkwell

import "strings"

// CreateCategory creates a category. Admin tooling only. The slug is
// derived from the name when blank, once, and never regenerated.
func (s *Store) CreateCategory(actor User, name, slug, description string) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, ErrPermission
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, validationErr("name", "name is required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Category{}, validationErr("name", "name must produce a non-empty slug")
	}
	now := s.now()
	res, err := s.db.Exec(
		`INSERT INTO categories (name, slug, description, created_at) VALUES (?, ?, ?, ?)`,
		name, slug, description, fmtTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Category{}, validationErr("name", "a category with that name or slug already exists")
		}
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return Category{ID: id, Name: name, Slug: slug, Description: description, CreatedAt: now}, nil
}

// DeleteCategory removes a category. Admin only. Posts referencing it
// keep existing with a null category (SET NULL on the foreign key).
func (s *Store) DeleteCategory(actor User, slug string) error {
	if !actor.IsAdmin() {
		return ErrPermission
	}
	res, err := s.db.Exec(`DELETE FROM categories WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCategory returns a category by slug.
func (s *Store) GetCategory(slug string) (Category, error) {
	var c Category
	var created string
	err := s.db.QueryRow(
		`SELECT id, name, slug, description, created_at FROM categories WHERE slug = ?`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &created)
	if err != nil {
		return Category{}, err
	}
	c.CreatedAt = parseTime(created)
	return c, nil
}

// ListCategories returns all categories ordered by name, each with its
// post count.
func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.created_at,
		       (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id)
		FROM categories c ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &created, &c.PostCount); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(created)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateTag creates a tag. Admin tooling only; authors attach existing
// tags to posts but do not mint new ones.
func (s *Store) CreateTag(actor User, name, slug string) (Tag, error) {
	if !actor.IsAdmin() {
		return Tag{}, ErrPermission
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, validationErr("name", "name is required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Tag{}, validationErr("name", "name must produce a non-empty slug")
	}
	now := s.now()
	res, err := s.db.Exec(`INSERT INTO tags (name, slug, created_at) VALUES (?, ?, ?)`, name, slug, fmtTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return Tag{}, validationErr("name", "a tag with that name or slug already exists")
		}
		return Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tag{}, err
	}
	return Tag{ID: id, Name: name, Slug: slug, CreatedAt: now}, nil
}

// DeleteTag removes a tag; the post relation rows go with it.
func (s *Store) DeleteTag(actor User, slug string) error {
	if !actor.IsAdmin() {
		return ErrPermission
	}
	res, err := s.db.Exec(`DELETE FROM tags WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTag returns a tag by slug.
func (s *Store) GetTag(slug string) (Tag, error) {
	var t Tag
	var created string
	err := s.db.QueryRow(`SELECT id, name, slug, created_at FROM tags WHERE slug = ?`, slug).
		Scan(&t.ID, &t.Name, &t.Slug, &created)
	if err != nil {
		return Tag{}, err
	}
	t.CreatedAt = parseTime(created)
	return t, nil
}

// ListTags returns all tags ordered by name, each with its post count.
func (s *Store) ListTags() ([]Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at,
		       (SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = t.id)
		FROM tags t ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &created, &t.PostCount); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTime(created)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
