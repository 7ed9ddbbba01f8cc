package inkwell

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, username, role, superuser, bio, created_at, last_activity`

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Store) CreateUser(username, password string, role Role, superuser bool) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, validationErr("username", "username is required")
	}
	if password == "" {
		return User{}, validationErr("password", "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, role, superuser, bio, created_at, last_activity) VALUES (?, ?, ?, ?, '', ?, ?)`,
		username, string(hash), role.String(), boolInt(superuser), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, validationErr("username", "username is already taken")
		}
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Username: username, Role: role, Superuser: superuser, CreatedAt: now, LastActivity: now}, nil
}

// Authenticate verifies a username/password pair. Unknown users and
// wrong passwords both return ErrInvalidLogin.
func (s *Store) Authenticate(username, password string) (User, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM users WHERE username = ?`, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidLogin
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidLogin
	}
	return s.GetUserByUsername(username)
}

// GetUser returns a user by id.
func (s *Store) GetUser(id int64) (User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername returns a user by username.
func (s *Store) GetUserByUsername(username string) (User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// TouchUserActivity updates the user's last_activity timestamp. Called
// once per authenticated request; failures are not fatal to the request.
func (s *Store) TouchUserActivity(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET last_activity = ? WHERE id = ?`, fmtTime(s.now()), id)
	return err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role, created, activity string
	var superuser int
	if err := row.Scan(&u.ID, &u.Username, &role, &superuser, &u.Bio, &created, &activity); err != nil {
		return User{}, err
	}
	u.Role = ParseRole(role)
	u.Superuser = superuser == 1
	u.CreatedAt = parseTime(created)
	u.LastActivity = parseTime(activity)
	return u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
