package inkwell

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const sessionName = "user_session"

// currentUser resolves the authenticated caller from the session. The
// second return is false for anonymous requests or stale sessions.
func (a *App) currentUser(c echo.Context) (User, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return User{}, false
	}
	id, ok := sess.Values["user_id"].(int64)
	if !ok || id == 0 {
		return User{}, false
	}
	user, err := a.Store.GetUser(id)
	if err != nil {
		return User{}, false
	}
	return user, true
}

func setUserSession(c echo.Context, u User) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["user_id"] = u.ID
	return sess.Save(c.Request(), c.Response())
}

func clearUserSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func (a *App) handleLoginForm(c echo.Context) error {
	if _, ok := a.currentUser(c); ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.Login(c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := c.FormValue("username")
	password := c.FormValue("password")
	user, err := a.Store.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidLogin) {
			a.loginLimiter.Record(c.RealIP())
			return Render(c, a.Views.Login("Invalid username or password.", CsrfToken(c)))
		}
		return err
	}
	if err := setUserSession(c, user); err != nil {
		return err
	}
	if user.IsAuthor() {
		return c.Redirect(http.StatusSeeOther, "/dashboard/")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// redirectMsg redirects to path with a user-visible flash message in
// the msg query parameter.
func redirectMsg(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}
