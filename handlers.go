package inkwell

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	user, _ := a.currentUser(c)
	posts, err := a.Store.ListPublished(pageParam(c))
	if err != nil {
		return err
	}
	categories, err := a.Cache.Categories()
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(user, posts, categories, tags))
}

func (a *App) handleSearch(c echo.Context) error {
	user, _ := a.currentUser(c)
	query := c.QueryParam("query")
	posts, err := a.Store.SearchPosts(query, pageParam(c))
	if err != nil {
		return err
	}
	return Render(c, a.Views.Search(user, query, posts))
}

// handlePost serves a post detail page. Each successful fetch of a
// visible post bumps the view counter by exactly one.
func (a *App) handlePost(c echo.Context) error {
	user, _ := a.currentUser(c)
	post, err := a.Store.GetPost(user, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if err := a.Store.IncrementViews(post.ID); err != nil {
		return err
	}
	post.Views++
	comments, err := a.Store.ApprovedComments(post.ID)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(user, post, comments, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleCommentCreate(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to comment.")
	}
	slug := c.Param("slug")
	comment, err := a.Store.CreateComment(user, slug, c.FormValue("content"))
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, ErrNotFound):
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		case errors.As(err, &verr):
			return redirectMsg(c, "/post/"+slug+"/", verr.Message)
		}
		return err
	}
	if comment.Approved {
		return redirectMsg(c, "/post/"+slug+"/", "Your comment has been added.")
	}
	return redirectMsg(c, "/post/"+slug+"/", "Your comment is pending approval.")
}

func (a *App) handleCategory(c echo.Context) error {
	user, _ := a.currentUser(c)
	category, posts, err := a.Store.ListByCategory(c.Param("slug"), pageParam(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	heading := fmt.Sprintf("Category: %s", category.Name)
	return Render(c, a.Views.Listing(user, heading, posts))
}

func (a *App) handleTag(c echo.Context) error {
	user, _ := a.currentUser(c)
	tag, posts, err := a.Store.ListByTag(c.Param("slug"), pageParam(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	heading := fmt.Sprintf("Tag: %s", tag.Name)
	return Render(c, a.Views.Listing(user, heading, posts))
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /dashboard/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
