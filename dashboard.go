package inkwell

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const noPermissionMsg = "You do not have permission to do that."

func (a *App) handleDashboard(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	if !user.IsAuthor() {
		return redirectMsg(c, "/", noPermissionMsg)
	}
	posts, err := a.Store.ListForDashboard(user, pageParam(c))
	if err != nil {
		return err
	}
	pending, err := a.Store.PendingComments(user)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Dashboard(user, posts, pending, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handlePostCreateForm(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	if !user.IsAuthor() {
		return redirectMsg(c, "/", noPermissionMsg)
	}
	return a.renderPostForm(c, user, Post{Status: StatusDraft}, "")
}

func (a *App) handlePostCreate(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	in, err := postInputFromForm(c)
	if err != nil {
		return err
	}
	if _, err := a.Store.CreatePost(user, in); err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, ErrPermission):
			return redirectMsg(c, "/", noPermissionMsg)
		case errors.As(err, &verr):
			return a.renderPostForm(c, user, postFromInput(in), verr.Message)
		}
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/dashboard/", "Post created successfully!")
}

func (a *App) handlePostEditForm(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	post, err := a.Store.GetPost(user, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if !post.Editable(user) {
		return redirectMsg(c, "/", noPermissionMsg)
	}
	return a.renderPostForm(c, user, post, "")
}

func (a *App) handlePostEdit(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	in, err := postInputFromForm(c)
	if err != nil {
		return err
	}
	if _, err := a.Store.UpdatePost(user, c.Param("slug"), in); err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, ErrNotFound):
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		case errors.Is(err, ErrPermission):
			return redirectMsg(c, "/", noPermissionMsg)
		case errors.As(err, &verr):
			return a.renderPostForm(c, user, postFromInput(in), verr.Message)
		}
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/dashboard/", "Post updated successfully!")
}

func (a *App) handlePostDeleteConfirm(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	post, err := a.Store.GetPost(user, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if !post.Editable(user) {
		return redirectMsg(c, "/", noPermissionMsg)
	}
	return Render(c, a.Views.ConfirmDelete(user, post, CsrfToken(c)))
}

func (a *App) handlePostDelete(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	if err := a.Store.DeletePost(user, c.Param("slug")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		case errors.Is(err, ErrPermission):
			return redirectMsg(c, "/", noPermissionMsg)
		}
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/dashboard/", "Post deleted successfully!")
}

func (a *App) handleCommentApprove(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if _, err := a.Store.ApproveComment(user, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		case errors.Is(err, ErrPermission):
			return redirectMsg(c, "/", "You do not have permission to approve this comment.")
		}
		return err
	}
	return redirectMsg(c, "/dashboard/", "Comment approved successfully!")
}

func (a *App) handleCommentDelete(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err := a.Store.DeleteComment(user, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		case errors.Is(err, ErrPermission):
			return redirectMsg(c, "/", "You do not have permission to delete this comment.")
		}
		return err
	}
	return redirectMsg(c, "/dashboard/", "Comment deleted successfully!")
}

// handleCommentsBulk applies a single approve/disapprove update to the
// selected comments. Admin only.
func (a *App) handleCommentsBulk(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	var ids []int64
	for _, raw := range c.Request().PostForm["ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	approved := c.FormValue("action") != "disapprove"
	n, err := a.Store.BulkSetApproved(user, ids, approved)
	if err != nil {
		if errors.Is(err, ErrPermission) {
			return redirectMsg(c, "/", noPermissionMsg)
		}
		return err
	}
	verb := "approved"
	if !approved {
		verb = "disapproved"
	}
	return redirectMsg(c, "/dashboard/", fmt.Sprintf("%d comments %s.", n, verb))
}

func (a *App) renderPostForm(c echo.Context, user User, post Post, errMsg string) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	tags, err := a.Store.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.PostForm(user, post, categories, tags, errMsg, CsrfToken(c)))
}

func postInputFromForm(c echo.Context) (PostInput, error) {
	if err := c.Request().ParseForm(); err != nil {
		return PostInput{}, err
	}
	categoryID, _ := strconv.ParseInt(c.FormValue("category_id"), 10, 64)
	var tagIDs []int64
	for _, raw := range c.Request().PostForm["tags"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		tagIDs = append(tagIDs, id)
	}
	return PostInput{
		Title:         c.FormValue("title"),
		Slug:          c.FormValue("slug"),
		Content:       c.FormValue("content"),
		Excerpt:       c.FormValue("excerpt"),
		FeaturedImage: c.FormValue("featured_image"),
		CategoryID:    categoryID,
		TagIDs:        tagIDs,
		Status:        Status(c.FormValue("status")),
	}, nil
}

// postFromInput rebuilds a Post for re-rendering a failed form with
// the submitted values intact.
func postFromInput(in PostInput) Post {
	return Post{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		CategoryID:    in.CategoryID,
		Status:        in.Status,
	}
}
