// Package views provides default templ components for inkwell sites.
// Sites that want their own look pass a custom ViewFuncs to inkwell.New
// instead; these components cover every page the framework renders.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell"
)

// Defaults returns a ViewFuncs backed by the built-in components.
func Defaults(cfg inkwell.SiteConfig) inkwell.ViewFuncs {
	return inkwell.ViewFuncs{
		Home: func(user inkwell.User, posts inkwell.PostPage, categories []inkwell.Category, tags []inkwell.Tag) templ.Component {
			return home(cfg, user, posts, categories, tags)
		},
		Search: func(user inkwell.User, query string, posts inkwell.PostPage) templ.Component {
			return search(cfg, user, query, posts)
		},
		Listing: func(user inkwell.User, heading string, posts inkwell.PostPage) templ.Component {
			return listing(cfg, user, heading, posts)
		},
		Post: func(user inkwell.User, post inkwell.Post, comments []inkwell.Comment, msg, csrfToken string) templ.Component {
			return postDetail(cfg, user, post, comments, msg, csrfToken)
		},
		PostForm: func(user inkwell.User, post inkwell.Post, categories []inkwell.Category, tags []inkwell.Tag, errMsg, csrfToken string) templ.Component {
			return postForm(cfg, user, post, categories, tags, errMsg, csrfToken)
		},
		ConfirmDelete: func(user inkwell.User, post inkwell.Post, csrfToken string) templ.Component {
			return confirmDelete(cfg, user, post, csrfToken)
		},
		Dashboard: func(user inkwell.User, posts inkwell.PostPage, pending []inkwell.Comment, msg, csrfToken string) templ.Component {
			return dashboard(cfg, user, posts, pending, msg, csrfToken)
		},
		Login: func(errMsg, csrfToken string) templ.Component {
			return login(cfg, errMsg, csrfToken)
		},
		NotFound:    func() templ.Component { return errorPage(cfg, "404", "Page not found") },
		ServerError: func() templ.Component { return errorPage(cfg, "500", "Something went wrong") },
	}
}

func esc(s string) string { return html.EscapeString(s) }

// layout wraps a page body in the shared chrome: head, nav, footer.
func layout(cfg inkwell.SiteConfig, title string, user inkwell.User, body func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s — %s</title><link rel="stylesheet" href="/public/style.css"></head><body>`,
			esc(title), esc(cfg.Name))
		fmt.Fprintf(w, `<nav class="nav"><a class="brand" href="/">%s</a><span class="nav-links">`, esc(cfg.Name))
		if user.IsAnonymous() {
			io.WriteString(w, `<a href="/login/">Log in</a>`)
		} else {
			if user.IsAuthor() {
				io.WriteString(w, `<a href="/dashboard/">Dashboard</a>`)
			}
			fmt.Fprintf(w, `<span class="who">%s (%s)</span><a href="/logout/">Log out</a>`, esc(user.Username), esc(user.Role.String()))
		}
		io.WriteString(w, `</span></nav><main class="main">`)
		if err := body(ctx, w); err != nil {
			return err
		}
		fmt.Fprintf(w, `</main><footer class="footer">%s</footer></body></html>`, esc(cfg.Description))
		return nil
	})
}

func flash(w io.Writer, msg string) {
	if msg != "" {
		fmt.Fprintf(w, `<p class="flash">%s</p>`, esc(msg))
	}
}

func postCard(w io.Writer, p inkwell.Post) {
	fmt.Fprintf(w, `<article class="card"><h2><a href="/post/%s/">%s</a></h2>`, esc(p.Slug), esc(p.Title))
	if p.FeaturedImage != "" {
		fmt.Fprintf(w, `<img src="/public/uploads/%s" alt="%s">`, esc(p.FeaturedImage), esc(p.Title))
	}
	fmt.Fprintf(w, `<p class="excerpt">%s</p>`, esc(p.Excerpt))
	fmt.Fprintf(w, `<p class="meta">By %s on %s`, esc(p.AuthorName), p.CreatedAt.Format("Jan 2, 2006"))
	if p.CategoryName != "" {
		fmt.Fprintf(w, ` in %s`, esc(p.CategoryName))
	}
	fmt.Fprintf(w, ` — %d views, %d comments</p></article>`, p.Views, p.CommentCount)
}

func pagination(w io.Writer, base string, page inkwell.PostPage) {
	if page.PageCount() <= 1 {
		return
	}
	io.WriteString(w, `<nav class="pagination">`)
	if page.HasPrev() {
		fmt.Fprintf(w, `<a href="%spage=%d">&laquo; Previous</a>`, base, page.Page-1)
	}
	fmt.Fprintf(w, `<span>Page %d of %d</span>`, page.Page, page.PageCount())
	if page.HasNext() {
		fmt.Fprintf(w, `<a href="%spage=%d">Next &raquo;</a>`, base, page.Page+1)
	}
	io.WriteString(w, `</nav>`)
}

func home(cfg inkwell.SiteConfig, user inkwell.User, posts inkwell.PostPage, categories []inkwell.Category, tags []inkwell.Tag) templ.Component {
	return layout(cfg, "Home", user, func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="columns"><section class="posts">`)
		io.WriteString(w, `<form class="search" action="/search/" method="get"><input type="search" name="query" placeholder="Search posts..."><button type="submit">Search</button></form>`)
		if len(posts.Posts) == 0 {
			io.WriteString(w, `<p>No posts yet.</p>`)
		}
		for _, p := range posts.Posts {
			postCard(w, p)
		}
		pagination(w, "/?", posts)
		io.WriteString(w, `</section><aside class="sidebar"><h3>Categories</h3><ul>`)
		for _, c := range categories {
			fmt.Fprintf(w, `<li><a href="/category/%s/">%s</a> (%d)</li>`, esc(c.Slug), esc(c.Name), c.PostCount)
		}
		io.WriteString(w, `</ul><h3>Tags</h3><ul class="tags">`)
		for _, t := range tags {
			fmt.Fprintf(w, `<li><a href="/tag/%s/">%s</a> (%d)</li>`, esc(t.Slug), esc(t.Name), t.PostCount)
		}
		io.WriteString(w, `</ul></aside></div>`)
		return nil
	})
}

func search(cfg inkwell.SiteConfig, user inkwell.User, query string, posts inkwell.PostPage) templ.Component {
	return layout(cfg, "Search", user, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>Search</h1><form class="search" action="/search/" method="get"><input type="search" name="query" value="%s"><button type="submit">Search</button></form>`, esc(query))
		if query != "" {
			fmt.Fprintf(w, `<p>%d results for &ldquo;%s&rdquo;</p>`, posts.Total, esc(query))
		}
		for _, p := range posts.Posts {
			postCard(w, p)
		}
		pagination(w, fmt.Sprintf("/search/?query=%s&amp;", esc(query)), posts)
		return nil
	})
}

func listing(cfg inkwell.SiteConfig, user inkwell.User, heading string, posts inkwell.PostPage) templ.Component {
	return layout(cfg, heading, user, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, esc(heading))
		if len(posts.Posts) == 0 {
			io.WriteString(w, `<p>No posts here yet.</p>`)
		}
		for _, p := range posts.Posts {
			postCard(w, p)
		}
		pagination(w, "?", posts)
		return nil
	})
}

func postDetail(cfg inkwell.SiteConfig, user inkwell.User, post inkwell.Post, comments []inkwell.Comment, msg, csrfToken string) templ.Component {
	return layout(cfg, post.Title, user, func(ctx context.Context, w io.Writer) error {
		flash(w, msg)
		fmt.Fprintf(w, `<article class="post"><h1>%s</h1>`, esc(post.Title))
		if post.Status == inkwell.StatusDraft {
			io.WriteString(w, `<p class="draft-banner">Draft — only you and admins can see this.</p>`)
		}
		fmt.Fprintf(w, `<p class="meta">By %s`, esc(post.AuthorName))
		if post.PublishedAt != nil {
			fmt.Fprintf(w, ` on %s`, post.PublishedAt.Format("Jan 2, 2006"))
		}
		if post.CategoryName != "" {
			fmt.Fprintf(w, ` in %s`, esc(post.CategoryName))
		}
		fmt.Fprintf(w, ` — %d views</p>`, post.Views)
		if post.FeaturedImage != "" {
			fmt.Fprintf(w, `<img class="featured" src="/public/uploads/%s" alt="%s">`, esc(post.FeaturedImage), esc(post.Title))
		}
		io.WriteString(w, `<div class="content">`)
		if err := inkwell.Content(post.Content).Render(ctx, w); err != nil {
			return err
		}
		io.WriteString(w, `</div>`)
		if len(post.Tags) > 0 {
			io.WriteString(w, `<p class="tags">`)
			for _, t := range post.Tags {
				fmt.Fprintf(w, `<a href="/tag/%s/">#%s</a> `, esc(t.Slug), esc(t.Name))
			}
			io.WriteString(w, `</p>`)
		}
		if post.Editable(user) {
			fmt.Fprintf(w, `<p class="actions"><a href="/post/%s/edit/">Edit</a> <a href="/post/%s/delete/">Delete</a></p>`, esc(post.Slug), esc(post.Slug))
		}
		io.WriteString(w, `</article>`)

		fmt.Fprintf(w, `<section class="comments"><h2>%d comments</h2>`, len(comments))
		for _, cm := range comments {
			fmt.Fprintf(w, `<div class="comment"><p class="meta">%s on %s</p><p>%s</p></div>`,
				esc(cm.Username), cm.CreatedAt.Format("Jan 2, 2006 15:04"), esc(cm.Content))
		}
		if user.IsAnonymous() {
			io.WriteString(w, `<p><a href="/login/">Log in</a> to leave a comment.</p>`)
		} else {
			fmt.Fprintf(w, `<form method="post" action="/post/%s/comment/"><input type="hidden" name="_csrf" value="%s"><textarea name="content" rows="4" placeholder="Write your comment here..."></textarea><button type="submit">Comment</button></form>`,
				esc(post.Slug), esc(csrfToken))
		}
		io.WriteString(w, `</section>`)
		return nil
	})
}

func postForm(cfg inkwell.SiteConfig, user inkwell.User, post inkwell.Post, categories []inkwell.Category, tags []inkwell.Tag, errMsg, csrfToken string) templ.Component {
	heading := "New post"
	action := "/post/create/"
	if post.ID != 0 {
		heading = "Edit post"
		action = "/post/" + post.Slug + "/edit/"
	}
	selected := make(map[int64]bool, len(post.Tags))
	for _, t := range post.Tags {
		selected[t.ID] = true
	}
	return layout(cfg, heading, user, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1>`, esc(heading))
		if errMsg != "" {
			fmt.Fprintf(w, `<p class="error">%s</p>`, esc(errMsg))
		}
		fmt.Fprintf(w, `<form class="post-form" method="post" action="%s"><input type="hidden" name="_csrf" value="%s">`, esc(action), esc(csrfToken))
		fmt.Fprintf(w, `<label>Title<input name="title" value="%s" required></label>`, esc(post.Title))
		fmt.Fprintf(w, `<label>Slug<input name="slug" value="%s" placeholder="Auto-generated from title"></label>`, esc(post.Slug))
		fmt.Fprintf(w, `<label>Content<textarea name="content" rows="16">%s</textarea></label>`, esc(post.Content))
		fmt.Fprintf(w, `<label>Excerpt<textarea name="excerpt" rows="3" placeholder="Brief description...">%s</textarea></label>`, esc(post.Excerpt))
		fmt.Fprintf(w, `<label>Featured image<input name="featured_image" value="%s" placeholder="uploaded filename"></label>`, esc(post.FeaturedImage))
		io.WriteString(w, `<label>Category<select name="category_id"><option value="0">— none —</option>`)
		for _, cat := range categories {
			sel := ""
			if cat.ID == post.CategoryID {
				sel = " selected"
			}
			fmt.Fprintf(w, `<option value="%d"%s>%s</option>`, cat.ID, sel, esc(cat.Name))
		}
		io.WriteString(w, `</select></label><fieldset class="tags"><legend>Tags</legend>`)
		for _, t := range tags {
			checked := ""
			if selected[t.ID] {
				checked = " checked"
			}
			fmt.Fprintf(w, `<label><input type="checkbox" name="tags" value="%d"%s> %s</label>`, t.ID, checked, esc(t.Name))
		}
		io.WriteString(w, `</fieldset><label>Status<select name="status">`)
		for _, st := range []inkwell.Status{inkwell.StatusDraft, inkwell.StatusPublished} {
			sel := ""
			if st == post.Status {
				sel = " selected"
			}
			fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, st, sel, st)
		}
		io.WriteString(w, `</select></label><button type="submit">Save</button></form>`)
		return nil
	})
}

func confirmDelete(cfg inkwell.SiteConfig, user inkwell.User, post inkwell.Post, csrfToken string) templ.Component {
	return layout(cfg, "Delete post", user, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>Delete &ldquo;%s&rdquo;?</h1><p>This also removes its comments. This cannot be undone.</p>`, esc(post.Title))
		fmt.Fprintf(w, `<form method="post" action="/post/%s/delete/"><input type="hidden" name="_csrf" value="%s"><button type="submit">Delete</button> <a href="/post/%s/">Cancel</a></form>`,
			esc(post.Slug), esc(csrfToken), esc(post.Slug))
		return nil
	})
}

func dashboard(cfg inkwell.SiteConfig, user inkwell.User, posts inkwell.PostPage, pending []inkwell.Comment, msg, csrfToken string) templ.Component {
	return layout(cfg, "Dashboard", user, func(ctx context.Context, w io.Writer) error {
		flash(w, msg)
		io.WriteString(w, `<h1>Dashboard</h1><p><a class="button" href="/post/create/">New post</a></p>`)
		io.WriteString(w, `<table class="posts"><tr><th>Title</th><th>Status</th><th>Views</th><th>Published</th><th></th></tr>`)
		for _, p := range posts.Posts {
			published := "—"
			if p.PublishedAt != nil {
				published = p.PublishedAt.Format("Jan 2, 2006")
			}
			fmt.Fprintf(w, `<tr><td><a href="/post/%s/">%s</a></td><td>%s</td><td>%d</td><td>%s</td><td><a href="/post/%s/edit/">Edit</a> <a href="/post/%s/delete/">Delete</a></td></tr>`,
				esc(p.Slug), esc(p.Title), esc(string(p.Status)), p.Views, published, esc(p.Slug), esc(p.Slug))
		}
		io.WriteString(w, `</table>`)
		pagination(w, "/dashboard/?", posts)

		fmt.Fprintf(w, `<h2>Pending comments (%d)</h2>`, len(pending))
		if user.IsAdmin() && len(pending) > 0 {
			fmt.Fprintf(w, `<form method="post" action="/dashboard/comments/bulk/"><input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
			for _, cm := range pending {
				fmt.Fprintf(w, `<label class="pending"><input type="checkbox" name="ids" value="%d"> %s on &ldquo;%s&rdquo;: %s</label>`,
					cm.ID, esc(cm.Username), esc(cm.PostTitle), esc(cm.Content))
			}
			io.WriteString(w, `<button name="action" value="approve" type="submit">Approve selected</button> <button name="action" value="disapprove" type="submit">Disapprove selected</button></form>`)
		}
		for _, cm := range pending {
			fmt.Fprintf(w, `<div class="comment"><p class="meta">%s on <a href="/post/%s/">%s</a> at %s</p><p>%s</p>`,
				esc(cm.Username), esc(cm.PostSlug), esc(cm.PostTitle), cm.CreatedAt.Format(time.RFC822), esc(cm.Content))
			fmt.Fprintf(w, `<form class="inline" method="post" action="/comment/%d/approve/"><input type="hidden" name="_csrf" value="%s"><button type="submit">Approve</button></form>`, cm.ID, esc(csrfToken))
			fmt.Fprintf(w, `<form class="inline" method="post" action="/comment/%d/delete/"><input type="hidden" name="_csrf" value="%s"><button type="submit">Delete</button></form></div>`, cm.ID, esc(csrfToken))
		}
		return nil
	})
}

func login(cfg inkwell.SiteConfig, errMsg, csrfToken string) templ.Component {
	return layout(cfg, "Log in", inkwell.User{}, func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<h1>Log in</h1>`)
		if errMsg != "" {
			fmt.Fprintf(w, `<p class="error">%s</p>`, esc(errMsg))
		}
		fmt.Fprintf(w, `<form class="login" method="post" action="/login/"><input type="hidden" name="_csrf" value="%s"><label>Username<input name="username" autocomplete="username" required></label><label>Password<input type="password" name="password" autocomplete="current-password" required></label><button type="submit">Log in</button></form>`, esc(csrfToken))
		return nil
	})
}

func errorPage(cfg inkwell.SiteConfig, code, message string) templ.Component {
	return layout(cfg, code, inkwell.User{}, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<h1>%s</h1><p>%s</p><p><a href="/">Back to home</a></p>`, esc(code), esc(message))
		return nil
	})
}
