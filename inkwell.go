// Package inkwell is a multi-role blogging platform built with Go,
// Echo, and templ. Users hold one of three ordered roles (reader,
// author, admin); authors publish categorized and tagged posts, and
// readers discuss them through a moderated comment queue.
//
// Users provide their own templ components via the ViewFuncs struct
// (or use views.Defaults), and inkwell handles the handler logic,
// middleware, and database operations.
package inkwell

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds user-provided templ components that the framework
// calls when rendering pages. This is the inversion-of-control
// mechanism that lets users own and customize all templates.
type ViewFuncs struct {
	Home          func(user User, posts PostPage, categories []Category, tags []Tag) templ.Component
	Search        func(user User, query string, posts PostPage) templ.Component
	Listing       func(user User, heading string, posts PostPage) templ.Component
	Post          func(user User, post Post, comments []Comment, msg, csrfToken string) templ.Component
	PostForm      func(user User, post Post, categories []Category, tags []Tag, errMsg, csrfToken string) templ.Component
	ConfirmDelete func(user User, post Post, csrfToken string) templ.Component
	Dashboard     func(user User, posts PostPage, pending []Comment, msg, csrfToken string) templ.Component
	Login         func(errMsg, csrfToken string) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}

// App is the central inkwell application. It wires together the
// store, cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *TaxonomyCache
	Views  ViewFuncs

	notifier     Notifier
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new inkwell App with the given configuration and view
// functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, routes, and
// starts the server.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("inkwell: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkwell: init store: %w", err)
	}
	a.Store = store
	if a.notifier != nil {
		a.Store.SetNotifier(a.notifier)
	}

	a.Cache = NewTaxonomyCache(a.Store, a.Config.TaxonomyCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/search/", a.handleSearch)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/tag/:slug/", a.handleTag)

	// Session routes
	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.GET("/logout/", a.handleLogout)
	e.POST("/logout/", a.handleLogout)

	// Authenticated routes
	e.POST("/post/:slug/comment/", a.handleCommentCreate)
	e.GET("/post/create/", a.handlePostCreateForm)
	e.POST("/post/create/", a.handlePostCreate)
	e.GET("/post/:slug/edit/", a.handlePostEditForm)
	e.POST("/post/:slug/edit/", a.handlePostEdit)
	e.GET("/post/:slug/delete/", a.handlePostDeleteConfirm)
	e.POST("/post/:slug/delete/", a.handlePostDelete)

	// Dashboard and moderation
	e.GET("/dashboard/", a.handleDashboard)
	e.POST("/dashboard/comments/bulk/", a.handleCommentsBulk)
	e.POST("/dashboard/images/upload/", a.handleImageUpload)
	e.POST("/comment/:id/approve/", a.handleCommentApprove)
	e.POST("/comment/:id/delete/", a.handleCommentDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback
// if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or
// fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("inkwell: required environment variable %s is not set", key)
	}
	return v
}
