package main

import (
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
	"github.com/eringen/inkwell/views"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the blog server",
	Long: `Start the blog server. Configuration comes from environment variables:

  SITE_NAME          Site name shown in the chrome (default "Blog")
  SITE_URL           Canonical URL (default "http://localhost:3000")
  SITE_DESCRIPTION   Footer / feed description
  ADDR               Listen address (default ":3000")
  DATABASE_PATH      SQLite path (default "data/blog.db")
  SESSION_SECRET     Required: session encryption secret
  COOKIE_SECURE      Set "true" when serving over HTTPS`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := inkwell.SiteConfig{
			Name:          inkwell.EnvOr("SITE_NAME", "Blog"),
			URL:           strings.TrimSuffix(inkwell.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
			Description:   inkwell.EnvOr("SITE_DESCRIPTION", ""),
			Addr:          inkwell.EnvOr("ADDR", ":3000"),
			DatabasePath:  inkwell.EnvOr("DATABASE_PATH", "data/blog.db"),
			SessionSecret: inkwell.MustEnv("SESSION_SECRET"),
			CookieSecure:  strings.EqualFold(inkwell.EnvOr("COOKIE_SECURE", ""), "true"),
		}

		app := inkwell.New(cfg, views.Defaults(cfg))
		defer app.Close()
		if err := app.Start(); err != nil {
			log.Fatal(err)
		}
	},
}
