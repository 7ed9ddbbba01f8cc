package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample users, categories, tags, and posts",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := inkwell.NewStore(inkwell.EnvOr("DATABASE_PATH", "data/blog.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		if err := seed(store); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Sample data created.")
	},
}

func seed(store *inkwell.Store) error {
	admin, err := seedUser(store, "admin", "admin123", inkwell.RoleAdmin, true)
	if err != nil {
		return err
	}
	john, err := seedUser(store, "john_author", "author123", inkwell.RoleAuthor, false)
	if err != nil {
		return err
	}
	jane, err := seedUser(store, "jane_author", "author123", inkwell.RoleAuthor, false)
	if err != nil {
		return err
	}
	reader, err := seedUser(store, "reader1", "reader123", inkwell.RoleReader, false)
	if err != nil {
		return err
	}
	if _, err := seedUser(store, "reader2", "reader123", inkwell.RoleReader, false); err != nil {
		return err
	}

	categories := map[string]inkwell.Category{}
	for _, c := range []struct{ name, description string }{
		{"Technology", "Software, hardware, and everything in between"},
		{"Travel", "Places worth writing home about"},
		{"Food", "Recipes and restaurant notes"},
	} {
		cat, err := store.CreateCategory(admin, c.name, "", c.description)
		if err != nil {
			var verr *inkwell.ValidationError
			if errors.As(err, &verr) {
				cat, err = store.GetCategory(inkwell.Slugify(c.name))
			}
			if err != nil {
				return err
			}
		}
		categories[c.name] = cat
	}

	tags := map[string]inkwell.Tag{}
	for _, name := range []string{"go", "web", "tutorial", "opinion"} {
		tag, err := store.CreateTag(admin, name, "")
		if err != nil {
			var verr *inkwell.ValidationError
			if errors.As(err, &verr) {
				tag, err = store.GetTag(inkwell.Slugify(name))
			}
			if err != nil {
				return err
			}
		}
		tags[name] = tag
	}

	posts := []struct {
		author  inkwell.User
		in      inkwell.PostInput
		comment string
	}{
		{
			author: john,
			in: inkwell.PostInput{
				Title:      "Getting Started",
				Content:    "Welcome to the blog. This first post walks through what you can expect here:\n\n- project write-ups\n- the occasional opinion piece\n\nStick around.",
				CategoryID: categories["Technology"].ID,
				TagIDs:     []int64{tags["go"].ID, tags["tutorial"].ID},
				Status:     inkwell.StatusPublished,
			},
			comment: "Looking forward to more of these!",
		},
		{
			author: jane,
			in: inkwell.PostInput{
				Title:      "A Week in Lisbon",
				Content:    "Seven days, three pastel de nata per day, zero regrets. Notes and photos from a week of wandering.",
				CategoryID: categories["Travel"].ID,
				TagIDs:     []int64{tags["opinion"].ID},
				Status:     inkwell.StatusPublished,
			},
			comment: "The tram photo is great.",
		},
		{
			author: john,
			in: inkwell.PostInput{
				Title:      "Drafting in Public",
				Content:    "This one is not finished yet. Only the author and admins should be able to see it.",
				CategoryID: categories["Technology"].ID,
				TagIDs:     []int64{tags["web"].ID},
				Status:     inkwell.StatusDraft,
			},
		},
	}
	for _, p := range posts {
		post, err := store.CreatePost(p.author, p.in)
		if err != nil {
			var verr *inkwell.ValidationError
			if errors.As(err, &verr) {
				continue // already seeded
			}
			return err
		}
		if p.comment != "" {
			if _, err := store.CreateComment(reader, post.Slug, p.comment); err != nil {
				return err
			}
		}
	}

	fmt.Println("Users: admin/admin123, john_author/author123, jane_author/author123, reader1/reader123, reader2/reader123")
	return nil
}

func seedUser(store *inkwell.Store, username, password string, role inkwell.Role, superuser bool) (inkwell.User, error) {
	user, err := store.CreateUser(username, password, role, superuser)
	if err != nil {
		var verr *inkwell.ValidationError
		if errors.As(err, &verr) {
			return store.GetUserByUsername(username)
		}
		return inkwell.User{}, err
	}
	fmt.Printf("Created %s: %s / %s\n", role, username, password)
	return user, nil
}
