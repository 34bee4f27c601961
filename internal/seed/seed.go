// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/password"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DemoPassword is the password every seeded account logs in with.
const DemoPassword = "password1"

// Seed fills the database with fake authors and posts.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	log.Println("Seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	if err := db.Exec("DELETE FROM posts").Error; err != nil {
		return err
	}
	return db.Exec("DELETE FROM users").Error
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	gofakeit.Seed(time.Now().UnixNano())

	hashed, err := password.Hash(DemoPassword)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		// Suffix keeps usernames within length and unique.
		name := strings.ToLower(gofakeit.FirstName())
		if len(name) > 14 {
			name = name[:14]
		}
		username := fmt.Sprintf("%s%d", name, i+1)

		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: hashed,
			Image:    models.DefaultAvatar,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]

		post := models.Post{
			Content: gofakeit.Paragraph(2, 4, 8, "\n\n"),
			UserID:  author.ID,
		}
		title := strings.TrimSuffix(gofakeit.Sentence(5), ".")
		post.SetTitle(fmt.Sprintf("%s %d", title, i+1))

		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
