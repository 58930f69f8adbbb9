// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"linkup/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DemoData seeds a small default data set. Used by runtime bootstrap.
func DemoData(db *gorm.DB) error {
	return Seed(db, Options{NumUsers: 20, NumPosts: 60})
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d demo users created", len(users))

	if err := createConnections(db, users); err != nil {
		return fmt.Errorf("failed to create connections: %w", err)
	}
	log.Printf("✓ connection graph created")

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := createCommentsAndLikes(db, users, posts); err != nil {
		return fmt.Errorf("failed to create comments and likes: %w", err)
	}
	log.Printf("✓ comments and likes created")

	log.Println("🌱 Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []string{"likes", "comments", "posts", "connections", "blob_chunks", "blob_objects", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	if n <= 0 {
		n = 20
	}

	// One shared password keeps demo logins predictable.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("demo%d@%s", i+1, gofakeit.DomainName()),
			Password: string(hashed),
			Bio:      gofakeit.JobTitle() + " at " + gofakeit.Company(),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createConnections links random user pairs, always writing both directions.
func createConnections(db *gorm.DB, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	pairs := len(users) * 2
	for i := 0; i < pairs; i++ {
		a := users[r.Intn(len(users))]
		b := users[r.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		edges := []models.Connection{
			{UserID: a.ID, ConnectionID: b.ID},
			{UserID: b.ID, ConnectionID: a.ID},
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
			return err
		}
	}
	return nil
}

func createPosts(db *gorm.DB, users []*models.User, n int) ([]*models.Post, error) {
	if n <= 0 {
		n = 60
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[r.Intn(len(users))]
		post := &models.Post{
			UserID:     author.ID,
			AuthorName: author.Name,
			Text:       gofakeit.Paragraph(1, 3, 8, " "),
			CreatedAt:  time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		}
		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createCommentsAndLikes(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, post := range posts {
		for i := 0; i < r.Intn(4); i++ {
			author := users[r.Intn(len(users))]
			comment := &models.Comment{
				PostID:     post.ID,
				UserID:     author.ID,
				AuthorName: author.Name,
				Text:       gofakeit.Sentence(10),
			}
			if err := db.Create(comment).Error; err != nil {
				return err
			}
		}
		for i := 0; i < r.Intn(6); i++ {
			like := models.Like{
				UserID: users[r.Intn(len(users))].ID,
				PostID: post.ID,
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
