// Command seed loads categories, locations and accounts from a JSON file.
// Existing slugs, location names and usernames are left untouched.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

type seedFile struct {
	Categories []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Slug        string `json:"slug"`
		IsPublished *bool  `json:"is_published"`
	} `json:"categories"`
	Locations []struct {
		Name        string `json:"name"`
		IsPublished *bool  `json:"is_published"`
	} `json:"locations"`
	Users []struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"users"`
}

type summary struct {
	Categories, Locations, Users, Skipped int
}

func main() {
	var path string
	flag.StringVar(&path, "file", "config/seed.json", "Path to seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	data, err := readSeed(path)
	if err != nil {
		utils.Logger.Fatal("read seed file", zap.String("path", path), zap.Error(err))
	}
	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		utils.Logger.Fatal("connect database", zap.Error(err))
	}

	s, err := seed(db, data)
	if err != nil {
		utils.Logger.Fatal("seed database", zap.Error(err))
	}
	utils.Logger.Info("database seeded",
		zap.Int("categories", s.Categories),
		zap.Int("locations", s.Locations),
		zap.Int("users", s.Users),
		zap.Int("skipped", s.Skipped),
	)
}

func readSeed(path string) (seedFile, error) {
	var data seedFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(raw, &data)
	return data, err
}

func published(v *bool) bool {
	return v == nil || *v
}

func seed(db *gorm.DB, data seedFile) (summary, error) {
	var s summary
	repos := repository.New(db)

	for _, c := range data.Categories {
		if !models.ValidSlug(c.Slug) {
			return s, fmt.Errorf("category %q: invalid slug %q", c.Title, c.Slug)
		}
		err := repos.Categories.Create(&models.Category{
			Title:       c.Title,
			Description: c.Description,
			Slug:        c.Slug,
			IsPublished: published(c.IsPublished),
		})
		switch {
		case errors.Is(err, repository.ErrConflict):
			s.Skipped++
		case err != nil:
			return s, fmt.Errorf("category %q: %w", c.Slug, err)
		default:
			s.Categories++
		}
	}

	for _, l := range data.Locations {
		var n int64
		if err := db.Model(&models.Location{}).Where("name = ?", l.Name).Count(&n).Error; err != nil {
			return s, err
		}
		if n > 0 {
			s.Skipped++
			continue
		}
		if err := repos.Locations.Create(&models.Location{Name: l.Name, IsPublished: published(l.IsPublished)}); err != nil {
			return s, fmt.Errorf("location %q: %w", l.Name, err)
		}
		s.Locations++
	}

	for _, u := range data.Users {
		if !models.ValidUsername(u.Username) {
			return s, fmt.Errorf("invalid username %q", u.Username)
		}
		if len(u.Password) < utils.MinPasswordLength {
			return s, fmt.Errorf("user %q: password is too short", u.Username)
		}
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return s, err
		}
		err = repos.Users.Create(&models.User{
			Username:     u.Username,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PasswordHash: hash,
		})
		switch {
		case errors.Is(err, repository.ErrConflict):
			s.Skipped++
		case err != nil:
			return s, fmt.Errorf("user %q: %w", u.Username, err)
		default:
			s.Users++
		}
	}
	return s, nil
}
