package controllers_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feedline/feedline/controllers"
	"github.com/feedline/feedline/models"
)

var formsDBCounter int64

func formsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	n := atomic.AddInt64(&formsDBCounter, 1)
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:feedline_forms_%d?mode=memory&cache=shared", n)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostFormValidate(t *testing.T) {
	db := formsTestDB(t)
	group := models.Group{Title: "G", Slug: "g"}
	db.Create(&group)

	values, errs := controllers.PostForm{Title: " hello ", Text: "body", Group: fmt.Sprintf("%d", group.ID)}.Validate(db)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if values.Title != "hello" {
		t.Fatalf("expected trimmed title, got %q", values.Title)
	}
	if values.GroupID == nil || *values.GroupID != group.ID {
		t.Fatalf("expected group id %d, got %v", group.ID, values.GroupID)
	}

	_, errs = controllers.PostForm{Title: "", Text: ""}.Validate(db)
	if errs["title"] == "" || errs["text"] == "" {
		t.Fatalf("expected title and text errors, got %v", errs)
	}

	_, errs = controllers.PostForm{Title: "t", Text: "x", Group: "999"}.Validate(db)
	if errs["group"] == "" {
		t.Fatalf("expected unknown group error, got %v", errs)
	}

	_, errs = controllers.PostForm{Title: "t", Text: "x", Group: "nope"}.Validate(db)
	if errs["group"] == "" {
		t.Fatalf("expected invalid group error, got %v", errs)
	}

	// Script tags are stripped; a script-only title is effectively empty.
	_, errs = controllers.PostForm{Title: "<script>alert(1)</script>", Text: "x"}.Validate(db)
	if errs["title"] == "" {
		t.Fatalf("expected sanitized-empty title error, got %v", errs)
	}
}

func TestCommentFormValidate(t *testing.T) {
	if text, errs := (controllers.CommentForm{Text: " fine "}).Validate(); errs != nil || text != "fine" {
		t.Fatalf("expected cleaned text, got %q %v", text, errs)
	}
	if _, errs := (controllers.CommentForm{Text: "  "}).Validate(); errs == nil {
		t.Fatalf("expected error for blank comment")
	}
}

func TestSignupFormValidate(t *testing.T) {
	if _, errs := (controllers.SignupForm{Username: "ok_name", Password: "secret1"}).Validate(); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, errs := (controllers.SignupForm{Username: "x", Password: "secret1"}).Validate(); errs["username"] == "" {
		t.Fatalf("expected short username rejected")
	}
	if _, errs := (controllers.SignupForm{Username: "fine", Password: "123"}).Validate(); errs["password"] == "" {
		t.Fatalf("expected short password rejected")
	}
	if _, errs := (controllers.SignupForm{Username: "has space", Password: "secret1"}).Validate(); errs["username"] == "" {
		t.Fatalf("expected username with space rejected")
	}
}
