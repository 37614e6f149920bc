package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/feedline/feedline/models"
)

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	writer := env.createUser(t, "writer")
	reader := env.createUser(t, "reader")
	group := env.createGroup(t, "Go", "go")
	post := env.createPost(t, writer, "counted post", &group)
	env.db.Create(&models.Comment{PostID: post.ID, UserID: reader.ID, Text: "hi"})

	w := env.request(t, http.MethodGet, "/stats/", requestOpts{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decodeEnvelope(t, w).Data
	if data["users"].(float64) != 2 {
		t.Fatalf("expected 2 users, got %v", data["users"])
	}
	if data["posts"].(float64) != 1 {
		t.Fatalf("expected 1 post, got %v", data["posts"])
	}
	if data["comments"].(float64) != 1 {
		t.Fatalf("expected 1 comment, got %v", data["comments"])
	}
	if data["groups"].(float64) != 1 {
		t.Fatalf("expected 1 group, got %v", data["groups"])
	}
}

func TestPostStats(t *testing.T) {
	env := newTestEnv(t)
	writer := env.createUser(t, "writer")
	fan := env.createUser(t, "fan")
	post := env.createPost(t, writer, "liked post", nil)
	env.db.Create(&models.Comment{PostID: post.ID, UserID: fan.ID, Text: "nice"})
	env.db.Create(&models.Like{PostID: post.ID, UserID: fan.ID})

	w := env.request(t, http.MethodGet, fmt.Sprintf("/posts/%d/stats/", post.ID), requestOpts{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decodeEnvelope(t, w).Data
	if data["comments"].(float64) != 1 || data["likes"].(float64) != 1 {
		t.Fatalf("unexpected counters: %v", data)
	}

	w = env.request(t, http.MethodGet, "/posts/999/stats/", requestOpts{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPageViewsAreCounted(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		env.request(t, http.MethodGet, "/stats/", requestOpts{})
	}
	// Health checks are not page traffic.
	env.request(t, http.MethodGet, "/health", requestOpts{})

	var pv models.PageView
	if err := env.db.First(&pv, "path = ?", "/stats/").Error; err != nil {
		t.Fatalf("expected a page view row for /stats/: %v", err)
	}
	if pv.Count != 3 {
		t.Fatalf("expected count 3, got %d", pv.Count)
	}
	var healthRows int64
	env.db.Model(&models.PageView{}).Where("path = ?", "/health").Count(&healthRows)
	if healthRows != 0 {
		t.Fatalf("expected no page view row for /health")
	}

	w := env.request(t, http.MethodGet, "/stats/", requestOpts{})
	data := decodeEnvelope(t, w).Data
	if data["daily_views"].(float64) < 3 {
		t.Fatalf("expected daily views >= 3, got %v", data["daily_views"])
	}
}
