package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/feedline/feedline/models"
)

func TestLikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	fan := env.createUser(t, "fan")
	author := env.createUser(t, "writer")
	post := env.createPost(t, author, "likeable", nil)

	for i := 0; i < 2; i++ {
		w := env.request(t, http.MethodPost, fmt.Sprintf("/posts/%d/like/", post.ID), requestOpts{user: &fan})
		wantRedirect(t, w, fmt.Sprintf("/posts/%d/", post.ID))
	}

	if n := countRows(t, env.db, &models.Like{}, ""); n != 1 {
		t.Fatalf("expected exactly 1 like record, got %d", n)
	}
}

func TestLikeRedirectsToReferrer(t *testing.T) {
	env := newTestEnv(t)
	fan := env.createUser(t, "fan")
	author := env.createUser(t, "writer")
	post := env.createPost(t, author, "likeable", nil)

	w := env.request(t, http.MethodPost, fmt.Sprintf("/posts/%d/like/", post.ID), requestOpts{user: &fan, referer: "/group/cooking/"})
	wantRedirect(t, w, "/group/cooking/")
}

func TestSelfLikeCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "writer")
	post := env.createPost(t, author, "own post", nil)

	for i := 0; i < 2; i++ {
		w := env.request(t, http.MethodPost, fmt.Sprintf("/posts/%d/like/", post.ID), requestOpts{user: &author, referer: "/"})
		wantRedirect(t, w, "/")
	}

	if n := countRows(t, env.db, &models.Like{}, ""); n != 0 {
		t.Fatalf("self-like must not create records, got %d", n)
	}
}

func TestDislike(t *testing.T) {
	env := newTestEnv(t)
	fan := env.createUser(t, "fan")
	author := env.createUser(t, "writer")
	post := env.createPost(t, author, "likeable", nil)
	env.db.Create(&models.Like{UserID: fan.ID, PostID: post.ID})

	w := env.request(t, http.MethodPost, fmt.Sprintf("/posts/%d/dislike/", post.ID), requestOpts{user: &fan})
	wantRedirect(t, w, fmt.Sprintf("/posts/%d/", post.ID))
	if n := countRows(t, env.db, &models.Like{}, ""); n != 0 {
		t.Fatalf("expected like removed, got %d", n)
	}

	// Removing an absent like is not an error.
	w = env.request(t, http.MethodPost, fmt.Sprintf("/posts/%d/dislike/", post.ID), requestOpts{user: &fan})
	wantRedirect(t, w, fmt.Sprintf("/posts/%d/", post.ID))
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	fan := env.createUser(t, "fan")
	w := env.request(t, http.MethodPost, "/posts/12345/like/", requestOpts{user: &fan})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown post, got %d", w.Code)
	}
}
