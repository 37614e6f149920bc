package controllers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/feedline/feedline/models"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "root")

	form := url.Values{}
	form.Set("title", "Home Cooking")
	form.Set("description", "recipes and burns")
	w := env.request(t, http.MethodPost, "/groups/", requestOpts{user: &admin, form: form})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var group models.Group
	if err := env.db.First(&group).Error; err != nil {
		t.Fatalf("expected created group: %v", err)
	}
	if group.Slug != "home-cooking" {
		t.Fatalf("expected slug home-cooking, got %q", group.Slug)
	}

	// Same title again collides on the slug and re-renders with an error.
	w = env.request(t, http.MethodPost, "/groups/", requestOpts{user: &admin, form: form})
	got := decodeEnvelope(t, w)
	if got.Code == 0 {
		t.Fatalf("expected validation envelope for duplicate group")
	}
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "mortal")

	form := url.Values{}
	form.Set("title", "Anything")
	w := env.request(t, http.MethodPost, "/groups/", requestOpts{user: &user, form: form})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}

func TestListGroups(t *testing.T) {
	env := newTestEnv(t)
	env.createGroup(t, "B side", "b-side")
	env.createGroup(t, "A side", "a-side")

	w := env.request(t, http.MethodGet, "/groups/", requestOpts{})
	got := decodeEnvelope(t, w)
	list := items(t, got)
	if len(list) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(list))
	}
	first := list[0].(map[string]interface{})
	if first["title"] != "A side" {
		t.Fatalf("expected title ordering, got %v", first["title"])
	}
}
