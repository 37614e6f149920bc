package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feedline/feedline/cache"
	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/routes"
	"github.com/feedline/feedline/utils"
)

const testPageSize = 5

var testDBCounter int64

type testEnv struct {
	db     *gorm.DB
	pages  *cache.MemoryCache
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.Set(config.AppConfig{
		SessionSecret:   "test-secret",
		GinMode:         "test",
		GinPath:         filepath.Join(t.TempDir(), "gin.log"),
		PageSize:        testPageSize,
		CacheTTLSeconds: 20,
		// The limiter table is process-global; keep it out of the way.
		RateLimitPerMinute: 1000000,
		UploadDir:          filepath.Join(t.TempDir(), "uploads"),
		AdminUsernames:     []string{"root"},
	})

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:feedline_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.Like{},
		&models.PageView{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	pages := cache.NewMemoryCache(20 * time.Second)
	return &testEnv{
		db:     db,
		pages:  pages,
		router: routes.SetupRouter(db, pages),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Username: username, PasswordHash: hash}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createGroup(t *testing.T, title, slug string) models.Group {
	t.Helper()
	group := models.Group{Title: title, Slug: slug, Description: "test group"}
	if err := e.db.Create(&group).Error; err != nil {
		t.Fatalf("create group %s: %v", slug, err)
	}
	return group
}

func (e *testEnv) createPost(t *testing.T, author models.User, text string, group *models.Group) models.Post {
	t.Helper()
	post := models.Post{UserID: author.ID, Title: "title of " + text, Text: text}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := e.db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// sessionCookie builds the login cookie for a user the way the auth
// controller would issue it.
func sessionCookie(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return &http.Cookie{Name: utils.SessionCookie, Value: token}
}

type requestOpts struct {
	user    *models.User
	form    url.Values
	referer string
}

func (e *testEnv) request(t *testing.T, method, path string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if opts.form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(opts.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if opts.user != nil {
		req.AddCookie(sessionCookie(t, *opts.user))
	}
	if opts.referer != "" {
		req.Header.Set("Referer", opts.referer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func items(t *testing.T, env envelope) []interface{} {
	t.Helper()
	list, ok := env.Data["items"].([]interface{})
	if !ok {
		t.Fatalf("response has no items list: %v", env.Data)
	}
	return list
}

func wantRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
