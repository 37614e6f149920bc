package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/middleware"
)

// paginate resolves a raw page parameter against the total row count.
// Non-numeric input falls back to the first page and out-of-range numbers
// clamp to the last page, so any page value yields a valid listing.
func paginate(pageStr string, total int64, pageSize int) (page, offset, totalPages int) {
	totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	page = 1
	if n, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil && n >= 1 {
		page = n
	}
	if page > totalPages {
		page = totalPages
	}
	offset = (page - 1) * pageSize
	return page, offset, totalPages
}

func paginationPayload(page, pageSize, totalPages int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": totalPages,
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func currentUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	name, _ := value.(string)
	return name
}

func isAdmin(ctx *gin.Context) bool {
	uname := currentUsername(ctx)
	if uname == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}

// referrerOr returns the request referrer, or the fallback when the header
// is absent. Like/dislike land back on whatever page the button was on.
func referrerOr(ctx *gin.Context, fallback string) string {
	if ref := ctx.Request.Referer(); ref != "" {
		return ref
	}
	return fallback
}

func profilePath(username string) string {
	return "/profile/" + username + "/"
}

func postPath(postID uint) string {
	return "/posts/" + strconv.Itoa(int(postID)) + "/"
}
