package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feedline/feedline/cache"
	"github.com/feedline/feedline/utils"
)

// AdminController hosts operational endpoints; currently the explicit page
// cache clear, which is the only way besides TTL expiry that cached pages
// are invalidated.
type AdminController struct {
	pages cache.PageCache
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(pages cache.PageCache) *AdminController {
	return &AdminController{pages: pages}
}

// ClearCache wipes every cached page. Admin only.
func (a *AdminController) ClearCache(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40311, "admin privileges required")
		return
	}
	a.pages.Clear()
	utils.Sugar.Infow("page cache cleared", "by", currentUsername(ctx))
	utils.Success(ctx, gin.H{"message": "page cache cleared"})
}
