package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// GroupController lists groups and lets admins create them. The platform has
// no admin interface, so group management is this thin endpoint instead.
type GroupController struct {
	db *gorm.DB
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{db: db}
}

// List returns all groups ordered by title.
func (g *GroupController) List(ctx *gin.Context) {
	var groups []models.Group
	if err := g.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// Create adds a group with a slug derived from its title. Admin only.
func (g *GroupController) Create(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "admin privileges required")
		return
	}

	form := GroupForm{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
	}
	cleaned, errs := form.Validate()
	if errs != nil {
		utils.FormErrors(ctx, form, errs)
		return
	}

	group := models.Group{
		Title:       cleaned.Title,
		Slug:        slug.Make(cleaned.Title),
		Description: cleaned.Description,
	}
	if err := g.db.Create(&group).Error; err != nil {
		if isUniqueViolation(err) {
			utils.FormErrors(ctx, form, map[string]string{"title": "a group with this title already exists"})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create group")
		return
	}

	utils.Success(ctx, gin.H{"group": group})
}

// isUniqueViolation reports whether err came from a unique index. GORM maps
// driver duplicate-key errors to ErrDuplicatedKey; the message check covers
// drivers registered without a translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
