package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// FollowController serves the follow feed and the follow/unfollow actions.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// Feed returns posts authored by users the requester follows, newest first.
// Empty when the requester follows no one.
func (f *FollowController) Feed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	followed := f.db.Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", userID)

	var total int64
	if err := f.db.Model(&models.Post{}).Where("user_id IN (?)", followed).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to count feed posts")
		return
	}
	pageSize := config.Get().PageSize
	page, offset, totalPages := paginate(ctx.Query("page"), total, pageSize)

	var posts []models.Post
	if err := f.db.Where("user_id IN (?)", followed).
		Preload("User").Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to list feed posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, totalPages, total),
	})
}

// Follow subscribes the requester to an author and redirects to the author's
// profile. Self-follow redirects without creating a record; a duplicate
// follow is absorbed by the unique index via ON CONFLICT DO NOTHING.
func (f *FollowController) Follow(ctx *gin.Context) {
	author, ok := f.loadAuthor(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	if author.ID != userID {
		follow := models.Follow{UserID: userID, AuthorID: author.ID}
		if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to follow author")
			return
		}
	}

	ctx.Redirect(http.StatusFound, profilePath(author.Username))
}

// Unfollow removes the requester's subscription if present; absence is not
// an error. Redirects to the author's profile.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	author, ok := f.loadAuthor(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}

	if err := f.db.Where("user_id = ? AND author_id = ?", userID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to unfollow author")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(author.Username))
}

func (f *FollowController) loadAuthor(ctx *gin.Context) (models.User, bool) {
	var author models.User
	err := f.db.Where("username = ?", ctx.Param("username")).First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "author not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load author")
		}
		return models.User{}, false
	}
	return author, true
}
