package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// LikeController serves the like and dislike actions.
type LikeController struct {
	db *gorm.DB
}

// NewLikeController creates a new LikeController instance.
func NewLikeController(db *gorm.DB) *LikeController {
	return &LikeController{db: db}
}

// Like records the requester's like and redirects back to the referring
// page. Liking one's own post redirects without creating a record; a
// duplicate like is absorbed by the unique index via ON CONFLICT DO NOTHING.
func (l *LikeController) Like(ctx *gin.Context) {
	post, ok := l.loadPost(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}

	if post.UserID != userID {
		like := models.Like{UserID: userID, PostID: post.ID}
		if err := l.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to like post")
			return
		}
	}

	ctx.Redirect(http.StatusFound, referrerOr(ctx, postPath(post.ID)))
}

// Dislike removes the requester's like if present; absence is not an error.
// Redirects back to the referring page.
func (l *LikeController) Dislike(ctx *gin.Context) {
	post, ok := l.loadPost(ctx)
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "unauthorized")
		return
	}

	if err := l.db.Where("user_id = ? AND post_id = ?", userID, post.ID).
		Delete(&models.Like{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to remove like")
		return
	}

	ctx.Redirect(http.StatusFound, referrerOr(ctx, postPath(post.ID)))
}

func (l *LikeController) loadPost(ctx *gin.Context) (models.Post, bool) {
	var post models.Post
	err := l.db.First(&post, "id = ?", ctx.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load post")
		}
		return models.Post{}, false
	}
	return post, true
}
