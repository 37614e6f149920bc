package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// StatsController provides platform statistics such as entity counts and
// daily page views.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the platform.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount, postCount, commentCount, groupCount, dailyViews int64

	// Fall back to 0 instead of failing the whole endpoint.
	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}
	if err := s.db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := s.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := s.db.Model(&models.Group{}).Count(&groupCount).Error; err != nil {
		groupCount = 0
	}

	// Match the local-midnight value the recorder writes so both sides
	// serialize identically.
	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyViews).Error; err != nil {
		dailyViews = 0
	}

	utils.Success(ctx, gin.H{
		"users":       userCount,
		"posts":       postCount,
		"comments":    commentCount,
		"groups":      groupCount,
		"daily_views": dailyViews,
	})
}

// GetPostStats returns the comment and like counters for one post.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	var post models.Post
	if err := s.db.First(&post, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load post")
		return
	}

	var commentCount, likeCount int64
	s.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
	s.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)

	utils.Success(ctx, gin.H{
		"post_id":  post.ID,
		"comments": commentCount,
		"likes":    likeCount,
	})
}
