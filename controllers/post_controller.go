package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feedline/feedline/cache"
	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// PostController serves the post listings, the post detail page and the
// create/edit/comment flows.
type PostController struct {
	db    *gorm.DB
	pages cache.PageCache
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, pages cache.PageCache) *PostController {
	return &PostController{db: db, pages: pages}
}

// Index returns the paginated post index. The rendered page is served
// through the page cache: entries live until TTL expiry or an explicit
// clear, so recent writes may not show immediately.
func (p *PostController) Index(ctx *gin.Context) {
	key := cache.Key(ctx.Request.URL.Path, ctx.Request.URL.RawQuery)
	if b, ok := p.pages.Get(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var total int64
	if err := p.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count posts")
		return
	}
	pageSize := config.Get().PageSize
	page, offset, totalPages := paginate(ctx.Query("page"), total, pageSize)

	var posts []models.Post
	if err := p.db.Preload("User").Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to list posts")
		return
	}

	payload := gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, totalPages, total),
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	if b, err := json.Marshal(wrapper); err == nil {
		p.pages.Set(key, b, 0)
	}
	utils.Success(ctx, payload)
}

// GroupPosts returns a group's page: the group plus its posts, paginated.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := ctx.Param("slug")
	var group models.Group
	if err := p.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load group")
		return
	}

	q := p.db.Model(&models.Post{}).Where("group_id = ?", group.ID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to count group posts")
		return
	}
	pageSize := config.Get().PageSize
	page, offset, totalPages := paginate(ctx.Query("page"), total, pageSize)

	var posts []models.Post
	if err := p.db.Where("group_id = ?", group.ID).
		Preload("User").Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to list group posts")
		return
	}

	utils.Success(ctx, gin.H{
		"group":      group,
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, totalPages, total),
	})
}

// Profile returns an author's page: the author, their posts paginated, the
// author's total post count and whether the viewer follows them.
func (p *PostController) Profile(ctx *gin.Context) {
	username := ctx.Param("username")
	var author models.User
	if err := p.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "author not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load author")
		return
	}

	var total int64
	if err := p.db.Model(&models.Post{}).Where("user_id = ?", author.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to count author posts")
		return
	}
	pageSize := config.Get().PageSize
	page, offset, totalPages := paginate(ctx.Query("page"), total, pageSize)

	var posts []models.Post
	if err := p.db.Where("user_id = ?", author.ID).
		Preload("User").Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to list author posts")
		return
	}

	following := false
	if viewerID, ok := getUserID(ctx); ok {
		var n int64
		p.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewerID, author.ID).
			Count(&n)
		following = n > 0
	}

	utils.Success(ctx, gin.H{
		"author":     author,
		"post_count": total,
		"following":  following,
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, totalPages, total),
	})
}

// Detail returns a post with its comments, the author's total post count,
// the like count and whether the viewer has liked it.
func (p *PostController) Detail(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	var postCount int64
	p.db.Model(&models.Post{}).Where("user_id = ?", post.UserID).Count(&postCount)

	var comments []models.Comment
	if err := p.db.Where("post_id = ?", post.ID).
		Preload("User").
		Order("id ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to load comments")
		return
	}

	var likeCount int64
	p.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)

	liked := false
	if viewerID, ok := getUserID(ctx); ok {
		var n int64
		p.db.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", viewerID, post.ID).
			Count(&n)
		liked = n > 0
	}

	utils.Success(ctx, gin.H{
		"post":          post,
		"post_count":    postCount,
		"comments":      comments,
		"comment_count": len(comments),
		"liked":         liked,
		"like_count":    likeCount,
	})
}

// NewPost returns the empty create form context.
func (p *PostController) NewPost(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"form": PostForm{}})
}

// CreatePost persists a new post for the authenticated user and redirects to
// their profile. Validation failures re-render the form with field errors.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	form := PostForm{
		Title: ctx.PostForm("title"),
		Text:  ctx.PostForm("text"),
		Group: ctx.PostForm("group"),
	}
	values, errs := form.Validate(p.db)
	if errs != nil {
		utils.FormErrors(ctx, form, errs)
		return
	}

	imageURL, err := p.saveImage(ctx, userID)
	if err != nil {
		utils.FormErrors(ctx, form, map[string]string{"image": err.Error()})
		return
	}

	post := models.Post{
		UserID:   userID,
		GroupID:  values.GroupID,
		Title:    values.Title,
		Text:     values.Text,
		ImageURL: imageURL,
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50019, "failed to create post")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(currentUsername(ctx)))
}

// EditForm returns the pre-filled edit form. A non-author is redirected to
// the author's profile instead of receiving an authorization error.
func (p *PostController) EditForm(ctx *gin.Context) {
	post, ok := p.loadOwnedPost(ctx)
	if !ok {
		return
	}

	group := ""
	if post.GroupID != nil {
		group = fmt.Sprintf("%d", *post.GroupID)
	}
	utils.Success(ctx, gin.H{
		"form":    PostForm{Title: post.Title, Text: post.Text, Group: group},
		"is_edit": true,
		"post":    post,
	})
}

// UpdatePost saves an author's edit and redirects to the post detail page.
// The creation timestamp is never touched.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadOwnedPost(ctx)
	if !ok {
		return
	}

	form := PostForm{
		Title: ctx.PostForm("title"),
		Text:  ctx.PostForm("text"),
		Group: ctx.PostForm("group"),
	}
	values, errs := form.Validate(p.db)
	if errs != nil {
		utils.FormErrors(ctx, form, errs)
		return
	}

	updates := map[string]interface{}{
		"title":      values.Title,
		"text":       values.Text,
		"group_id":   values.GroupID,
		"updated_at": time.Now(),
	}
	userID, _ := getUserID(ctx)
	if imageURL, err := p.saveImage(ctx, userID); err != nil {
		utils.FormErrors(ctx, form, map[string]string{"image": err.Error()})
		return
	} else if imageURL != "" {
		updates["image_url"] = imageURL
	}

	if err := p.db.Model(&post).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to update post")
		return
	}

	ctx.Redirect(http.StatusFound, postPath(post.ID))
}

// AddComment binds a comment to the post and the authenticated user, then
// redirects back to the post. Invalid text stores nothing.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	form := CommentForm{Text: ctx.PostForm("text")}
	if text, errs := form.Validate(); errs == nil {
		comment := models.Comment{
			PostID: post.ID,
			UserID: userID,
			Text:   text,
		}
		if err := p.db.Create(&comment).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create comment")
			return
		}
	}

	ctx.Redirect(http.StatusFound, postPath(post.ID))
}

// loadPost fetches the post named by the id path parameter, writing the
// not-found response itself when the lookup fails.
func (p *PostController) loadPost(ctx *gin.Context) (models.Post, bool) {
	var post models.Post
	err := p.db.Preload("User").Preload("Group").First(&post, "id = ?", ctx.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		}
		return models.Post{}, false
	}
	return post, true
}

// loadOwnedPost fetches the post and enforces the edit ownership rule:
// a non-author is 302-redirected to the author's profile.
func (p *PostController) loadOwnedPost(ctx *gin.Context) (models.Post, bool) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return models.Post{}, false
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return models.Post{}, false
	}
	if post.UserID != userID {
		ctx.Redirect(http.StatusFound, profilePath(post.User.Username))
		ctx.Abort()
		return models.Post{}, false
	}
	return post, true
}

// saveImage stores an optional uploaded image under the upload directory and
// returns its public URL. Returns "" when the form carries no image.
func (p *PostController) saveImage(ctx *gin.Context, userID uint) (string, error) {
	file, err := ctx.FormFile("image")
	if err != nil {
		// The image is optional; treat any missing-part error as "no image".
		return "", nil
	}

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return "", fmt.Errorf("image exceeds %dMB", cfg.UploadMaxSizeMB)
	}

	now := time.Now()
	dir := filepath.Join(cfg.UploadDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to store image")
	}

	ext := filepath.Ext(filepath.Base(file.Filename))
	name := fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext)
	dst := filepath.Join(dir, name)

	if err := saveUploadedFile(file, dst, maxSize); err != nil {
		return "", fmt.Errorf("failed to store image")
	}

	return "/" + filepath.ToSlash(dst), nil
}

func saveUploadedFile(file *multipart.FileHeader, dst string, maxSize int64) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := io.Copy(out, &io.LimitedReader{R: src, N: maxSize + 1})
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if written > maxSize {
		_ = os.Remove(dst)
		return fmt.Errorf("file too large")
	}
	return nil
}
