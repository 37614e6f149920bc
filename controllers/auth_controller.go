package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// sessionTTL bounds how long a login cookie stays valid.
const sessionTTL = 7 * 24 * time.Hour

// AuthController implements the thin session layer: local signup, login and
// logout over an HTTP-only cookie. Identity management beyond this is out of
// scope for the platform.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SignupForm returns the empty signup form context.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"form": SignupForm{}, "next": ctx.Query("next")})
}

// Signup registers a local account, starts a session and redirects to the
// next target or the index.
func (a *AuthController) Signup(ctx *gin.Context) {
	form := SignupForm{
		Username: ctx.PostForm("username"),
		Email:    ctx.PostForm("email"),
		Password: ctx.PostForm("password"),
	}
	cleaned, errs := form.Validate()
	if errs != nil {
		form.Password = ""
		utils.FormErrors(ctx, form, errs)
		return
	}

	hash, err := utils.HashPassword(cleaned.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to hash password")
		return
	}

	user := models.User{
		Username:     cleaned.Username,
		Email:        cleaned.Email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			form.Password = ""
			utils.FormErrors(ctx, form, map[string]string{"username": "username is already taken"})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create user")
		return
	}

	a.startSession(ctx, user)
}

// LoginForm returns the empty login form context.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"form": gin.H{"username": ""}, "next": ctx.Query("next")})
}

// Login authenticates a local account, starts a session and redirects to the
// next target or the index.
func (a *AuthController) Login(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")
	if username == "" || password == "" {
		utils.FormErrors(ctx, gin.H{"username": username}, map[string]string{"__all__": "username and password are required"})
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a wrong password; do not leak which accounts exist.
			utils.FormErrors(ctx, gin.H{"username": username}, map[string]string{"__all__": "invalid username or password"})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load user")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		utils.FormErrors(ctx, gin.H{"username": username}, map[string]string{"__all__": "invalid username or password"})
		return
	}

	a.startSession(ctx, user)
}

// Logout drops the session cookie and redirects to the index.
func (a *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(utils.SessionCookie, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40413, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

func (a *AuthController) startSession(ctx *gin.Context, user models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, sessionTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to issue session")
		return
	}
	ctx.SetCookie(utils.SessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)

	next := ctx.Query("next")
	if next == "" {
		next = ctx.PostForm("next")
	}
	// Only same-site paths; anything else falls back to the index.
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	ctx.Redirect(http.StatusFound, next)
}
