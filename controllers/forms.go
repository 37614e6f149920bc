package controllers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/utils"
)

// Each form gets an explicit typed validator returning either the cleaned
// values or a field->message error map; handlers re-render the form with
// the map instead of failing the request.

// PostForm carries the raw submitted fields of the create/edit post form.
type PostForm struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Group string `json:"group"`
}

// PostValues holds the cleaned, persistable values of a valid PostForm.
type PostValues struct {
	Title   string
	Text    string
	GroupID *uint
}

// Validate sanitizes and checks the form. The group, when given, must name
// an existing group id.
func (f PostForm) Validate(db *gorm.DB) (PostValues, map[string]string) {
	errs := map[string]string{}
	values := PostValues{
		Title: utils.Sanitize(strings.TrimSpace(f.Title)),
		Text:  utils.Sanitize(strings.TrimSpace(f.Text)),
	}
	if values.Title == "" {
		errs["title"] = "title is required"
	}
	if values.Text == "" {
		errs["text"] = "text is required"
	}
	if raw := strings.TrimSpace(f.Group); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			errs["group"] = "invalid group"
		} else {
			var group models.Group
			if err := db.First(&group, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					errs["group"] = "unknown group"
				} else {
					errs["group"] = "group lookup failed"
				}
			} else {
				values.GroupID = &group.ID
			}
		}
	}
	if len(errs) > 0 {
		return PostValues{}, errs
	}
	return values, nil
}

// CommentForm carries the raw submitted comment text.
type CommentForm struct {
	Text string `json:"text"`
}

// Validate sanitizes the comment text and requires it to be non-empty.
func (f CommentForm) Validate() (string, map[string]string) {
	text := utils.Sanitize(strings.TrimSpace(f.Text))
	if text == "" {
		return "", map[string]string{"text": "text is required"}
	}
	return text, nil
}

// GroupForm carries the raw submitted fields of the group creation form.
type GroupForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate sanitizes and checks the group form.
func (f GroupForm) Validate() (GroupForm, map[string]string) {
	errs := map[string]string{}
	cleaned := GroupForm{
		Title:       utils.Sanitize(strings.TrimSpace(f.Title)),
		Description: utils.Sanitize(strings.TrimSpace(f.Description)),
	}
	if cleaned.Title == "" {
		errs["title"] = "title is required"
	}
	if len(errs) > 0 {
		return GroupForm{}, errs
	}
	return cleaned, nil
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// SignupForm carries the raw submitted signup fields.
type SignupForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks identity constraints except uniqueness, which the store's
// unique index decides at insert time.
func (f SignupForm) Validate() (SignupForm, map[string]string) {
	errs := map[string]string{}
	cleaned := SignupForm{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
	if !usernameRe.MatchString(cleaned.Username) {
		errs["username"] = "username must be 3-64 characters of letters, digits, dot, dash or underscore"
	}
	if len(cleaned.Password) < 6 {
		errs["password"] = "password must be at least 6 characters"
	}
	if len(errs) > 0 {
		return SignupForm{}, errs
	}
	return cleaned, nil
}
