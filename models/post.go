package models

import "time"

// Post is an entry published by a user, optionally filed under a group.
// CreatedAt is server-set at insert time and never touched by edits;
// listings order by it descending.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group     *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group,omitempty"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}
