package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Password   string    `gorm:"not null" json:"-"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID" json:"-"`
	Timestamp
}

// Subscription is a follower -> author edge. A user never follows
// themselves; the pair is unique.
type Subscription struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_author" json:"user_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_author" json:"author_id"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}
