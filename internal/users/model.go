package users

import (
	"strings"
	"time"
)

// User is the identity stored on first Google login.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile is the /me payload: the stored identity plus the live balance.
type Profile struct {
	User
	Credits int `json:"credits"`
}

func (u User) normalized() User {
	u.ID = strings.TrimSpace(u.ID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	u.PictureURL = strings.TrimSpace(u.PictureURL)
	return u
}
