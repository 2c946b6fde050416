package domain

import "time"

type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	Name             string
	Programme        *string
	Branch           *string
	Year             *int
	Semester         *int
	PhoneNo          *string
	ProfileImagePath *string // nil means no profile image
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) HasProfileImage() bool {
	return u.ProfileImagePath != nil && *u.ProfileImagePath != ""
}

// ProfileUpdate carries the editable profile attributes. Email and password
// are not editable through a profile update.
type ProfileUpdate struct {
	Name      string
	Programme *string
	Branch    *string
	Year      *int
	Semester  *int
	PhoneNo   *string
}
