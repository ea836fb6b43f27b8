package model

import "time"

type Gender string

const (
	GenderMan   Gender = "man"
	GenderWoman Gender = "woman"
)

type User struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Surname                string     `json:"surname"`
	Gender                 Gender     `json:"gender,omitempty"`
	DOB                    *time.Time `json:"dob,omitempty"`
	ProfileImage           string     `json:"profileImage,omitempty"`
	ProfileBannerImage     string     `json:"profileBannerImage,omitempty"`
	CompanyName            string     `json:"companyName,omitempty"`
	PhoneNumber            string     `json:"phoneNumber,omitempty"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	IsActive               bool       `json:"isActive"`
	IsPhoneNumberVerified  bool       `json:"isPhoneNumberVerified"`
	IsEmailAddressVerified bool       `json:"isEmailAddressVerified"`
	IsCompanyProfile       bool       `json:"isCompanyProfile"`
	Rating                 float64    `json:"rating"`
	LastLogin              *time.Time `json:"lastLogin,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	PasswordHash           *string
	IsActive               *bool
	IsEmailAddressVerified *bool
	IsPhoneNumberVerified  *bool
	LastLogin              *time.Time
}

func (u UserUpdate) Apply(user *User) {
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if u.IsEmailAddressVerified != nil {
		user.IsEmailAddressVerified = *u.IsEmailAddressVerified
	}
	if u.IsPhoneNumberVerified != nil {
		user.IsPhoneNumberVerified = *u.IsPhoneNumberVerified
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		user.LastLogin = &t
	}
}

type Registration struct {
	Name                 string `json:"name"`
	Surname              string `json:"surname"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type AuthCodeType string

const (
	AuthCodeEmailVerification AuthCodeType = "email_verification"
	AuthCodePhoneVerification AuthCodeType = "phone_number_verification"
	AuthCodePasswordReset     AuthCodeType = "password_reset_verification"
)

func (t AuthCodeType) Valid() bool {
	switch t {
	case AuthCodeEmailVerification, AuthCodePhoneVerification, AuthCodePasswordReset:
		return true
	}
	return false
}

// AuthCode is a single-use secret bound to one user and one purpose.
type AuthCode struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Code      string       `json:"code"`
	Type      AuthCodeType `json:"type"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ValidAt reports whether the code has not expired at now.
func (c AuthCode) ValidAt(now time.Time) bool {
	return c.ExpiresAt.After(now)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
