package dto

import "time"

// AdminCaptchaInitResponse carries a fresh rotate captcha challenge
type AdminCaptchaInitResponse struct {
	ChallengeID string `json:"challenge_id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
	ExpiresAt   int64  `json:"expires_at"`
}

// AdminLoginRequest defines the admin login payload
type AdminLoginRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	ChallengeID string `json:"challenge_id" validate:"required,uuid"`
	UserAngle   int    `json:"user_angle" validate:"min=0,max=360"`
}

// AdminDTO is the safe representation of an admin account
type AdminDTO struct {
	UUID        string     `json:"uuid"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AdminSessionDTO carries the issued token pair
type AdminSessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AdminLoginResponse is returned after a successful admin login
type AdminLoginResponse struct {
	Admin   AdminDTO        `json:"admin"`
	Session AdminSessionDTO `json:"session"`
}

// AdminRefreshTokenRequest defines the token refresh payload
type AdminRefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// DeleteScriptResponse reports the outcome of an admin cascade delete
type DeleteScriptResponse struct {
	Permalink       string `json:"permalink"`
	DeletedComments int64  `json:"deleted_comments"`
}
