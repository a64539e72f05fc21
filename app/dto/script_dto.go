package dto

import "time"

// SubmitScriptRequest defines the payload for publishing a new script
type SubmitScriptRequest struct {
	Author       string `json:"author" form:"author" validate:"required,max=255"`
	Title        string `json:"title" form:"title" validate:"required,max=255"`
	Source       string `json:"source" form:"source" validate:"required"`
	Tags         string `json:"tags" form:"tags" validate:"omitempty,max=1024"`
	CaptchaID    string `json:"captcha_id" form:"captcha_id" validate:"omitempty,uuid"`
	CaptchaAngle int    `json:"captcha_angle" form:"captcha_angle" validate:"omitempty,min=0,max=360"`
}

// SubmitScriptResponse is returned after a script has been stored
type SubmitScriptResponse struct {
	Permalink string    `json:"permalink"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// ScriptDTO is the public representation of a stored script
type ScriptDTO struct {
	Permalink string    `json:"permalink"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// ScriptViewResponse bundles a script with its comments for the detail page
type ScriptViewResponse struct {
	Script   ScriptDTO    `json:"script"`
	Comments []CommentDTO `json:"comments"`
	// IsAdmin signals the caller may render destructive controls
	IsAdmin bool `json:"is_admin"`
}

// CommentDTO is the public representation of a script comment
type CommentDTO struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AddCommentRequest defines the payload for commenting on a script
type AddCommentRequest struct {
	Author       string `json:"author" form:"author" validate:"required,max=255"`
	Body         string `json:"body" form:"body" validate:"required"`
	CaptchaID    string `json:"captcha_id" form:"captcha_id" validate:"omitempty,uuid"`
	CaptchaAngle int    `json:"captcha_angle" form:"captcha_angle" validate:"omitempty,min=0,max=360"`
}

// AddCommentResponse is returned after a comment has been stored
type AddCommentResponse struct {
	Comment      CommentDTO `json:"comment"`
	CommentCount int64      `json:"comment_count"`
}

// TagDTO is a tag name with its usage counter
type TagDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TagListResponse lists tags ordered by usage
type TagListResponse struct {
	Tags []TagDTO `json:"tags"`
}
