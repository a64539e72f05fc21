package businessflow

import (
	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/utils"
)

// ClientMetadata carries request metadata into the flows for logging
type ClientMetadata struct {
	IPAddress string
	UserAgent string
}

func NewClientMetadata(ip, userAgent string) *ClientMetadata {
	return &ClientMetadata{IPAddress: ip, UserAgent: userAgent}
}

func toScriptDTO(s *models.Script) dto.ScriptDTO {
	return dto.ScriptDTO{
		Permalink: s.Permalink,
		Author:    s.Author,
		Title:     s.Title,
		Source:    s.Source,
		Tags:      append([]string(nil), s.Tags...),
		CreatedAt: s.CreatedAt,
	}
}

func toCommentDTO(c *models.Comment) dto.CommentDTO {
	return dto.CommentDTO{
		ID:        c.ID,
		Author:    c.Author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

func toTagDTO(t *models.Tag) dto.TagDTO {
	return dto.TagDTO{
		Name:  t.Name,
		Count: t.Count,
	}
}

func toAdminDTO(a *models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		UUID:        a.UUID.String(),
		Username:    a.Username,
		IsActive:    utils.IsTrue(a.IsActive),
		LastLoginAt: a.LastLoginAt,
	}
}
