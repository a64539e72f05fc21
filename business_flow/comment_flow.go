package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/repository"
	"github.com/scriptbin/scriptbin/utils"
)

// CommentFlow attaches reader comments to published scripts
type CommentFlow interface {
	AddComment(ctx context.Context, permalink string, req *dto.AddCommentRequest, metadata *ClientMetadata) (*dto.AddCommentResponse, error)
}

type CommentFlowImpl struct {
	scriptRepo     repository.ScriptRepository
	commentRepo    repository.CommentRepository
	captchaService services.CaptchaService
	debug          bool
}

func NewCommentFlow(
	scriptRepo repository.ScriptRepository,
	commentRepo repository.CommentRepository,
	captchaService services.CaptchaService,
	debug bool,
) CommentFlow {
	return &CommentFlowImpl{
		scriptRepo:     scriptRepo,
		commentRepo:    commentRepo,
		captchaService: captchaService,
		debug:          debug,
	}
}

// AddComment validates and stores a comment under the script identified by
// permalink. Comments on unknown scripts are rejected, never orphaned.
func (f *CommentFlowImpl) AddComment(ctx context.Context, permalink string, req *dto.AddCommentRequest, metadata *ClientMetadata) (*dto.AddCommentResponse, error) {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		return nil, ErrPermalinkMissing
	}

	if !f.debug {
		if !f.captchaService.Verify(ctx, req.CaptchaID, float64(req.CaptchaAngle)) {
			return nil, ErrInvalidCaptcha
		}
	}
	if strings.TrimSpace(req.Author) == "" {
		return nil, &FieldRequiredError{Field: "author"}
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, &FieldRequiredError{Field: "body"}
	}

	script, err := f.scriptRepo.ByPermalink(ctx, permalink)
	if err != nil {
		return nil, NewBusinessError("SCRIPT_LOOKUP_FAILED", "failed to look up script", err)
	}
	if script == nil {
		return nil, ErrScriptNotFound
	}

	comment := &models.Comment{
		ScriptID:  script.ID,
		Author:    strings.TrimSpace(req.Author),
		Body:      req.Body,
		CreatedAt: utils.UTCNow(),
	}
	if err := f.commentRepo.Save(ctx, comment); err != nil {
		return nil, NewBusinessError("COMMENT_SAVE_FAILED", "failed to save comment", err)
	}

	count, err := f.commentRepo.CountByScript(ctx, script.ID)
	if err != nil {
		return nil, NewBusinessError("COMMENT_COUNT_FAILED", "failed to count comments", err)
	}

	log.Printf("comment added: permalink=%s comment_id=%d ip=%s", permalink, comment.ID, metadata.IPAddress)

	return &dto.AddCommentResponse{
		Comment:      toCommentDTO(comment),
		CommentCount: count,
	}, nil
}
