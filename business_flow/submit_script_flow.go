package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/repository"
	"github.com/scriptbin/scriptbin/utils"

	"gorm.io/gorm"
)

// SubmitScriptFlow publishes user submitted scripts
type SubmitScriptFlow interface {
	Submit(ctx context.Context, req *dto.SubmitScriptRequest, metadata *ClientMetadata) (*dto.SubmitScriptResponse, error)
}

type SubmitScriptFlowImpl struct {
	scriptRepo     repository.ScriptRepository
	tagRepo        repository.TagRepository
	captchaService services.CaptchaService
	notifier       services.SitemapNotifier
	db             *gorm.DB
	debug          bool
}

func NewSubmitScriptFlow(
	scriptRepo repository.ScriptRepository,
	tagRepo repository.TagRepository,
	captchaService services.CaptchaService,
	notifier services.SitemapNotifier,
	db *gorm.DB,
	debug bool,
) SubmitScriptFlow {
	return &SubmitScriptFlowImpl{
		scriptRepo:     scriptRepo,
		tagRepo:        tagRepo,
		captchaService: captchaService,
		notifier:       notifier,
		db:             db,
		debug:          debug,
	}
}

// Submit validates the request, stores the script with a unique permalink and
// bumps the usage counter of every referenced tag, all in one transaction.
// Sitemap notifications are dispatched only after the transaction commits.
func (f *SubmitScriptFlowImpl) Submit(ctx context.Context, req *dto.SubmitScriptRequest, metadata *ClientMetadata) (*dto.SubmitScriptResponse, error) {
	if err := f.validateSubmission(ctx, req); err != nil {
		return nil, err
	}

	tags := utils.SplitTags(req.Tags)
	script := &models.Script{
		Permalink: GeneratePermalink(req.Title, req.Author, req.Source),
		Author:    strings.TrimSpace(req.Author),
		Title:     strings.TrimSpace(req.Title),
		Source:    req.Source,
		Tags:      tags,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		permalink, err := f.resolvePermalink(txCtx, script.Permalink)
		if err != nil {
			return err
		}
		script.Permalink = permalink

		if err := f.scriptRepo.Save(txCtx, script); err != nil {
			return NewBusinessError("SCRIPT_SAVE_FAILED", "failed to save script", err)
		}

		for _, tag := range tags {
			if err := f.tagRepo.IncrementByName(txCtx, tag); err != nil {
				return NewBusinessError("TAG_UPDATE_FAILED", fmt.Sprintf("failed to update tag %q", tag), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("script published: permalink=%s author=%s tags=%d ip=%s",
		script.Permalink, script.Author, len(tags), metadata.IPAddress)

	// Post-commit, fire and forget. A notification failure never unpublishes
	// the script.
	f.notifier.NotifySitemaps(ctx, script.Permalink)

	return &dto.SubmitScriptResponse{
		Permalink: script.Permalink,
		Location:  "/script/" + script.Permalink,
		CreatedAt: script.CreatedAt,
	}, nil
}

func (f *SubmitScriptFlowImpl) validateSubmission(ctx context.Context, req *dto.SubmitScriptRequest) error {
	if !f.debug {
		if !f.captchaService.Verify(ctx, req.CaptchaID, float64(req.CaptchaAngle)) {
			return ErrInvalidCaptcha
		}
	}
	if strings.TrimSpace(req.Author) == "" {
		return &FieldRequiredError{Field: "author"}
	}
	if strings.TrimSpace(req.Source) == "" {
		return &FieldRequiredError{Field: "source"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return &FieldRequiredError{Field: "title"}
	}
	return nil
}

// resolvePermalink walks from the candidate through randomized variants until
// one is free, within the tx so the uniqueness check and insert cannot race
// across submissions.
func (f *SubmitScriptFlowImpl) resolvePermalink(ctx context.Context, candidate string) (string, error) {
	permalink := candidate
	for attempt := 0; attempt < maxPermalinkAttempts; attempt++ {
		exists, err := f.scriptRepo.PermalinkExists(ctx, permalink)
		if err != nil {
			return "", NewBusinessError("PERMALINK_CHECK_FAILED", "failed to check permalink", err)
		}
		if !exists {
			return permalink, nil
		}
		permalink = RegeneratePermalink(permalink)
	}
	return "", ErrPermalinkExhausted
}
