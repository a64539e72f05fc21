package businessflow

import (
	"context"
	"strings"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/repository"
)

// ScriptViewFlow serves the public read side: script detail and tag listing
type ScriptViewFlow interface {
	GetScript(ctx context.Context, permalink string, isAdmin bool) (*dto.ScriptViewResponse, error)
	ListTags(ctx context.Context, limit int) (*dto.TagListResponse, error)
}

type ScriptViewFlowImpl struct {
	scriptRepo  repository.ScriptRepository
	commentRepo repository.CommentRepository
	tagRepo     repository.TagRepository
}

func NewScriptViewFlow(
	scriptRepo repository.ScriptRepository,
	commentRepo repository.CommentRepository,
	tagRepo repository.TagRepository,
) ScriptViewFlow {
	return &ScriptViewFlowImpl{
		scriptRepo:  scriptRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
	}
}

// GetScript loads a script and its comments by permalink. A blank permalink
// and an unknown permalink are distinct failures so the handler can map them
// to different status codes.
func (f *ScriptViewFlowImpl) GetScript(ctx context.Context, permalink string, isAdmin bool) (*dto.ScriptViewResponse, error) {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		return nil, ErrPermalinkMissing
	}

	script, err := f.scriptRepo.ByPermalink(ctx, permalink)
	if err != nil {
		return nil, NewBusinessError("SCRIPT_LOOKUP_FAILED", "failed to look up script", err)
	}
	if script == nil {
		return nil, ErrScriptNotFound
	}

	comments, err := f.commentRepo.ListByScript(ctx, script.ID)
	if err != nil {
		return nil, NewBusinessError("COMMENT_LOOKUP_FAILED", "failed to load comments", err)
	}

	commentDTOs := make([]dto.CommentDTO, 0, len(comments))
	for i := range comments {
		commentDTOs = append(commentDTOs, toCommentDTO(comments[i]))
	}

	return &dto.ScriptViewResponse{
		Script:   toScriptDTO(script),
		Comments: commentDTOs,
		IsAdmin:  isAdmin,
	}, nil
}

// ListTags returns tags ordered by usage count. limit <= 0 returns all tags.
func (f *ScriptViewFlowImpl) ListTags(ctx context.Context, limit int) (*dto.TagListResponse, error) {
	tags, err := f.tagRepo.ByFilter(ctx, models.TagFilter{}, "count DESC, name ASC", limit, 0)
	if err != nil {
		return nil, NewBusinessError("TAG_LOOKUP_FAILED", "failed to list tags", err)
	}

	tagDTOs := make([]dto.TagDTO, 0, len(tags))
	for i := range tags {
		tagDTOs = append(tagDTOs, toTagDTO(tags[i]))
	}
	return &dto.TagListResponse{Tags: tagDTOs}, nil
}
