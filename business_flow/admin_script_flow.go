package businessflow

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/repository"
	"github.com/scriptbin/scriptbin/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminScriptFlow covers the moderation surface: cascade delete and export
type AdminScriptFlow interface {
	DeleteScript(ctx context.Context, permalink string, metadata *ClientMetadata) (*dto.DeleteScriptResponse, error)
	ExportScripts(ctx context.Context) (string, []byte, error)
}

type AdminScriptFlowImpl struct {
	scriptRepo  repository.ScriptRepository
	commentRepo repository.CommentRepository
	db          *gorm.DB
}

func NewAdminScriptFlow(
	scriptRepo repository.ScriptRepository,
	commentRepo repository.CommentRepository,
	db *gorm.DB,
) AdminScriptFlow {
	return &AdminScriptFlowImpl{
		scriptRepo:  scriptRepo,
		commentRepo: commentRepo,
		db:          db,
	}
}

// DeleteScript removes a script and all of its comments in one transaction.
// The delete is idempotent at the HTTP layer but unknown permalinks are
// reported as not found so moderators notice typos.
func (f *AdminScriptFlowImpl) DeleteScript(ctx context.Context, permalink string, metadata *ClientMetadata) (*dto.DeleteScriptResponse, error) {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		return nil, ErrPermalinkMissing
	}

	var deletedComments int64
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		script, err := f.scriptRepo.ByPermalink(txCtx, permalink)
		if err != nil {
			return NewBusinessError("SCRIPT_LOOKUP_FAILED", "failed to look up script", err)
		}
		if script == nil {
			return ErrScriptNotFound
		}

		deletedComments, err = f.commentRepo.CountByScript(txCtx, script.ID)
		if err != nil {
			return NewBusinessError("COMMENT_COUNT_FAILED", "failed to count comments", err)
		}

		if err := f.scriptRepo.DeleteCascade(txCtx, script.ID); err != nil {
			return NewBusinessError("SCRIPT_DELETE_FAILED", "failed to delete script", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("script deleted: permalink=%s comments=%d ip=%s", permalink, deletedComments, metadata.IPAddress)

	return &dto.DeleteScriptResponse{
		Permalink:       permalink,
		DeletedComments: deletedComments,
	}, nil
}

// ExportScripts renders every stored script into a single-sheet workbook for
// offline review.
func (f *AdminScriptFlowImpl) ExportScripts(ctx context.Context) (string, []byte, error) {
	scripts, err := f.scriptRepo.ListAll(ctx, "created_at ASC, id ASC")
	if err != nil {
		return "", nil, NewBusinessError("FETCH_SCRIPTS_FAILED", "failed to fetch scripts", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "scripts"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "permalink", "author", "title", "tags", "comments", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, s := range scripts {
		commentCount, err := f.commentRepo.CountByScript(ctx, s.ID)
		if err != nil {
			return "", nil, NewBusinessError("COMMENT_COUNT_FAILED", "failed to count comments", err)
		}
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.Permalink,
			s.Author,
			s.Title,
			strings.Join(s.Tags, ","),
			strconv.FormatInt(commentCount, 10),
			utils.TimeToUTC(s.CreatedAt).Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to write Excel file", err)
	}
	filename := fmt.Sprintf("scripts_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}
