package businessflow

import (
	"context"
	"errors"

	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/models"
)

// In-memory fakes backing the flow tests. WithTransaction runs the body
// directly when db is nil, so the flows exercise their real transaction
// wiring against these.

type fakeCaptchaService struct {
	ok       bool
	verified []string
}

func (s *fakeCaptchaService) Generate(ctx context.Context) (*services.CaptchaChallenge, error) {
	return &services.CaptchaChallenge{
		ID:                "11111111-2222-3333-4444-555555555555",
		MasterImageBase64: "data:image/png;base64,master",
		ThumbImageBase64:  "data:image/png;base64,thumb",
	}, nil
}

func (s *fakeCaptchaService) Verify(ctx context.Context, challengeID string, userAngle float64) bool {
	s.verified = append(s.verified, challengeID)
	return s.ok
}

type fakeScriptRepo struct {
	scripts map[string]*models.Script
	nextID  uint

	saveErr        error
	alwaysTaken    bool
	existsCalls    int
	deletedScripts []uint
}

func newFakeScriptRepo() *fakeScriptRepo {
	return &fakeScriptRepo{scripts: map[string]*models.Script{}}
}

func (r *fakeScriptRepo) add(script *models.Script) *models.Script {
	r.nextID++
	script.ID = r.nextID
	r.scripts[script.Permalink] = script
	return script
}

func (r *fakeScriptRepo) ByID(ctx context.Context, id uint) (*models.Script, error) {
	for _, s := range r.scripts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeScriptRepo) ByFilter(ctx context.Context, filter models.ScriptFilter, orderBy string, limit, offset int) ([]*models.Script, error) {
	return nil, nil
}

func (r *fakeScriptRepo) Save(ctx context.Context, script *models.Script) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.add(script)
	return nil
}

func (r *fakeScriptRepo) Count(ctx context.Context, filter models.ScriptFilter) (int64, error) {
	return int64(len(r.scripts)), nil
}

func (r *fakeScriptRepo) Exists(ctx context.Context, filter models.ScriptFilter) (bool, error) {
	return len(r.scripts) > 0, nil
}

func (r *fakeScriptRepo) ByPermalink(ctx context.Context, permalink string) (*models.Script, error) {
	return r.scripts[permalink], nil
}

func (r *fakeScriptRepo) PermalinkExists(ctx context.Context, permalink string) (bool, error) {
	r.existsCalls++
	if r.alwaysTaken {
		return true, nil
	}
	_, ok := r.scripts[permalink]
	return ok, nil
}

func (r *fakeScriptRepo) DeleteCascade(ctx context.Context, scriptID uint) error {
	for permalink, s := range r.scripts {
		if s.ID == scriptID {
			delete(r.scripts, permalink)
			r.deletedScripts = append(r.deletedScripts, scriptID)
			return nil
		}
	}
	return errors.New("script not found")
}

func (r *fakeScriptRepo) ListAll(ctx context.Context, orderBy string) ([]*models.Script, error) {
	out := make([]*models.Script, 0, len(r.scripts))
	for _, s := range r.scripts {
		out = append(out, s)
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments []*models.Comment
	nextID   uint
	saveErr  error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) ByID(ctx context.Context, id uint) (*models.Comment, error) {
	for _, c := range r.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCommentRepo) ByFilter(ctx context.Context, filter models.CommentFilter, orderBy string, limit, offset int) ([]*models.Comment, error) {
	return r.comments, nil
}

func (r *fakeCommentRepo) Save(ctx context.Context, comment *models.Comment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	comment.ID = r.nextID
	r.comments = append(r.comments, comment)
	return nil
}

func (r *fakeCommentRepo) Count(ctx context.Context, filter models.CommentFilter) (int64, error) {
	return int64(len(r.comments)), nil
}

func (r *fakeCommentRepo) Exists(ctx context.Context, filter models.CommentFilter) (bool, error) {
	return len(r.comments) > 0, nil
}

func (r *fakeCommentRepo) ListByScript(ctx context.Context, scriptID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range r.comments {
		if c.ScriptID == scriptID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) CountByScript(ctx context.Context, scriptID uint) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if c.ScriptID == scriptID {
			n++
		}
	}
	return n, nil
}

type fakeTagRepo struct {
	counts     map[string]int64
	increments []string
	incErr     error
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{counts: map[string]int64{}}
}

func (r *fakeTagRepo) ByID(ctx context.Context, id uint) (*models.Tag, error) {
	return nil, nil
}

func (r *fakeTagRepo) ByFilter(ctx context.Context, filter models.TagFilter, orderBy string, limit, offset int) ([]*models.Tag, error) {
	out := make([]*models.Tag, 0, len(r.counts))
	for name, count := range r.counts {
		out = append(out, &models.Tag{Name: name, Count: count})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTagRepo) Save(ctx context.Context, tag *models.Tag) error {
	r.counts[tag.Name] = tag.Count
	return nil
}

func (r *fakeTagRepo) Count(ctx context.Context, filter models.TagFilter) (int64, error) {
	return int64(len(r.counts)), nil
}

func (r *fakeTagRepo) Exists(ctx context.Context, filter models.TagFilter) (bool, error) {
	return len(r.counts) > 0, nil
}

func (r *fakeTagRepo) ByName(ctx context.Context, name string) (*models.Tag, error) {
	count, ok := r.counts[name]
	if !ok {
		return nil, nil
	}
	return &models.Tag{Name: name, Count: count}, nil
}

func (r *fakeTagRepo) IncrementByName(ctx context.Context, name string) error {
	if r.incErr != nil {
		return r.incErr
	}
	r.counts[name]++
	r.increments = append(r.increments, name)
	return nil
}

func (r *fakeTagRepo) ListByNames(ctx context.Context, names []string) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, name := range names {
		if count, ok := r.counts[name]; ok {
			out = append(out, &models.Tag{Name: name, Count: count})
		}
	}
	return out, nil
}

type fakeAdminRepo struct {
	admins        map[string]*models.Admin
	lastLoginIDs  []uint
	lastLoginErr  error
	byUsernameErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]*models.Admin{}}
}

func (r *fakeAdminRepo) ByID(ctx context.Context, id uint) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) ByFilter(ctx context.Context, filter models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	return nil, nil
}

func (r *fakeAdminRepo) Save(ctx context.Context, admin *models.Admin) error {
	r.admins[admin.Username] = admin
	return nil
}

func (r *fakeAdminRepo) Count(ctx context.Context, filter models.AdminFilter) (int64, error) {
	return int64(len(r.admins)), nil
}

func (r *fakeAdminRepo) Exists(ctx context.Context, filter models.AdminFilter) (bool, error) {
	return len(r.admins) > 0, nil
}

func (r *fakeAdminRepo) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if r.byUsernameErr != nil {
		return nil, r.byUsernameErr
	}
	return r.admins[username], nil
}

func (r *fakeAdminRepo) UpdateLastLogin(ctx context.Context, adminID uint) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	r.lastLoginIDs = append(r.lastLoginIDs, adminID)
	return nil
}

func testMetadata() *ClientMetadata {
	return NewClientMetadata("127.0.0.1", "test-agent")
}
