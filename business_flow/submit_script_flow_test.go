package businessflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmitRequest() *dto.SubmitScriptRequest {
	return &dto.SubmitScriptRequest{
		Author: "Ada Lovelace",
		Title:  "Analytical Engine Notes",
		Source: "print('hello')",
		Tags:   "python, Notes python",
	}
}

func TestSubmitScript(t *testing.T) {
	ctx := context.Background()

	newFlow := func(scriptRepo *fakeScriptRepo, tagRepo *fakeTagRepo, captchaOK bool) (SubmitScriptFlow, *services.MockSitemapNotifier) {
		notifier := services.NewMockSitemapNotifier()
		flow := NewSubmitScriptFlow(scriptRepo, tagRepo, &fakeCaptchaService{ok: captchaOK}, notifier, nil, false)
		return flow, notifier
	}

	t.Run("Success", func(t *testing.T) {
		scriptRepo := newFakeScriptRepo()
		tagRepo := newFakeTagRepo()
		flow, notifier := newFlow(scriptRepo, tagRepo, true)

		resp, err := flow.Submit(ctx, validSubmitRequest(), testMetadata())
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.NotEmpty(t, resp.Permalink)
		assert.Equal(t, "/script/"+resp.Permalink, resp.Location)
		assert.False(t, resp.CreatedAt.IsZero())

		stored, err := scriptRepo.ByPermalink(ctx, resp.Permalink)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "Ada Lovelace", stored.Author)
		assert.Equal(t, "Analytical Engine Notes", stored.Title)

		// the raw tags field dedupes to two distinct tags, case untouched
		assert.ElementsMatch(t, []string{"python", "Notes"}, tagRepo.increments)
		assert.Equal(t, int64(1), tagRepo.counts["python"])

		// one ping per engine, enqueued only after the submission went through
		require.Len(t, notifier.Pings, 2)
		assert.Equal(t, resp.Permalink, notifier.Pings[0].Permalink)
		assert.Equal(t, resp.Permalink, notifier.Pings[1].Permalink)
	})

	t.Run("InvalidCaptcha", func(t *testing.T) {
		flow, notifier := newFlow(newFakeScriptRepo(), newFakeTagRepo(), false)

		resp, err := flow.Submit(ctx, validSubmitRequest(), testMetadata())
		assert.Nil(t, resp)
		assert.True(t, IsInvalidCaptcha(err))
		assert.Empty(t, notifier.Pings)
	})

	t.Run("DebugSkipsCaptcha", func(t *testing.T) {
		notifier := services.NewMockSitemapNotifier()
		captcha := &fakeCaptchaService{ok: false}
		flow := NewSubmitScriptFlow(newFakeScriptRepo(), newFakeTagRepo(), captcha, notifier, nil, true)

		resp, err := flow.Submit(ctx, validSubmitRequest(), testMetadata())
		require.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Empty(t, captcha.verified)
	})

	t.Run("RequiredFields", func(t *testing.T) {
		cases := []struct {
			name  string
			edit  func(*dto.SubmitScriptRequest)
			field string
		}{
			{"MissingAuthor", func(r *dto.SubmitScriptRequest) { r.Author = "   " }, "author"},
			{"MissingTitle", func(r *dto.SubmitScriptRequest) { r.Title = "" }, "title"},
			{"MissingSource", func(r *dto.SubmitScriptRequest) { r.Source = "\n\t" }, "source"},
			// source outranks title when both are blank
			{"MissingSourceAndTitle", func(r *dto.SubmitScriptRequest) {
				r.Source = ""
				r.Title = ""
			}, "source"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				flow, _ := newFlow(newFakeScriptRepo(), newFakeTagRepo(), true)
				req := validSubmitRequest()
				tc.edit(req)

				resp, err := flow.Submit(ctx, req, testMetadata())
				assert.Nil(t, resp)
				field, ok := IsFieldRequired(err)
				require.True(t, ok)
				assert.Equal(t, tc.field, field)
			})
		}
	})

	t.Run("PermalinkExhausted", func(t *testing.T) {
		scriptRepo := newFakeScriptRepo()
		scriptRepo.alwaysTaken = true
		flow, notifier := newFlow(scriptRepo, newFakeTagRepo(), true)

		resp, err := flow.Submit(ctx, validSubmitRequest(), testMetadata())
		assert.Nil(t, resp)
		assert.True(t, IsPermalinkExhausted(err))
		assert.Equal(t, maxPermalinkAttempts, scriptRepo.existsCalls)
		assert.Empty(t, notifier.Pings)
	})

	t.Run("SaveFailureSuppressesPings", func(t *testing.T) {
		scriptRepo := newFakeScriptRepo()
		scriptRepo.saveErr = errors.New("disk full")
		flow, notifier := newFlow(scriptRepo, newFakeTagRepo(), true)

		resp, err := flow.Submit(ctx, validSubmitRequest(), testMetadata())
		assert.Nil(t, resp)
		var bizErr *BusinessError
		require.ErrorAs(t, err, &bizErr)
		assert.Equal(t, "SCRIPT_SAVE_FAILED", bizErr.Code)
		assert.Empty(t, notifier.Pings)
	})
}

func TestSubmitScriptCollision(t *testing.T) {
	ctx := context.Background()
	scriptRepo := newFakeScriptRepo()
	tagRepo := newFakeTagRepo()
	notifier := services.NewMockSitemapNotifier()
	flow := NewSubmitScriptFlow(scriptRepo, tagRepo, &fakeCaptchaService{ok: true}, notifier, nil, false)

	// occupy the canonical permalink so the flow has to pick a variant
	req := validSubmitRequest()
	canonical := GeneratePermalink(req.Title, req.Author, req.Source)
	scriptRepo.Save(ctx, &models.Script{Permalink: canonical, Author: "x", Title: "x", Source: "x"})

	resp, err := flow.Submit(ctx, req, testMetadata())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEqual(t, canonical, resp.Permalink)
	prefix := canonical[:strings.LastIndex(canonical, "-")+1]
	assert.True(t, strings.HasPrefix(resp.Permalink, prefix),
		"variant %q should keep the slug prefix of %q", resp.Permalink, canonical)

	stored, err := scriptRepo.ByPermalink(ctx, resp.Permalink)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
