package businessflow

import (
	"context"
	"testing"

	"github.com/scriptbin/scriptbin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScript(t *testing.T) {
	ctx := context.Background()

	scriptRepo := newFakeScriptRepo()
	commentRepo := newFakeCommentRepo()
	flow := NewScriptViewFlow(scriptRepo, commentRepo, newFakeTagRepo())

	script := scriptRepo.add(&models.Script{
		Permalink: "fizzbuzz-3k9x2a",
		Author:    "Grace",
		Title:     "FizzBuzz",
		Source:    "for i in range(100): ...",
		Tags:      []string{"python"},
	})
	require.NoError(t, commentRepo.Save(ctx, &models.Comment{ScriptID: script.ID, Author: "Reader", Body: "nice"}))
	require.NoError(t, commentRepo.Save(ctx, &models.Comment{ScriptID: script.ID, Author: "Other", Body: "thanks"}))

	t.Run("Found", func(t *testing.T) {
		resp, err := flow.GetScript(ctx, "fizzbuzz-3k9x2a", false)
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, "fizzbuzz-3k9x2a", resp.Script.Permalink)
		assert.Equal(t, "Grace", resp.Script.Author)
		assert.Equal(t, []string{"python"}, resp.Script.Tags)
		require.Len(t, resp.Comments, 2)
		assert.Equal(t, "nice", resp.Comments[0].Body)
		assert.False(t, resp.IsAdmin)
	})

	t.Run("AdminFlag", func(t *testing.T) {
		resp, err := flow.GetScript(ctx, "fizzbuzz-3k9x2a", true)
		require.NoError(t, err)
		assert.True(t, resp.IsAdmin)
	})

	t.Run("BlankPermalink", func(t *testing.T) {
		resp, err := flow.GetScript(ctx, "   ", false)
		assert.Nil(t, resp)
		assert.True(t, IsPermalinkMissing(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := flow.GetScript(ctx, "no-such-script", false)
		assert.Nil(t, resp)
		assert.True(t, IsScriptNotFound(err))
	})
}

func TestListTags(t *testing.T) {
	ctx := context.Background()

	tagRepo := newFakeTagRepo()
	tagRepo.counts["python"] = 12
	tagRepo.counts["bash"] = 4
	flow := NewScriptViewFlow(newFakeScriptRepo(), newFakeCommentRepo(), tagRepo)

	resp, err := flow.ListTags(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Len(t, resp.Tags, 2)

	limited, err := flow.ListTags(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Tags, 1)
}
