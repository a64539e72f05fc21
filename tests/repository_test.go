// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/repository"
	testingutil "github.com/scriptbin/scriptbin/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireTestDB provisions a throwaway database or skips the test when no
// PostgreSQL server is reachable, so the suite stays runnable without one.
func requireTestDB(t *testing.T) *testingutil.TestDB {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("skipping, test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("failed to cleanup test database: %v", err)
		}
	})
	return testDB
}

func TestScriptRepository(t *testing.T) {
	testDB := requireTestDB(t)
	repo := repository.NewScriptRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("SaveAndByPermalink", func(t *testing.T) {
		script := &models.Script{
			Permalink: "hello-world-abc123",
			Author:    "Ada",
			Title:     "Hello World",
			Source:    "print('hello')",
			Tags:      []string{"python", "demo"},
		}
		err := repo.Save(ctx, script)
		require.NoError(t, err)
		assert.NotZero(t, script.ID)

		found, err := repo.ByPermalink(ctx, "hello-world-abc123")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, script.ID, found.ID)
		assert.Equal(t, "Ada", found.Author)
		assert.Equal(t, []string{"python", "demo"}, []string(found.Tags))
	})

	t.Run("ByPermalinkNotFound", func(t *testing.T) {
		found, err := repo.ByPermalink(ctx, "no-such-permalink")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("PermalinkExists", func(t *testing.T) {
		script, err := fixtures.CreateTestScript("bash")
		require.NoError(t, err)

		exists, err := repo.PermalinkExists(ctx, script.Permalink)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.PermalinkExists(ctx, "definitely-free-permalink")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("DeleteCascade", func(t *testing.T) {
		script, err := fixtures.CreateTestScript()
		require.NoError(t, err)
		_, err = fixtures.CreateTestComment(script.ID, "first")
		require.NoError(t, err)
		_, err = fixtures.CreateTestComment(script.ID, "second")
		require.NoError(t, err)

		err = repo.DeleteCascade(ctx, script.ID)
		require.NoError(t, err)

		found, err := repo.ByPermalink(ctx, script.Permalink)
		require.NoError(t, err)
		assert.Nil(t, found)

		commentRepo := repository.NewCommentRepository(testDB.DB)
		count, err := commentRepo.CountByScript(ctx, script.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("ListAll", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		first, err := fixtures.CreateTestScript()
		require.NoError(t, err)
		second, err := fixtures.CreateTestScript()
		require.NoError(t, err)

		scripts, err := repo.ListAll(ctx, "id ASC")
		require.NoError(t, err)
		require.Len(t, scripts, 2)
		assert.Equal(t, first.Permalink, scripts[0].Permalink)
		assert.Equal(t, second.Permalink, scripts[1].Permalink)
	})

	t.Run("CountAndExists", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		script, err := fixtures.CreateTestScript()
		require.NoError(t, err)

		count, err := repo.Count(ctx, models.ScriptFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		exists, err := repo.Exists(ctx, models.ScriptFilter{Permalink: &script.Permalink})
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestCommentRepository(t *testing.T) {
	testDB := requireTestDB(t)
	repo := repository.NewCommentRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("ListByScriptOldestFirst", func(t *testing.T) {
		script, err := fixtures.CreateTestScript()
		require.NoError(t, err)

		first, err := fixtures.CreateTestComment(script.ID, "first comment")
		require.NoError(t, err)
		second, err := fixtures.CreateTestComment(script.ID, "second comment")
		require.NoError(t, err)

		comments, err := repo.ListByScript(ctx, script.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, first.ID, comments[0].ID)
		assert.Equal(t, second.ID, comments[1].ID)
	})

	t.Run("ListByScriptEmpty", func(t *testing.T) {
		script, err := fixtures.CreateTestScript()
		require.NoError(t, err)

		comments, err := repo.ListByScript(ctx, script.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("CountByScript", func(t *testing.T) {
		script, err := fixtures.CreateTestScript()
		require.NoError(t, err)
		other, err := fixtures.CreateTestScript()
		require.NoError(t, err)

		_, err = fixtures.CreateTestComment(script.ID, "on the first script")
		require.NoError(t, err)
		_, err = fixtures.CreateTestComment(other.ID, "on the other script")
		require.NoError(t, err)

		count, err := repo.CountByScript(ctx, script.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestTagRepository(t *testing.T) {
	testDB := requireTestDB(t)
	repo := repository.NewTagRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("IncrementByNameCreates", func(t *testing.T) {
		err := repo.IncrementByName(ctx, "golang")
		require.NoError(t, err)

		tag, err := repo.ByName(ctx, "golang")
		require.NoError(t, err)
		require.NotNil(t, tag)
		assert.Equal(t, int64(1), tag.Count)
	})

	t.Run("IncrementByNameBumpsExisting", func(t *testing.T) {
		require.NoError(t, repo.IncrementByName(ctx, "shell"))
		require.NoError(t, repo.IncrementByName(ctx, "shell"))
		require.NoError(t, repo.IncrementByName(ctx, "shell"))

		tag, err := repo.ByName(ctx, "shell")
		require.NoError(t, err)
		require.NotNil(t, tag)
		assert.Equal(t, int64(3), tag.Count)
	})

	t.Run("ByNameNotFound", func(t *testing.T) {
		tag, err := repo.ByName(ctx, "unused-tag")
		assert.NoError(t, err)
		assert.Nil(t, tag)
	})

	t.Run("ByFilterOrdersByUsage", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateTestTag("rare", 1)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTag("popular", 10)
		require.NoError(t, err)
		_, err = fixtures.CreateTestTag("common", 5)
		require.NoError(t, err)

		tags, err := repo.ByFilter(ctx, models.TagFilter{}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, tags, 3)
		assert.Equal(t, "popular", tags[0].Name)
		assert.Equal(t, "common", tags[1].Name)
		assert.Equal(t, "rare", tags[2].Name)
	})

	t.Run("ByFilterLimit", func(t *testing.T) {
		tags, err := repo.ByFilter(ctx, models.TagFilter{}, "", 2, 0)
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("ListByNames", func(t *testing.T) {
		tags, err := repo.ListByNames(ctx, []string{"popular", "rare"})
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		tags, err = repo.ListByNames(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestAdminRepository(t *testing.T) {
	testDB := requireTestDB(t)
	repo := repository.NewAdminRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("ByUsername", func(t *testing.T) {
		created, err := fixtures.CreateTestAdmin("moderator", "s3cret-password")
		require.NoError(t, err)

		admin, err := repo.ByUsername(ctx, "moderator")
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, created.ID, admin.ID)
		assert.Equal(t, created.UUID, admin.UUID)
	})

	t.Run("ByUsernameNotFound", func(t *testing.T) {
		admin, err := repo.ByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, admin)
	})

	t.Run("UpdateLastLogin", func(t *testing.T) {
		created, err := fixtures.CreateTestAdmin("login-admin", "s3cret-password")
		require.NoError(t, err)
		assert.Nil(t, created.LastLoginAt)

		err = repo.UpdateLastLogin(ctx, created.ID)
		require.NoError(t, err)

		admin, err := repo.ByUsername(ctx, "login-admin")
		require.NoError(t, err)
		require.NotNil(t, admin)
		require.NotNil(t, admin.LastLoginAt)
	})
}
