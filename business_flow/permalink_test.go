package businessflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePermalink(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := GeneratePermalink("Hello World", "Ada", "print(1)")
		b := GeneratePermalink("Hello World", "Ada", "print(1)")
		assert.Equal(t, a, b)
	})

	t.Run("SlugPlusDigest", func(t *testing.T) {
		permalink := GeneratePermalink("Hello World", "Ada", "print(1)")
		assert.True(t, strings.HasPrefix(permalink, "hello-world-"))

		digest := permalink[strings.LastIndex(permalink, "-")+1:]
		assert.NotEmpty(t, digest)
		assert.LessOrEqual(t, len(digest), permalinkDigestLen)
	})

	t.Run("ContentChangesDigest", func(t *testing.T) {
		a := GeneratePermalink("Hello World", "Ada", "print(1)")
		b := GeneratePermalink("Hello World", "Ada", "print(2)")
		assert.NotEqual(t, a, b)
	})

	t.Run("AuthorChangesDigest", func(t *testing.T) {
		a := GeneratePermalink("Hello World", "Ada", "print(1)")
		b := GeneratePermalink("Hello World", "Grace", "print(1)")
		assert.NotEqual(t, a, b)
	})

	t.Run("SymbolTitleFallsBackToDigest", func(t *testing.T) {
		permalink := GeneratePermalink("!!! ???", "Ada", "print(1)")
		assert.NotEmpty(t, permalink)
		assert.NotContains(t, permalink, "-")
	})

	t.Run("URLSafe", func(t *testing.T) {
		permalink := GeneratePermalink("C'est la vie: 100% true!", "Ada", "echo")
		for _, r := range permalink {
			safe := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, safe, "unexpected rune %q in %q", r, permalink)
		}
	})

	t.Run("LongTitleTruncated", func(t *testing.T) {
		permalink := GeneratePermalink(strings.Repeat("very long title ", 20), "Ada", "echo")
		slug := permalink[:strings.LastIndex(permalink, "-")]
		assert.LessOrEqual(t, len(slug), permalinkSlugMaxLen)
	})
}

func TestRegeneratePermalink(t *testing.T) {
	t.Run("KeepsSlugPrefix", func(t *testing.T) {
		current := "hello-world-abc123"
		variant := RegeneratePermalink(current)
		assert.True(t, strings.HasPrefix(variant, "hello-world-"))

		suffix := variant[strings.LastIndex(variant, "-")+1:]
		assert.Len(t, suffix, permalinkDigestLen)
	})

	t.Run("ProducesDistinctVariants", func(t *testing.T) {
		seen := map[string]struct{}{}
		for i := 0; i < 16; i++ {
			seen[RegeneratePermalink("hello-world-abc123")] = struct{}{}
		}
		// 36^6 possibilities, 16 draws colliding down to one is not a thing
		assert.Greater(t, len(seen), 1)
	})

	t.Run("BareDigestReplaced", func(t *testing.T) {
		variant := RegeneratePermalink("abc123")
		require.Len(t, variant, permalinkDigestLen)
		assert.NotContains(t, variant, "-")
	})
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"MiXeD CaSe 42", "mixed-case-42"},
		{"trailing!!!", "trailing"},
		{"", ""},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.in), "slugify(%q)", tc.in)
	}
}
