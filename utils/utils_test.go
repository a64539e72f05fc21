package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"CommaSeparated", "go,web,paste", []string{"go", "web", "paste"}},
		{"SpaceSeparated", "go web paste", []string{"go", "web", "paste"}},
		{"MixedSeparators", "go, web\tpaste\nscripts", []string{"go", "web", "paste", "scripts"}},
		{"CasePreserved", "Go WEB", []string{"Go", "WEB"}},
		{"DedupedKeepingFirstSeen", "go, web, go, web", []string{"go", "web"}},
		{"CaseVariantsKeptDistinct", "go, Go, GO", []string{"go", "Go", "GO"}},
		{"BlanksDropped", " , ,, ", nil},
		{"Empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitTags(tc.in)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsTrue(t *testing.T) {
	assert.False(t, IsTrue(nil))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.True(t, IsTrue(ToPtr(true)))
}
