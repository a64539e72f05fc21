package businessflow

import (
	"crypto/rand"
	"hash/fnv"
	"math/big"
	"strconv"
	"strings"
)

const (
	// maxPermalinkAttempts bounds the uniqueness retry loop during submission
	maxPermalinkAttempts = 8

	permalinkSlugMaxLen = 48
	permalinkDigestLen  = 6
	base36Alphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GeneratePermalink derives the canonical permalink for a submission: a
// lowercase title slug followed by a short base36 digest of the content.
// Collisions are possible and handled by the caller via RegeneratePermalink.
func GeneratePermalink(title, author, source string) string {
	slug := slugify(title)
	digest := contentDigest(title + "\x00" + author + "\x00" + source)
	if slug == "" {
		return digest
	}
	return slug + "-" + digest
}

// RegeneratePermalink perturbs a colliding permalink by replacing its digest
// segment with fresh randomness. The slug prefix is preserved so the link
// stays readable.
func RegeneratePermalink(current string) string {
	suffix := randomBase36(permalinkDigestLen)
	idx := strings.LastIndex(current, "-")
	if idx <= 0 {
		return suffix
	}
	return current[:idx] + "-" + suffix
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= permalinkSlugMaxLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

func contentDigest(content string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	encoded := strconv.FormatUint(h.Sum64(), 36)
	if len(encoded) > permalinkDigestLen {
		encoded = encoded[len(encoded)-permalinkDigestLen:]
	}
	return encoded
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36Alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms
			b[i] = base36Alphabet[0]
			continue
		}
		b[i] = base36Alphabet[idx.Int64()]
	}
	return string(b)
}
