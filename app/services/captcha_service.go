// Package services provides external service integrations and technical concerns like captchas, tokens, and sitemap pings
package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
)

// CaptchaService gates script submissions, comments, and admin login
// This implementation uses the rotate captcha mode from go-captcha
// Reference: https://github.com/wenlng/go-captcha
//
// Flow:
// - Generate: returns a challenge ID and two base64 images (master and thumb)
// - Verify: validates a user-provided angle against the stored target angle with tolerance
// - Challenges are single-use, held in memory with a TTL, and consumed on verify
//
// The frontend renders the images and captures the rotation angle the user
// applies, then submits the angle together with the challenge ID.
type CaptchaService interface {
	// Generate creates a rotate captcha challenge and returns the assets and challenge ID
	Generate(ctx context.Context) (*CaptchaChallenge, error)
	// Verify validates the provided user angle for a given challenge ID
	Verify(ctx context.Context, challengeID string, userAngle float64) bool
}

type CaptchaChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

// rotateGenerator is the slice of rotate.Captcha this service needs
type rotateGenerator interface {
	Generate() (rotate.CaptchaData, error)
}

type captchaServiceImpl struct {
	rotator   rotateGenerator
	store     *challengeStore
	padding   int // tolerance for angle validation
	imgSizePx int // square size for rotate captcha images
}

// NewCaptchaService constructs a CaptchaService using rotate mode
// ttl: time window during which a challenge remains valid
// padding: acceptable angle difference (degrees) when validating
// imgSizePx: square size for generated images (e.g., 220)
func NewCaptchaService(ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}

	// Build a rotator with a few programmatically generated background images
	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(rotateBackgrounds(3, imgSizePx)),
	)
	rotator := builder.Make()

	return &captchaServiceImpl{
		rotator:   rotator,
		store:     newChallengeStore(ttl),
		padding:   padding,
		imgSizePx: imgSizePx,
	}, nil
}

func (s *captchaServiceImpl) Generate(ctx context.Context) (*CaptchaChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("rotate captcha returned no block")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	s.store.Put(challengeID, block.Angle)

	return &CaptchaChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) Verify(ctx context.Context, challengeID string, userAngle float64) bool {
	targetAngle, ok := s.store.Take(challengeID)
	if !ok {
		return false
	}

	// Round user-provided angle to integer degrees expected by the validator
	ua := int(math.Round(userAngle))
	return rotate.Validate(ua, targetAngle, s.padding)
}

// --- In-memory single-use challenge store with TTL ---

type challengeEntry struct {
	targetAngle int
	expiresAt   time.Time
}

type challengeStore struct {
	mu  sync.Mutex
	m   map[string]challengeEntry
	ttl time.Duration
}

func newChallengeStore(ttl time.Duration) *challengeStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	cs := &challengeStore{
		m:   make(map[string]challengeEntry),
		ttl: ttl,
	}
	go cs.cleanupLoop()
	return cs
}

func (s *challengeStore) Put(id string, targetAngle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = challengeEntry{
		targetAngle: targetAngle,
		expiresAt:   time.Now().Add(s.ttl),
	}
}

// Take removes and returns the challenge; every challenge is consumed on
// first verification attempt, pass or fail.
func (s *challengeStore) Take(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.targetAngle, true
}

func (s *challengeStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, v := range s.m {
			if now.After(v.expiresAt) {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// --- Utility: generate simple background images programmatically ---

func rotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, noiseGradientImage(size, size))
	}
	return imgs
}

func noiseGradientImage(w, h int) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// simple radial gradient + noise
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			dist := math.Sqrt(dx*dx + dy*dy)
			t := dist / float64(w/2)
			if t > 1 {
				t = 1
			}
			base := uint8(200 - int(150*t))
			noise := uint8(rand.Intn(30))
			rgba.Set(x, y, color.RGBA{R: base + noise/3, G: base, B: 255 - base/2, A: 255})
		}
	}
	// overlay a few rectangles
	fillRect(rgba, 10, 10, w/3, h/12, color.RGBA{R: 255, G: 255, B: 255, A: 32})
	fillRect(rgba, w/2, h/3, w/3, h/10, color.RGBA{R: 0, G: 0, B: 0, A: 24})
	return rgba
}

func fillRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
