package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenlng/go-captcha/v2/base/imagedata"
	"github.com/wenlng/go-captcha/v2/rotate"
)

func newTestCaptchaService(t *testing.T) CaptchaService {
	t.Helper()
	svc, err := NewCaptchaService(2*time.Minute, 10, 220)
	require.NoError(t, err)
	return svc
}

func TestCaptchaGenerate(t *testing.T) {
	svc := newTestCaptchaService(t)

	challenge, err := svc.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, challenge)

	_, err = uuid.Parse(challenge.ID)
	assert.NoError(t, err, "challenge ID should be a UUID")
	assert.NotEmpty(t, challenge.MasterImageBase64)
	assert.NotEmpty(t, challenge.ThumbImageBase64)
}

func TestCaptchaGenerateUniqueIDs(t *testing.T) {
	svc := newTestCaptchaService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx)
	require.NoError(t, err)
	second, err := svc.Generate(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

type blocklessCaptData struct{}

func (blocklessCaptData) GetData() *rotate.Block                 { return nil }
func (blocklessCaptData) GetMasterImage() imagedata.PNGImageData { return nil }
func (blocklessCaptData) GetThumbImage() imagedata.PNGImageData  { return nil }

type blocklessRotator struct{}

func (blocklessRotator) Generate() (rotate.CaptchaData, error) { return blocklessCaptData{}, nil }

func TestCaptchaGenerateWithoutBlock(t *testing.T) {
	svc := &captchaServiceImpl{
		rotator: blocklessRotator{},
		store:   newChallengeStore(time.Minute),
		padding: 10,
	}

	challenge, err := svc.Generate(context.Background())
	require.Error(t, err)
	assert.Nil(t, challenge)
}

func TestCaptchaVerify(t *testing.T) {
	svc := newTestCaptchaService(t)
	ctx := context.Background()

	t.Run("UnknownChallengeFails", func(t *testing.T) {
		assert.False(t, svc.Verify(ctx, uuid.New().String(), 90))
	})

	t.Run("EmptyChallengeFails", func(t *testing.T) {
		assert.False(t, svc.Verify(ctx, "", 0))
	})

	t.Run("ChallengeIsSingleUse", func(t *testing.T) {
		challenge, err := svc.Generate(ctx)
		require.NoError(t, err)

		// first attempt consumes the challenge whatever the outcome
		svc.Verify(ctx, challenge.ID, 90)
		assert.False(t, svc.Verify(ctx, challenge.ID, 90))
	})
}

func TestCaptchaChallengeExpiry(t *testing.T) {
	svc, err := NewCaptchaService(-time.Second, 10, 220)
	require.NoError(t, err)
	ctx := context.Background()

	challenge, err := svc.Generate(ctx)
	require.NoError(t, err)

	// ttl <= 0 falls back to the default window, so the challenge is live
	impl, ok := svc.(*captchaServiceImpl)
	require.True(t, ok)
	_, found := impl.store.Take(challenge.ID)
	assert.True(t, found)
}
