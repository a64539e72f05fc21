package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/scriptbin/scriptbin/app/dto"
	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/repository"
	"github.com/scriptbin/scriptbin/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminAuthFlow authenticates moderators
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error)
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.AdminRefreshTokenRequest) (*dto.AdminSessionDTO, error)
}

type AdminAuthFlowImpl struct {
	adminRepo      repository.AdminRepository
	captchaService services.CaptchaService
	tokenService   services.TokenService
	db             *gorm.DB
	debug          bool
}

func NewAdminAuthFlow(
	adminRepo repository.AdminRepository,
	captchaService services.CaptchaService,
	tokenService services.TokenService,
	db *gorm.DB,
	debug bool,
) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		adminRepo:      adminRepo,
		captchaService: captchaService,
		tokenService:   tokenService,
		db:             db,
		debug:          debug,
	}
}

// InitCaptcha issues a rotate captcha challenge for the login form
func (f *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error) {
	challenge, err := f.captchaService.Generate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_GENERATION_FAILED", "failed to generate captcha", err)
	}
	return &dto.AdminCaptchaInitResponse{
		ChallengeID: challenge.ID,
		MasterImage: challenge.MasterImageBase64,
		ThumbImage:  challenge.ThumbImageBase64,
		ExpiresAt:   utils.UTCNowAdd(utils.CaptchaChallengeTTL).Unix(),
	}, nil
}

// Login verifies captcha, credentials and account state, then issues a token
// pair. Every rejection path uses a distinct sentinel but handlers collapse
// them to a single 401 so the response does not leak which check failed.
func (f *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if !f.debug {
		if !f.captchaService.Verify(ctx, req.ChallengeID, float64(req.UserAngle)) {
			return nil, ErrInvalidCaptcha
		}
	}

	admin, err := f.adminRepo.ByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "failed to look up admin", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, ErrAdminInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	accessToken, refreshToken, err := f.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate tokens", err)
	}

	if err := f.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		// Login already succeeded, a stale timestamp is not worth failing for
		log.Printf("failed to update last login for admin %d: %v", admin.ID, err)
	}

	log.Printf("admin login: username=%s ip=%s", admin.Username, metadata.IPAddress)

	return &dto.AdminLoginResponse{
		Admin: toAdminDTO(admin),
		Session: dto.AdminSessionDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(utils.AccessTokenTTL.Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair
func (f *AdminAuthFlowImpl) RefreshToken(ctx context.Context, req *dto.AdminRefreshTokenRequest) (*dto.AdminSessionDTO, error) {
	accessToken, refreshToken, err := f.tokenService.RefreshAdminToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "failed to refresh token", err)
	}
	return &dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(utils.AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}
