package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sci-task/backend/internal/dto"
	"sci-task/backend/internal/model"
	"sci-task/backend/internal/repository"
	"sci-task/backend/pkg/jwt"
	"sci-task/backend/pkg/redis"
)

// 认证模块的业务错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrInvalidTokenType   = errors.New("令牌类型错误")
	ErrAdminNotFound      = errors.New("管理员不存在")
)

// AuthService 管理员认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, adminID string) (*dto.AdminProfileResponse, error)
	Register(ctx context.Context, req *dto.LoginRequest) (*dto.AdminProfileResponse, error)
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, error) {
	admin, err := s.repo.Admin.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(admin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("管理员登录", zap.String("username", admin.Username))
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询令牌黑名单失败", zap.Error(err))
		} else if blacklisted {
			return nil, jwt.ErrTokenInvalid
		}
	}

	admin, err := s.repo.Admin.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return s.issueTokens(admin)
}

// Logout 将访问令牌按剩余有效期拉黑，Redis 不可用时静默放行。
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtMgr.ParseToken(accessToken)
	if err != nil {
		return err
	}
	if s.rdb == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("加入令牌黑名单失败", zap.Error(err))
		return err
	}
	s.logger.Info("管理员登出", zap.String("username", claims.Username))
	return nil
}

func (s *authService) Profile(ctx context.Context, adminID string) (*dto.AdminProfileResponse, error) {
	admin, err := s.repo.Admin.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &dto.AdminProfileResponse{AdminID: admin.AdminID, Username: admin.Username}, nil
}

// Register 创建管理员账号，供初始化与后续添加使用。
func (s *authService) Register(ctx context.Context, req *dto.LoginRequest) (*dto.AdminProfileResponse, error) {
	if _, err := s.repo.Admin.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &model.AdminUser{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("管理员已创建", zap.String("username", admin.Username))
	return &dto.AdminProfileResponse{AdminID: admin.AdminID, Username: admin.Username}, nil
}

func (s *authService) issueTokens(admin *model.AdminUser) (*dto.TokenPairResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(admin.AdminID, admin.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(admin.AdminID, admin.Username)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}
