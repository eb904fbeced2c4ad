package jwt

import (
	"errors"
	"testing"
	"time"

	"sci-task/backend/config"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-at-least-16-chars",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	})
}

func TestManager_GenerateAndParse_AccessToken(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken("admin-001", "admin")
	if err != nil {
		t.Fatalf("生成 Access Token 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.AdminID != "admin-001" {
		t.Errorf("期望AdminID=admin-001，实际=%s", claims.AdminID)
	}
	if claims.Username != "admin" {
		t.Errorf("期望Username=admin，实际=%s", claims.Username)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("期望 JWT ID 非空")
	}
}

func TestManager_GenerateRefreshToken(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	token, err := m.GenerateRefreshToken("admin-001", "admin")
	if err != nil {
		t.Fatalf("生成 Refresh Token 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望TokenType=refresh，实际=%s", claims.TokenType)
	}
}

func TestManager_ParseToken_Expired(t *testing.T) {
	m := newTestManager(-time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken("admin-001", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager(15*time.Minute, 24*time.Hour)
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:       "another-secret-key-16-chars-min",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})

	token, err := m1.GenerateAccessToken("admin-001", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := m2.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestManager_ParseToken_Garbage(t *testing.T) {
	m := newTestManager(15*time.Minute, 24*time.Hour)

	if _, err := m.ParseToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
