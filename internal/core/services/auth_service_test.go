package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/config"
	"afps-backend/internal/pkg/password"
)

func newTestAuthService() (*AuthService, *mockPlayerRepo, *mockRefreshTokenRepo) {
	playerRepo := newMockPlayerRepo()
	tokenRepo := newMockRefreshTokenRepo()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(playerRepo, tokenRepo, &mockAuditRepo{}, cfg), playerRepo, tokenRepo
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("registered player logs in with CPF only", func(t *testing.T) {
		svc, playerRepo, tokenRepo := newTestAuthService()
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())

		resp, err := svc.Login(ctx, &LoginInput{CPF: "111.222.333-44"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected both tokens in response")
		}
		if resp.Player.CPF != "11122233344" {
			t.Errorf("expected normalized CPF, got %s", resp.Player.CPF)
		}
		if len(tokenRepo.tokens) != 1 {
			t.Errorf("expected 1 stored refresh token, got %d", len(tokenRepo.tokens))
		}
	})

	t.Run("admin requires password", func(t *testing.T) {
		svc, playerRepo, _ := newTestAuthService()
		hashed, _ := password.Hash("s3cret-admin")
		admin := activePlayer("11122233344", time.Now())
		admin.Role = models.RoleAdmin
		admin.Password = hashed
		playerRepo.players["11122233344"] = admin

		if _, err := svc.Login(ctx, &LoginInput{CPF: "11122233344"}); !errors.Is(err, ErrPasswordRequired) {
			t.Errorf("expected ErrPasswordRequired, got %v", err)
		}
		if _, err := svc.Login(ctx, &LoginInput{CPF: "11122233344", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := svc.Login(ctx, &LoginInput{CPF: "11122233344", Password: "s3cret-admin"}); err != nil {
			t.Errorf("expected admin login to succeed, got %v", err)
		}
	})

	t.Run("unknown CPF maps to invalid credentials", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		if _, err := svc.Login(ctx, &LoginInput{CPF: "99988877766"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("authorized but unregistered CPF cannot log in", func(t *testing.T) {
		svc, playerRepo, _ := newTestAuthService()
		playerRepo.players["11122233344"] = &models.Player{
			CPF:        "11122233344",
			Status:     models.PlayerStatusAuthorizedUnregistered,
			Authorized: true,
		}
		if _, err := svc.Login(ctx, &LoginInput{CPF: "11122233344"}); !errors.Is(err, ErrCPFNotAuthorized) {
			t.Errorf("expected ErrCPFNotAuthorized, got %v", err)
		}
	})

	t.Run("inactive account is rejected", func(t *testing.T) {
		svc, playerRepo, _ := newTestAuthService()
		player := activePlayer("11122233344", time.Now())
		player.Status = models.PlayerStatusInactive
		playerRepo.players["11122233344"] = player
		if _, err := svc.Login(ctx, &LoginInput{CPF: "11122233344"}); !errors.Is(err, ErrPlayerInactive) {
			t.Errorf("expected ErrPlayerInactive, got %v", err)
		}
	})

	t.Run("short CPF is rejected before any lookup", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		if _, err := svc.Login(ctx, &LoginInput{CPF: "123"}); !errors.Is(err, ErrInvalidCPF) {
			t.Errorf("expected ErrInvalidCPF, got %v", err)
		}
	})
}

func TestCheckCPF(t *testing.T) {
	ctx := context.Background()
	svc, playerRepo, _ := newTestAuthService()

	playerRepo.players["11122233344"] = &models.Player{
		CPF: "11122233344", Authorized: true,
		Status: models.PlayerStatusAuthorizedUnregistered,
	}
	playerRepo.players["55566677788"] = activePlayer("55566677788", time.Now())

	t.Run("authorized and unregistered", func(t *testing.T) {
		result, err := svc.CheckCPF(ctx, "11122233344")
		if err != nil {
			t.Fatalf("CheckCPF failed: %v", err)
		}
		if !result.Authorized || result.RegistrationCompleted {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("already registered", func(t *testing.T) {
		result, err := svc.CheckCPF(ctx, "55566677788")
		if err != nil {
			t.Fatalf("CheckCPF failed: %v", err)
		}
		if !result.Authorized || !result.RegistrationCompleted {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("unknown CPF probes as unauthorized, not as an error", func(t *testing.T) {
		result, err := svc.CheckCPF(ctx, "99988877766")
		if err != nil {
			t.Fatalf("CheckCPF failed: %v", err)
		}
		if result.Authorized {
			t.Error("unknown CPF must not report authorized")
		}
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	validInput := func() *RegisterInput {
		return &RegisterInput{
			CPF:       "11122233344",
			Name:      "Carlos Silva",
			Nickname:  "Carlão",
			Email:     "carlos@example.com",
			Phone:     "11999990000",
			BirthDate: "1990-05-12",
			Position:  "striker",
		}
	}

	t.Run("completes the profile and activates the account", func(t *testing.T) {
		svc, playerRepo, _ := newTestAuthService()
		playerRepo.players["11122233344"] = &models.Player{
			CPF: "11122233344", Authorized: true,
			Status: models.PlayerStatusAuthorizedUnregistered,
		}

		resp, err := svc.Register(ctx, validInput())
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("expected tokens after registration")
		}

		player := playerRepo.players["11122233344"]
		if !player.RegistrationCompleted || player.Status != models.PlayerStatusActive {
			t.Errorf("account not activated: %+v", player)
		}
		if player.BirthDate == nil {
			t.Error("birth date not parsed")
		}
		if player.Role != models.RolePlayer {
			t.Errorf("expected role player, got %s", player.Role)
		}
	})

	t.Run("unauthorized CPF cannot register", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		if _, err := svc.Register(ctx, validInput()); !errors.Is(err, ErrCPFNotAuthorized) {
			t.Errorf("expected ErrCPFNotAuthorized, got %v", err)
		}
	})

	t.Run("double registration is rejected", func(t *testing.T) {
		svc, playerRepo, _ := newTestAuthService()
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())

		if _, err := svc.Register(ctx, validInput()); !errors.Is(err, ErrAlreadyRegistered) {
			t.Errorf("expected ErrAlreadyRegistered, got %v", err)
		}
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	svc, playerRepo, tokenRepo := newTestAuthService()
	playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())

	login, err := svc.Login(ctx, &LoginInput{CPF: "11122233344"})
	if err != nil {
		t.Fatalf("login setup failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("rotation must issue a different refresh token")
	}

	// The old token is revoked and cannot be replayed
	if _, err := svc.RefreshToken(ctx, login.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked on replay, got %v", err)
	}

	// The new token still works
	if _, err := svc.RefreshToken(ctx, refreshed.RefreshToken); err != nil {
		t.Errorf("new token must refresh, got %v", err)
	}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.RefreshToken(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("logout all revokes every session", func(t *testing.T) {
		if err := svc.LogoutAll(ctx, "11122233344"); err != nil {
			t.Fatalf("LogoutAll failed: %v", err)
		}
		for _, token := range tokenRepo.tokens {
			if token.RevokedAt == nil {
				t.Error("expected every token revoked")
			}
		}
	})
}

func TestValidateAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, playerRepo, _ := newTestAuthService()
	playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())

	login, err := svc.Login(ctx, &LoginInput{CPF: "11122233344"})
	if err != nil {
		t.Fatalf("login setup failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.CPF != "11122233344" || claims.Role != models.RolePlayer {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateAccessToken("garbage"); err == nil {
		t.Error("expected garbage token to fail validation")
	}
}
