package logic

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/jwt"
	"gameforum/pkg/metrics"
	"gameforum/pkg/snowflake"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates the account and its profile in one transaction and
// signs the new user in.
func (s *Service) Register(ctx context.Context, p *models.ParamSignUp) (*models.AuthResult, error) {
	username := strings.TrimSpace(p.Username)
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if err := validateSignUp(username, email, p.Password, p.RePassword); err != nil {
		return nil, err
	}

	// 1. Friendly pre-checks; the unique indexes settle any race below.
	taken, err := database.EmailTaken(ctx, s.DB, email)
	if err != nil {
		return nil, storageErr("database.EmailTaken", err, nil, zap.String("email", email))
	}
	if taken {
		return nil, errorx.ErrDuplicateEmail
	}
	taken, err = database.UsernameTaken(ctx, s.DB, username)
	if err != nil {
		return nil, storageErr("database.UsernameTaken", err, nil, zap.String("username", username))
	}
	if taken {
		return nil, errorx.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("bcrypt.GenerateFromPassword failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	user := &models.User{
		ID:       models.UserID(snowflake.GenID()),
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	profile := &models.Profile{
		ID:        models.ProfileID(snowflake.GenID()),
		UserID:    user.ID,
		Username:  username,
		AvatarURL: s.defaultAvatar(username),
		Role:      models.RoleUser,
	}

	// 2. User and profile live or die together.
	err = s.DB.Transaction(ctx, func(tx database.QueryClient) error {
		if err := database.InsertUser(ctx, tx, user); err != nil {
			return err
		}
		return database.InsertProfile(ctx, tx, profile)
	})
	if err != nil {
		if database.IsConstraint(err) {
			return nil, s.duplicateCause(ctx, email)
		}
		return nil, storageErr("database.InsertUser", err, nil, zap.String("username", username))
	}

	return s.issueSession(ctx, user, profile)
}

// duplicateCause tells which unique key a racing registration hit.
func (s *Service) duplicateCause(ctx context.Context, email string) error {
	if taken, err := database.EmailTaken(ctx, s.DB, email); err == nil && taken {
		return errorx.ErrDuplicateEmail
	}
	return errorx.ErrDuplicateUsername
}

func (s *Service) defaultAvatar(username string) string {
	if s.Forum.DefaultAvatar == "" {
		return ""
	}
	return fmt.Sprintf(s.Forum.DefaultAvatar, url.QueryEscape(username))
}

// Login checks the password and replaces any earlier session.
func (s *Service) Login(ctx context.Context, p *models.ParamLogin) (*models.AuthResult, error) {
	email := strings.TrimSpace(p.Email)
	user, err := database.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, storageErr("database.GetUserByEmail", err, nil, zap.String("email", email))
	}
	if user == nil {
		return nil, errorx.ErrUserNotExist
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(p.Password)); err != nil {
		return nil, errorx.ErrInvalidPassword
	}

	profile, err := database.GetProfileByUserID(ctx, s.DB, user.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, storageErr("database.GetProfileByUserID", err, nil, zap.Int64("user_id", int64(user.ID)))
	}
	return s.issueSession(ctx, user, profile)
}

// issueSession signs a token and records it as the active session.
func (s *Service) issueSession(ctx context.Context, user *models.User, profile *models.Profile) (*models.AuthResult, error) {
	ttl := s.JWT.SessionTTL
	token, err := s.Codec.Encode(jwt.Identity{UserID: int64(user.ID), Email: user.Email}, ttl)
	if err != nil {
		zap.L().Error("jwt.Encode failed", zap.Int64("user_id", int64(user.ID)), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err = s.Redis.PersistSession(ctx, user.ID, token, ttl); err != nil {
		zap.L().Error("redis.PersistSession failed", zap.Int64("user_id", int64(user.ID)), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &models.AuthResult{
		User:      sessionUser(user, profile),
		Token:     token,
		ExpiresAt: s.now().Add(ttl).Truncate(time.Second),
	}, nil
}

func sessionUser(user *models.User, profile *models.Profile) *models.SessionUser {
	su := &models.SessionUser{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		DisplayName: user.Username,
	}
	if profile != nil {
		su.ProfileID = profile.ID
		su.DisplayName = profile.Name()
		su.AvatarURL = profile.AvatarURL
	}
	return su
}

// ValidateSession resolves a bearer token into the signed-in user. The
// token must decode, be unexpired, be the active session of its user and
// belong to a user that still exists. When Redis cannot be reached the
// registry check is skipped unless sessions are strict.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.SessionUser, error) {
	su, outcome, err := s.validateSession(ctx, token)
	metrics.SessionChecks.WithLabelValues(outcome).Inc()
	return su, err
}

func (s *Service) validateSession(ctx context.Context, token string) (*models.SessionUser, string, error) {
	if token == "" {
		return nil, "no_token", errorx.ErrNeedLogin
	}
	claims, err := s.Codec.Decode(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "expired", errorx.ErrTokenExpired
		}
		return nil, "malformed", errorx.ErrTokenMalformed
	}
	uid := models.UserID(claims.UserID)

	outcome := "ok"
	active, err := s.Redis.ReadSession(ctx, uid)
	switch {
	case err != nil && s.JWT.StrictSession:
		zap.L().Error("redis.ReadSession failed", zap.Int64("user_id", int64(uid)), zap.Error(err))
		return nil, "registry_down", errorx.ErrServerBusy
	case err != nil:
		zap.L().Warn("session registry unavailable, trusting token signature",
			zap.Int64("user_id", int64(uid)), zap.Error(err))
		outcome = "degraded"
	case active != token:
		return nil, "revoked", errorx.ErrSessionRevoked
	}

	user, err := database.GetUserByID(ctx, s.DB, uid)
	if err != nil {
		return nil, "error", storageErr("database.GetUserByID", err, nil, zap.Int64("user_id", int64(uid)))
	}
	if user == nil {
		// The account is gone; its session goes with it.
		if err = s.Redis.ClearSession(ctx, uid); err != nil {
			zap.L().Warn("redis.ClearSession failed", zap.Int64("user_id", int64(uid)), zap.Error(err))
		}
		return nil, "user_missing", errorx.ErrSessionUserMissing
	}

	profile, err := database.GetProfileByUserID(ctx, s.DB, uid)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		zap.L().Warn("profile enrichment failed", zap.Int64("user_id", int64(uid)), zap.Error(err))
		profile = nil
	}
	return sessionUser(user, profile), outcome, nil
}

// RefreshSession exchanges a still valid token for a fresh one.
func (s *Service) RefreshSession(ctx context.Context, token string) (*models.AuthResult, error) {
	su, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := database.GetUserByID(ctx, s.DB, su.ID)
	if err != nil {
		return nil, storageErr("database.GetUserByID", err, nil, zap.Int64("user_id", int64(su.ID)))
	}
	if user == nil {
		return nil, errorx.ErrSessionUserMissing
	}
	profile, err := database.GetProfileByUserID(ctx, s.DB, user.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, storageErr("database.GetProfileByUserID", err, nil, zap.Int64("user_id", int64(user.ID)))
	}
	return s.issueSession(ctx, user, profile)
}

// Logout clears the active session of uid.
func (s *Service) Logout(ctx context.Context, uid models.UserID) error {
	if err := s.Redis.ClearSession(ctx, uid); err != nil {
		zap.L().Error("redis.ClearSession failed", zap.Int64("user_id", int64(uid)), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
