// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package service

import (
	"context"
	"strings"

	"github.com/technoborsch/easyview/internal/apperr"
	"github.com/technoborsch/easyview/internal/auth"
	"github.com/technoborsch/easyview/internal/authz"
	"github.com/technoborsch/easyview/internal/cascade"
	"github.com/technoborsch/easyview/internal/events"
	"github.com/technoborsch/easyview/internal/logging"
	"github.com/technoborsch/easyview/internal/models"
	"github.com/technoborsch/easyview/internal/store"
	"github.com/technoborsch/easyview/internal/token"
)

// IdentityService handles registration, login and identity lifecycle.
type IdentityService struct {
	store      *store.Store
	tokens     *token.Service
	authz      *authz.Engine
	cascade    *cascade.Manager
	lockout    *auth.Lockout
	bus        cascade.Publisher
	bcryptCost int
}

// NewIdentityService creates the identity service. bus may be nil.
func NewIdentityService(st *store.Store, tokens *token.Service, engine *authz.Engine, manager *cascade.Manager, lockout *auth.Lockout, bus cascade.Publisher, bcryptCost int) *IdentityService {
	return &IdentityService{
		store:      st,
		tokens:     tokens,
		authz:      engine,
		cascade:    manager,
		lockout:    lockout,
		bus:        bus,
		bcryptCost: bcryptCost,
	}
}

func (s *IdentityService) audit(ctx context.Context, kind, identityID string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, events.AuditEvent{
		Kind:       kind,
		EntityType: "identity",
		EntityID:   identityID,
	})
	if err != nil {
		logging.Error().Err(err).Str("kind", kind).Msg("Failed to publish audit event")
	}
}

// RegisterRequest declares the registration fields.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,username"`
	Name     string `json:"name" validate:"omitempty,max=128"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Register creates a new identity. Email and username uniqueness is
// enforced by the store; a duplicate fails with Conflict.
func (s *IdentityService) Register(ctx context.Context, req RegisterRequest) (*models.Identity, error) {
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Fatal("failed to process password", err)
	}

	identity := models.NewIdentity(strings.ToLower(req.Email), req.Username, hash)
	identity.Name = req.Name

	if err := s.store.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}

	s.audit(ctx, events.KindIdentityRegistered, identity.ID)
	return identity, nil
}

// LoginRequest declares the login fields. Login accepts a username or an
// email address.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// Login verifies credentials and issues a token pair. All failure modes
// share one message so a response cannot be used to probe which logins
// exist; failed attempts count toward the account lockout.
func (s *IdentityService) Login(ctx context.Context, req LoginRequest) (*models.Identity, TokenPair, error) {
	const failedMsg = "invalid login or password"

	if s.lockout != nil && !s.lockout.Allowed(req.Login) {
		auth.RecordLockout()
		return nil, TokenPair{}, apperr.Unauthenticated("too many failed login attempts")
	}

	identity, err := s.findByLogin(ctx, req.Login)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if identity == nil || !identity.IsActive || !auth.CheckPassword(identity.PasswordHash, req.Password) {
		if s.lockout != nil {
			s.lockout.RecordFailure(req.Login)
		}
		return nil, TokenPair{}, apperr.Unauthenticated(failedMsg)
	}

	pair, err := s.issuePair(ctx, identity.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if s.lockout != nil {
		s.lockout.Clear(req.Login)
	}
	return identity, pair, nil
}

func (s *IdentityService) findByLogin(ctx context.Context, login string) (*models.Identity, error) {
	if strings.Contains(login, "@") {
		return s.store.FindIdentityByEmail(ctx, strings.ToLower(login))
	}
	return s.store.FindIdentityByUsername(ctx, login)
}

func (s *IdentityService) issuePair(ctx context.Context, identityID string) (TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(ctx, identityID)
	if err != nil {
		return TokenPair{}, apperr.Fatal("failed to issue credentials", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, identityID)
	if err != nil {
		return TokenPair{}, apperr.Fatal("failed to issue credentials", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the presented token and the identity's active refresh
// token, so neither half of the pair survives.
func (s *IdentityService) Logout(ctx context.Context, identity *models.Identity, presentedToken string) error {
	if err := s.tokens.Revoke(ctx, presentedToken); err != nil {
		return apperr.Fatal("failed to revoke credential", err)
	}
	if err := s.tokens.RevokeAllForIdentity(ctx, identity.ID); err != nil {
		return apperr.Fatal("failed to revoke credential", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a fresh pair.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	access, refresh, err := s.tokens.RotateRefresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindUnauthenticated, "invalid refresh credential", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Get returns an identity by id, NotFound when absent.
func (s *IdentityService) Get(ctx context.Context, id string) (*models.Identity, error) {
	identity, err := s.store.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperr.NotFound("identity not found")
	}
	return identity, nil
}

// UpdateIdentityRequest declares the mutable identity fields. Absent
// pointers leave the field unchanged.
type UpdateIdentityRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,username"`
	Name     *string `json:"name" validate:"omitempty,max=128"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// Update mutates an identity. Only the identity itself or a privileged
// actor may do so; email/username collisions fail with Conflict.
func (s *IdentityService) Update(ctx context.Context, actor *models.Identity, id string, req UpdateIdentityRequest) (*models.Identity, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	identity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeIdentity(actor, identity, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Email != nil {
		identity.Email = strings.ToLower(*req.Email)
	}
	if req.Username != nil {
		identity.Username = *req.Username
	}
	if req.Name != nil {
		identity.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, apperr.Fatal("failed to process password", err)
		}
		identity.PasswordHash = hash
	}

	if err := s.store.UpdateIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Deactivate soft-deletes an identity: the record stays, IsActive drops,
// and every outstanding credential is revoked.
func (s *IdentityService) Deactivate(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	identity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeIdentity(actor, identity, authz.ActionUpdate); err != nil {
		return err
	}

	identity.IsActive = false
	if err := s.store.UpdateIdentity(ctx, identity); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForIdentity(ctx, identity.ID); err != nil {
		return apperr.Fatal("failed to revoke credentials", err)
	}

	s.audit(ctx, events.KindIdentityDeactivated, identity.ID)
	return nil
}

// Delete removes an identity and runs the full ownership cascade.
func (s *IdentityService) Delete(ctx context.Context, actor *models.Identity, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	identity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeIdentity(actor, identity, authz.ActionDelete); err != nil {
		return err
	}
	return s.cascade.DeleteIdentity(ctx, identity)
}
