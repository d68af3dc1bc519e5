package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

type UserService struct {
	principals PrincipalStore
	audit      AuditSink
}

func NewUserService(principals PrincipalStore, audit AuditSink) *UserService {
	return &UserService{principals: principals, audit: audit}
}

// Register creates a principal with a temporary password that must be changed on first login.
func (s *UserService) Register(ctx context.Context, actorID int64, req model.RegisterRequest) (model.Principal, error) {
	email := model.NormalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return model.Principal{}, apierror.Validation("a valid email is required", map[string]any{"field": "email"})
	}

	role := model.RoleCollaborator
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok {
			return model.Principal{}, apierror.Validation("invalid role", map[string]any{"field": "role", "value": req.Role})
		}
		role = parsed
	}

	if len(req.TemporaryPassword) < minPasswordLength {
		return model.Principal{}, apierror.Validation("temporary password is too short", map[string]any{"minLength": minPasswordLength})
	}

	hash, err := HashPassword(req.TemporaryPassword)
	if err != nil {
		return model.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.principals.Create(ctx, model.Principal{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsFirstLogin: true,
		TokenVersion: 0,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return model.Principal{}, apierror.Conflict("email already registered", map[string]any{"email": email})
	}
	if err != nil {
		return model.Principal{}, err
	}

	s.audit.Append(actorID, model.ActionUserCreated, model.AuditDetail{
		Category:    model.CategoryUser,
		TargetID:    model.Int64Ptr(created.ID),
		Description: "user registered",
		Metadata:    map[string]any{"email": created.Email, "role": string(created.Role)},
	})
	return created, nil
}

func (s *UserService) List(ctx context.Context) ([]model.Principal, error) {
	return s.principals.List(ctx)
}

// Update changes role and/or activation. Deactivation also bumps the token version so
// outstanding refresh tokens stop working.
func (s *UserService) Update(ctx context.Context, actorID int64, targetID int64, req model.UpdateUserRequest) (model.Principal, error) {
	patch := model.PrincipalPatch{IsActive: req.IsActive}
	if req.Role != nil {
		role, ok := model.ParseRole(*req.Role)
		if !ok {
			return model.Principal{}, apierror.Validation("invalid role", map[string]any{"field": "role", "value": *req.Role})
		}
		patch.Role = &role
	}
	if patch.Empty() {
		return model.Principal{}, apierror.Validation("nothing to update", nil)
	}

	if actorID == targetID && ((patch.IsActive != nil && !*patch.IsActive) || (patch.Role != nil && !patch.Role.IsAdmin())) {
		return model.Principal{}, apierror.Validation("administrators cannot deactivate or demote themselves", nil)
	}

	before, err := s.principals.FindByID(ctx, targetID)
	if err != nil {
		return model.Principal{}, err
	}

	after, err := s.principals.Update(ctx, targetID, patch)
	if err != nil {
		return model.Principal{}, err
	}

	if before.IsActive && !after.IsActive {
		version, err := s.principals.IncrementTokenVersion(ctx, targetID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("bump token version: %w", err)
		}
		after.TokenVersion = version
	}

	s.audit.Append(actorID, model.ActionUserUpdated, model.AuditDetail{
		Category:    model.CategoryUser,
		TargetID:    model.Int64Ptr(targetID),
		Description: "user updated",
		Metadata: map[string]any{
			"before": map[string]any{"role": string(before.Role), "isActive": before.IsActive},
			"after":  map[string]any{"role": string(after.Role), "isActive": after.IsActive},
		},
	})
	return after, nil
}

// Delete removes the principal and cascades its grants and activity rows.
func (s *UserService) Delete(ctx context.Context, actorID int64, targetID int64) error {
	if actorID == targetID {
		return apierror.Validation("administrators cannot delete themselves", nil)
	}

	target, err := s.principals.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.principals.Delete(ctx, targetID); err != nil {
		return err
	}

	s.audit.Append(actorID, model.ActionUserDeleted, model.AuditDetail{
		Category:    model.CategoryUser,
		TargetID:    model.Int64Ptr(targetID),
		Description: "user deleted",
		Metadata:    map[string]any{"email": target.Email},
	})
	return nil
}

// BootstrapAdmin creates the first administrator when the store is empty.
func (s *UserService) BootstrapAdmin(ctx context.Context, email string, password string) error {
	if email == "" {
		return nil
	}

	count, err := s.principals.Count(ctx)
	if err != nil {
		return fmt.Errorf("count principals: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin, err := s.Register(ctx, 0, model.RegisterRequest{
		Email:             email,
		FullName:          "Administrator",
		Role:              string(model.RoleAdmin),
		TemporaryPassword: password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	slog.Info("bootstrap administrator created", "email", admin.Email)
	return nil
}
