package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

// UserService owns role changes. A user's role is never writable by the user
// themselves; every change goes through the gate and lands in the audit log.
type UserService struct {
	gate   *Gate
	users  UserRepo
	audit  *AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(gate *Gate, users UserRepo, audit *AuditRecorder, logger zerolog.Logger) *UserService {
	return &UserService{gate: gate, users: users, audit: audit, logger: logger, now: time.Now}
}

func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, targetUserID int, newRole models.Role, reason string) error {
	target, err := s.users.User(ctx, targetUserID)
	if err != nil {
		return storageErr("read user", err)
	}
	if err := s.gate.AllowRoleChange(actor.Role, target.Role, newRole, reason); err != nil {
		return err
	}
	if target.Role == newRole {
		return nil
	}
	if err := s.users.UpdateUserRole(ctx, targetUserID, newRole); err != nil {
		return storageErr("update user role", err)
	}
	s.audit.AppendBestEffort(ctx, &models.AuditEntry{
		TargetType: "user",
		SubjectID:  targetUserID,
		ActorID:    &actor.ID,
		Action:     models.ActionChangeRole,
		Field:      "role",
		OldValue:   string(target.Role),
		NewValue:   string(newRole),
		CreatedAt:  s.now(),
	})
	return nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, userID int) (*models.User, error) {
	if err := s.gate.Allow(actor.Role, OpManageUsers); err != nil {
		return nil, err
	}
	u, err := s.users.User(ctx, userID)
	return u, storageErr("read user", err)
}
