package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/guard"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
)

// ErrForbidden is returned when the actor lacks the role for a command.
var ErrForbidden = fmt.Errorf("%w: you are not allowed to do that", game.ErrInvalidArgument)

// RoleDirectory resolves roles: configured admin ids are always admins,
// everyone else has the stored role. It is the guard's Authorizer.
type RoleDirectory struct {
	cfg   *config.Config
	roles *repository.RoleRepository
}

// NewRoleDirectory creates the directory.
func NewRoleDirectory(cfg *config.Config, q db.Querier) *RoleDirectory {
	return &RoleDirectory{cfg: cfg, roles: repository.NewRoleRepository(q)}
}

// Role implements guard.Authorizer.
func (d *RoleDirectory) Role(ctx context.Context, ownerID int64) (model.Role, error) {
	if d.cfg.IsAdmin(ownerID) {
		return model.RoleAdmin, nil
	}
	return d.roles.Get(ctx, ownerID)
}

// AdminService holds the privileged commands.
type AdminService struct {
	db     db.Conn
	guard  *guard.Guard
	locks  *lock.UserLock
	casino *config.CasinoConfig
}

// NewAdminService creates the admin service.
func NewAdminService(conn db.Conn, g *guard.Guard, locks *lock.UserLock, casino *config.CasinoConfig) *AdminService {
	return &AdminService{db: conn, guard: g, locks: locks, casino: casino}
}

// Require fails with ErrForbidden unless actor holds at least min.
func (s *AdminService) Require(ctx context.Context, actorID int64, min model.Role) error {
	role, err := s.guard.Role(ctx, actorID)
	if err != nil {
		return err
	}
	if !role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

// SetRole assigns a role to target. Only admins may do this, and the
// guard's cached role of target is dropped so it applies at once.
func (s *AdminService) SetRole(ctx context.Context, actorID, targetID int64, role model.Role) error {
	if err := s.Require(ctx, actorID, model.RoleAdmin); err != nil {
		return err
	}
	if err := repository.NewRoleRepository(s.db).Set(ctx, targetID, role); err != nil {
		return err
	}
	s.guard.Forget(targetID)
	log.Info().Int64("actor", actorID).Int64("target", targetID).Str("role", role.String()).Msg("Role changed")
	return nil
}

// Grant credits or debits target's balance as an admin adjustment and
// returns the new balance.
func (s *AdminService) Grant(ctx context.Context, actorID, targetID, amount int64) (int64, error) {
	if err := s.Require(ctx, actorID, model.RoleAdmin); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	timeout := s.casino.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	var balance int64
	err := s.locks.WithLock(ctx, targetID, timeout, func() error {
		return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
			var err error
			balance, err = repository.New(tx).Ledger.Apply(ctx, targetID, "", amount, model.EntryAdmin)
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrUserNotFound
			}
			return err
		})
	})
	if err != nil {
		return 0, classify(err, targetID, "", "grant", nil)
	}
	log.Info().Int64("actor", actorID).Int64("target", targetID).Int64("amount", amount).Msg("Admin grant")
	return balance, nil
}
