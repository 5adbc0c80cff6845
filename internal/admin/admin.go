package admin

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
)

var (
	Module = fx.Provide(New)
)

type (
	Params struct {
		fx.In
		Lifecycle fx.Lifecycle `optional:"true"`
		Config    config.IConfig
		AdminRepo interfaces.AdminRepo
		Logger    logger.Logger
	}

	Service interface {
		Access(ctx context.Context, userID int64) (structs.Access, error)
		// Add grants the admin role. It returns structs.ErrAlreadyExists for existing admins.
		Add(ctx context.Context, userID, addedBy int64) error
		// Remove revokes the admin role. The master admin cannot be removed.
		Remove(ctx context.Context, userID int64) error
		List(ctx context.Context) ([]structs.Admin, error)
		MasterID() int64
		// SeedMaster upserts the configured master admin. It runs on start.
		SeedMaster(ctx context.Context) error
	}
	service struct {
		masterID  int64
		adminRepo interfaces.AdminRepo
		logger    logger.Logger
	}
)

func New(p Params) Service {
	s := &service{
		masterID:  p.Config.GetInt64("admin.master_id"),
		adminRepo: p.AdminRepo,
		logger:    p.Logger,
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: s.SeedMaster,
		})
	}
	return s
}

func (s *service) MasterID() int64 {
	return s.masterID
}

func (s *service) SeedMaster(ctx context.Context) error {
	if s.masterID <= 0 {
		s.logger.Warn(ctx, "admin.master_id is not set, no master admin seeded")
		return nil
	}
	err := s.adminRepo.Upsert(ctx, structs.Admin{
		UserID:  s.masterID,
		Name:    "Master Admin",
		Role:    structs.RoleMasterAdmin,
		AddedBy: s.masterID,
	})
	if err != nil {
		s.logger.Error(ctx, "->adminRepo.Upsert", zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "master admin seeded", zap.Int64("user_id", s.masterID))
	return nil
}

func (s *service) Access(ctx context.Context, userID int64) (structs.Access, error) {
	access := structs.Access{UserID: userID}
	if s.masterID > 0 && userID == s.masterID {
		access.IsAdmin = true
		access.IsMaster = true
		return access, nil
	}

	a, err := s.adminRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return access, nil
		}
		s.logger.Error(ctx, "->adminRepo.Get", zap.Error(err))
		return access, err
	}
	access.IsAdmin = a.Role == structs.RoleAdmin || a.Role == structs.RoleMasterAdmin
	access.IsMaster = a.Role == structs.RoleMasterAdmin
	return access, nil
}

func (s *service) Add(ctx context.Context, userID, addedBy int64) error {
	err := s.adminRepo.Create(ctx, structs.Admin{
		UserID:  userID,
		Role:    structs.RoleAdmin,
		AddedBy: addedBy,
	})
	if err != nil {
		if errors.Is(err, structs.ErrAlreadyExists) || errors.Is(err, structs.ErrUniqueViolation) {
			return structs.ErrAlreadyExists
		}
		s.logger.Error(ctx, "->adminRepo.Create", zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "admin added", zap.Int64("user_id", userID), zap.Int64("added_by", addedBy))
	return nil
}

func (s *service) Remove(ctx context.Context, userID int64) error {
	if userID == s.masterID {
		return structs.ErrCannotRemoveMaster
	}

	a, err := s.adminRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			s.logger.Error(ctx, "->adminRepo.Get", zap.Error(err))
		}
		return err
	}
	if a.Role == structs.RoleMasterAdmin {
		return structs.ErrCannotRemoveMaster
	}

	if err = s.adminRepo.Delete(ctx, userID); err != nil {
		s.logger.Error(ctx, "->adminRepo.Delete", zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "admin removed", zap.Int64("user_id", userID))
	return nil
}

func (s *service) List(ctx context.Context) ([]structs.Admin, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "->adminRepo.List", zap.Error(err))
		return nil, err
	}
	return admins, nil
}
