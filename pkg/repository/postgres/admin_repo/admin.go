package adminrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
)

var Module = fx.Provide(New)

type (
	Params struct {
		fx.In
		Logger logger.Logger
		DB     db.Querier
	}

	repo struct {
		logger logger.Logger
		db     db.Querier
	}
)

func New(p Params) interfaces.AdminRepo {
	return &repo{
		logger: p.Logger,
		db:     p.DB,
	}
}

func (r *repo) Create(ctx context.Context, a structs.Admin) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admins(user_id, name, role, added_by)
		VALUES($1, $2, $3, $4)
	`, a.UserID, a.Name, string(a.Role), a.AddedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return structs.ErrAlreadyExists
		}
		r.logger.Error(ctx, "err on r.db.Exec", zap.Error(err))
		return fmt.Errorf("create admin failed: %w", err)
	}
	return nil
}

func (r *repo) Upsert(ctx context.Context, a structs.Admin) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admins(user_id, name, role, added_by)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET role = $3, name = COALESCE(NULLIF($2, ''), admins.name)
	`, a.UserID, a.Name, string(a.Role), a.AddedBy)
	if err != nil {
		r.logger.Error(ctx, "err on r.db.Exec", zap.Error(err))
		return fmt.Errorf("upsert admin failed: %w", err)
	}
	return nil
}

func (r *repo) Get(ctx context.Context, userID int64) (structs.Admin, error) {
	var (
		resp structs.Admin
		role string
	)
	err := r.db.QueryRow(ctx, `
		SELECT user_id, name, role, added_by, created_at
		FROM admins
		WHERE user_id = $1
	`, userID).Scan(
		&resp.UserID,
		&resp.Name,
		&role,
		&resp.AddedBy,
		&resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return structs.Admin{}, structs.ErrNotFound
		}
		r.logger.Error(ctx, "err on r.db.QueryRow", zap.Error(err))
		return structs.Admin{}, fmt.Errorf("get admin failed: %w", err)
	}
	resp.Role = structs.Role(role)
	return resp, nil
}

func (r *repo) Delete(ctx context.Context, userID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error(ctx, "err on r.db.Exec", zap.Error(err))
		return fmt.Errorf("delete admin failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return structs.ErrNotFound
	}
	return nil
}

func (r *repo) List(ctx context.Context) ([]structs.Admin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, name, role, added_by, created_at
		FROM admins
		ORDER BY role DESC, created_at
	`)
	if err != nil {
		r.logger.Error(ctx, "err on r.db.Query", zap.Error(err))
		return nil, fmt.Errorf("list admins failed: %w", err)
	}
	defer rows.Close()

	var list []structs.Admin
	for rows.Next() {
		var (
			a    structs.Admin
			role string
		)
		if err := rows.Scan(&a.UserID, &a.Name, &role, &a.AddedBy, &a.CreatedAt); err != nil {
			r.logger.Error(ctx, "err on rows.Scan", zap.Error(err))
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		a.Role = structs.Role(role)
		list = append(list, a)
	}
	return list, rows.Err()
}
