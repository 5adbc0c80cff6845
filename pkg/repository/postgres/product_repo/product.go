package productrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/utils"
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

func New(p Params) interfaces.ProductRepo {
	return &repo{
		logger: p.Logger,
		db:     p.DB,
	}
}

const productColumns = `
	id,
	title,
	description,
	amount::text,
	currency,
	created_by,
	is_active,
	created_at,
	updated_at
`

func scanProduct(row pgx.Row) (structs.Product, error) {
	var (
		p      structs.Product
		amount string
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&amount,
		&p.Currency,
		&p.CreatedBy,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return structs.Product{}, structs.ErrNotFound
		}
		return structs.Product{}, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return structs.Product{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return p, nil
}

func (r *repo) Create(ctx context.Context, id string, req structs.CreateProduct) (structs.Product, error) {
	r.logger.Info(ctx, "Create product", zap.String("id", id), zap.String("title", req.Title))
	query := `
		INSERT INTO products(
			id,
			title,
			description,
			amount,
			currency,
			created_by
		) VALUES($1, $2, $3, $4::numeric, $5, $6)
		RETURNING ` + productColumns

	resp, err := scanProduct(r.db.QueryRow(ctx, query, id, req.Title, req.Description, req.Amount.StringFixed(2), req.Currency, req.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return structs.Product{}, structs.ErrUniqueViolation
		}
		r.logger.Error(ctx, "err on r.db.QueryRow", zap.Error(err))
		return structs.Product{}, fmt.Errorf("create product failed: %w", err)
	}
	return resp, nil
}

func (r *repo) FindByID(ctx context.Context, id string) (structs.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	resp, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return structs.Product{}, err
		}
		r.logger.Error(ctx, "error querying row", zap.Error(err))
		return structs.Product{}, fmt.Errorf("error getting product by ID: %w", err)
	}
	return resp, nil
}

func (r *repo) FindByTitle(ctx context.Context, title string) (structs.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND title = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	resp, err := scanProduct(r.db.QueryRow(ctx, query, strings.TrimSpace(title)))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return structs.Product{}, err
		}
		r.logger.Error(ctx, "error querying row", zap.Error(err))
		return structs.Product{}, fmt.Errorf("error getting product by title: %w", err)
	}
	return resp, nil
}

func (r *repo) FindAll(ctx context.Context, activeOnly bool) ([]structs.Product, error) {
	where := "WHERE TRUE"
	if activeOnly {
		where += " AND is_active"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC
	`, productColumns, where)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error(ctx, "err on r.db.Query", zap.Error(err))
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var list []structs.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error(ctx, "err on rows.Scan", zap.Error(err))
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		list = append(list, p)
	}
	if rows.Err() != nil {
		r.logger.Error(ctx, "err on rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("rows iteration failed: %w", rows.Err())
	}
	return list, nil
}

func (r *repo) SoftDelete(ctx context.Context, id string) error {
	r.logger.Info(ctx, "Delete product", zap.String("product_id", id))

	result, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		r.logger.Error(ctx, "error executing delete", zap.Error(err))
		return fmt.Errorf("error deleting product %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warn(ctx, "no active product found with the given ID", zap.String("product_id", id))
		return structs.ErrNotFound
	}
	return nil
}

func (r *repo) Update(ctx context.Context, id string, patch structs.PatchProduct) (structs.Product, error) {
	if patch.Empty() {
		return structs.Product{}, structs.ErrBadRequest
	}

	setValues := []string{}
	params := map[string]interface{}{
		"id": id,
	}
	if patch.Title != nil {
		setValues = append(setValues, "title = :title")
		params["title"] = *patch.Title
	}
	if patch.Description != nil {
		setValues = append(setValues, "description = :description")
		params["description"] = *patch.Description
	}
	if patch.Amount != nil {
		setValues = append(setValues, "amount = :amount::numeric")
		params["amount"] = patch.Amount.StringFixed(2)
	}
	if patch.Currency != nil {
		setValues = append(setValues, "currency = :currency")
		params["currency"] = *patch.Currency
	}
	setValues = append(setValues, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = :id
		RETURNING %s
	`, strings.Join(setValues, ", "), productColumns)

	query, args := utils.ReplaceQueryParams(query, params)
	resp, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			r.logger.Warn(ctx, "no product found with the given ID", zap.String("product_id", id))
			return structs.Product{}, err
		}
		r.logger.Error(ctx, "error executing update", zap.Error(err))
		return structs.Product{}, fmt.Errorf("error updating product %s: %w", id, err)
	}
	return resp, nil
}
