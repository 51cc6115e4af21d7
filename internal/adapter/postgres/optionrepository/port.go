// package optionrepository stores option definitions in PostgreSQL
package optionrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	querybuilder "gitlab.com/mcpricing.net/internal/utils"
)

var _ secondary.OptionRepository = &OptionRepository{}

// OptionRepository implements the OptionRepository interface with PostgreSQL
type OptionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewOptionRepository creates a new PostgreSQL option repository
func NewOptionRepository(db *sqlx.DB, logger primary.Logger, schema string) *OptionRepository {
	return &OptionRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func optionColumns(tbl domain.OptionTable) []string {
	return []string{
		tbl.Name, tbl.PayoutType, tbl.InterestRate, tbl.Volatility,
		tbl.StrikePrice, tbl.Duration, tbl.InitialPrice,
		tbl.CreatedAt, tbl.UpdatedAt,
	}
}

// SaveOption inserts the option or replaces the stored parameters
func (r *OptionRepository) SaveOption(ctx context.Context, option domain.OptionSpec) error {
	tbl := domain.GetOptionTable()
	now := time.Now()

	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(optionColumns(tbl)...).
		Into(tbl.TableName()).
		Values(
			option.Name, string(option.PayoutType), option.InterestRate, option.Volatility,
			option.StrikePrice, option.Duration, option.InitialPrice,
			now, now,
		).
		OnConflict(tbl.Name, tbl.PayoutType).
		SetExclude(
			tbl.InterestRate, tbl.Volatility, tbl.StrikePrice,
			tbl.Duration, tbl.InitialPrice, tbl.UpdatedAt,
		).
		Build()

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save option", "name", option.Name, "payoutType", option.PayoutType, "error", err)
		return fmt.Errorf("failed to save option: %w", err)
	}

	return nil
}

// GetOption retrieves an option by name and payout type, nil if absent
func (r *OptionRepository) GetOption(ctx context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error) {
	tbl := domain.GetOptionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(optionColumns(tbl)...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.Name), name).
		And(fmt.Sprintf("%s = ?", tbl.PayoutType), string(payoutType)).
		Build()

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	var option domain.OptionRecord
	if err := r.db.GetContext(ctx, &option, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get option", "name", name, "payoutType", payoutType, "error", err)
		return nil, fmt.Errorf("failed to get option: %w", err)
	}

	return &option, nil
}

// ListOptions retrieves every option ordered by name and payout type
func (r *OptionRepository) ListOptions(ctx context.Context) ([]*domain.OptionRecord, error) {
	tbl := domain.GetOptionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(optionColumns(tbl)...).
		From(tbl.TableName()).
		OrderBy(tbl.Name, true).
		OrderBy(tbl.PayoutType, true).
		Build()

	var options []*domain.OptionRecord
	if err := r.db.SelectContext(ctx, &options, query, args...); err != nil {
		r.logger.Error("Failed to list options", "error", err)
		return nil, fmt.Errorf("failed to list options: %w", err)
	}

	return options, nil
}
