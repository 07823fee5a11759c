package pgsql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `account_id, code, name, description, account_type, normal_balance, currency_code,
	COALESCE(parent_account_id, ''), is_control_account, allows_direct_posting, status, balance, version,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository implements repositories.AccountRepositoryFacade.
type PgxAccountRepository struct {
	db querier
}

var _ repositories.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func newPgxAccountRepository(db querier) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.NormalBalance,
		&m.CurrencyCode,
		&m.ParentAccountID,
		&m.IsControlAccount,
		&m.AllowsDirectPosting,
		&m.Status,
		&m.Balance,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m)
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	acc, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUnknownAccount, arg)
		}
		return nil, mapPgError(err, "failed to find account %v", arg)
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id = $1", accountID)
}

// FindAccountByCode retrieves an account by its chart code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.findOne(ctx, "code = $1", code)
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query accounts")
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating account rows")
	}
	return accounts, nil
}

func (r *PgxAccountRepository) findByIDs(ctx context.Context, accountIDs []string, lock bool) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id`
	if lock {
		// Row locks are taken in id order so concurrent posters cannot deadlock.
		query += ` FOR UPDATE`
	}
	accounts, err := r.queryAccounts(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		result[acc.AccountID] = acc
	}
	return result, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, false)
}

// FindAccountsByIDsForUpdate locks the selected rows until the surrounding transaction ends.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, true)
}

// ListAccounts retrieves a page of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter repositories.AccountFilter, limit int, offset int) ([]domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Category != "" {
		types := make([]string, 0)
		for _, at := range domain.AccountTypes() {
			if at.Category() == filter.Category {
				types = append(types, string(at))
			}
		}
		add("account_type = ANY($%d)", types)
	}
	if filter.AccountType != "" {
		add("account_type = $%d", string(filter.AccountType))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.ParentAccountID != "" {
		add("parent_account_id = $%d", filter.ParentAccountID)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY code`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryAccounts(ctx, query, args...)
}

// SaveAccount inserts a new account or performs a version-guarded update.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account, expectedVersion int64) error {
	m := mapping.ToModelAccount(account)
	if expectedVersion == 0 {
		query := `
			INSERT INTO accounts (account_id, code, name, description, account_type, normal_balance, currency_code,
				parent_account_id, is_control_account, allows_direct_posting, status, balance, version,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
		`
		_, err := r.db.Exec(ctx, query,
			m.AccountID,
			m.Code,
			m.Name,
			m.Description,
			m.AccountType,
			m.NormalBalance,
			m.CurrencyCode,
			nullIfEmpty(m.ParentAccountID),
			m.IsControlAccount,
			m.AllowsDirectPosting,
			m.Status,
			m.Balance,
			m.Version,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return mapPgError(err, "failed to save account %s", m.AccountID)
		}
		return nil
	}

	query := `
		UPDATE accounts
		SET name = $2, description = $3, parent_account_id = $4, is_control_account = $5,
			allows_direct_posting = $6, status = $7, balance = $8, version = $9,
			last_updated_at = $10, last_updated_by = $11
		WHERE account_id = $1 AND version = $12;
	`
	tag, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Description,
		nullIfEmpty(m.ParentAccountID),
		m.IsControlAccount,
		m.AllowsDirectPosting,
		m.Status,
		m.Balance,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return mapPgError(err, "failed to update account %s", m.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return versionMiss(ctx, r.db, "accounts", "account_id", m.AccountID, apperrors.ErrUnknownAccount)
	}
	return nil
}
