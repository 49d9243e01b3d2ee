package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// Store persists budgets in SQLite. Decimals are stored as TEXT so values
// round-trip exactly.
type Store struct {
	db *sql.DB
}

// NewStore wraps a migrated database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

func notFound(kind string, id interface{}, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, id, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %v: %w", kind, id, err)
}

// GetBudget returns a budget header
func (s *Store) GetBudget(ctx context.Context, id entities.BudgetID) (*entities.Budget, error) {
	var b entities.Budget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, tax_pct, profit_pct FROM budgets WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.TaxPct, &b.ProfitPct)
	if err != nil {
		return nil, notFound("budget", id, err)
	}
	return &b, nil
}

// ListBudgets returns every budget in insertion order
func (s *Store) ListBudgets(ctx context.Context) ([]*entities.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, tax_pct, profit_pct FROM budgets ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entities.Budget
	for rows.Next() {
		var b entities.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.TaxPct, &b.ProfitPct); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

// SaveBudget creates or replaces a budget header. An empty id is assigned a new UUID.
func (s *Store) SaveBudget(ctx context.Context, budget *entities.Budget) error {
	if budget.ID == "" {
		budget.ID = entities.BudgetID(uuid.NewString())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, name, tax_pct, profit_pct) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, tax_pct = excluded.tax_pct, profit_pct = excluded.profit_pct
	`, budget.ID, budget.Name, budget.TaxPct, budget.ProfitPct)
	if err != nil {
		return fmt.Errorf("failed to save budget %s: %w", budget.ID, err)
	}
	return nil
}

// GetTitles returns the titles of a budget in insertion order
func (s *Store) GetTitles(ctx context.Context, budgetID entities.BudgetID) ([]*entities.Title, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, budget_id, parent_id, sort_order, name, subtotal
		FROM titles WHERE budget_id = ? ORDER BY rowid
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load titles of %s: %w", budgetID, err)
	}
	defer rows.Close()

	var titles []*entities.Title
	for rows.Next() {
		var t entities.Title
		if err := rows.Scan(&t.ID, &t.BudgetID, &t.ParentID, &t.Order, &t.Name, &t.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, &t)
	}
	return titles, rows.Err()
}

// SaveTitle creates or replaces a title
func (s *Store) SaveTitle(ctx context.Context, title *entities.Title) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO titles (id, budget_id, parent_id, sort_order, name, subtotal) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			budget_id = excluded.budget_id, parent_id = excluded.parent_id,
			sort_order = excluded.sort_order, name = excluded.name, subtotal = excluded.subtotal
	`, title.ID, title.BudgetID, title.ParentID, title.Order, title.Name, title.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to save title %s: %w", title.ID, err)
	}
	return nil
}

// UpdateTitleSubtotals writes computed subtotals in one transaction
func (s *Store) UpdateTitleSubtotals(ctx context.Context, budgetID entities.BudgetID, subtotals map[entities.TitleID]decimal.Decimal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE titles SET subtotal = ? WHERE id = ? AND budget_id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for id, subtotal := range subtotals {
			if _, err := stmt.ExecContext(ctx, subtotal, id, budgetID); err != nil {
				return fmt.Errorf("failed to update subtotal of title %s: %w", id, err)
			}
		}
		return nil
	})
}

const partidaColumns = `id, budget_id, title_id, parent_id, code, description, unit, quantity, unit_price, extended_price`

func scanPartida(row interface{ Scan(...interface{}) error }) (*entities.Partida, error) {
	var p entities.Partida
	err := row.Scan(&p.ID, &p.BudgetID, &p.TitleID, &p.ParentID, &p.Code, &p.Description,
		&p.Unit, &p.Quantity, &p.UnitPrice, &p.ExtendedPrice)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPartida returns a partida
func (s *Store) GetPartida(ctx context.Context, id entities.PartidaID) (*entities.Partida, error) {
	p, err := scanPartida(s.db.QueryRowContext(ctx, `SELECT `+partidaColumns+` FROM partidas WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("partida", id, err)
	}
	return p, nil
}

// GetPartidas returns the partidas of a budget in insertion order
func (s *Store) GetPartidas(ctx context.Context, budgetID entities.BudgetID) ([]*entities.Partida, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+partidaColumns+` FROM partidas WHERE budget_id = ? ORDER BY rowid`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load partidas of %s: %w", budgetID, err)
	}
	defer rows.Close()

	var partidas []*entities.Partida
	for rows.Next() {
		p, err := scanPartida(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partida: %w", err)
		}
		partidas = append(partidas, p)
	}
	return partidas, rows.Err()
}

// SavePartida creates or replaces a partida
func (s *Store) SavePartida(ctx context.Context, p *entities.Partida) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO partidas (`+partidaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			budget_id = excluded.budget_id, title_id = excluded.title_id, parent_id = excluded.parent_id,
			code = excluded.code, description = excluded.description, unit = excluded.unit,
			quantity = excluded.quantity, unit_price = excluded.unit_price, extended_price = excluded.extended_price
	`, p.ID, p.BudgetID, p.TitleID, p.ParentID, p.Code, p.Description, p.Unit, p.Quantity, p.UnitPrice, p.ExtendedPrice)
	if err != nil {
		return fmt.Errorf("failed to save partida %s: %w", p.ID, err)
	}
	return nil
}

// UpdatePartidaPrices writes computed unit and extended prices in one transaction
func (s *Store) UpdatePartidaPrices(ctx context.Context, updates []repositories.PartidaPriceUpdate) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE partidas SET unit_price = ?, extended_price = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.UnitPrice, u.ExtendedPrice, u.PartidaID)
			if err != nil {
				return fmt.Errorf("failed to update prices of partida %s: %w", u.PartidaID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("partida %s: %w", u.PartidaID, repositories.ErrNotFound)
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
