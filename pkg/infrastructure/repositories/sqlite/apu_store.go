package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

const lineColumns = `line_id, kind, resource_id, nested_partida_id, unit, quantity, crew_size,
	waste_pct, price, override, override_price, parcial`

// GetAPU returns the analysis of a partida with its lines in position order
func (s *Store) GetAPU(ctx context.Context, partidaID entities.PartidaID) (*entities.APU, error) {
	apu := &entities.APU{PartidaID: partidaID}
	err := s.db.QueryRowContext(ctx,
		`SELECT yield, shift_length FROM apus WHERE partida_id = ?`, partidaID,
	).Scan(&apu.Yield, &apu.ShiftLength)
	if err != nil {
		return nil, notFound("APU for partida", partidaID, err)
	}

	lines, err := s.loadLines(ctx, `WHERE partida_id = ?`, partidaID)
	if err != nil {
		return nil, err
	}
	apu.Lines = lines[partidaID]
	return apu, nil
}

// GetAPUs returns the analyses of a budget in insertion order
func (s *Store) GetAPUs(ctx context.Context, budgetID entities.BudgetID) ([]*entities.APU, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT partida_id, yield, shift_length FROM apus WHERE budget_id = ? ORDER BY rowid`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load APUs of %s: %w", budgetID, err)
	}
	defer rows.Close()

	var apus []*entities.APU
	for rows.Next() {
		var a entities.APU
		if err := rows.Scan(&a.PartidaID, &a.Yield, &a.ShiftLength); err != nil {
			return nil, fmt.Errorf("failed to scan APU: %w", err)
		}
		apus = append(apus, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	lines, err := s.loadLines(ctx, `WHERE partida_id IN (SELECT partida_id FROM apus WHERE budget_id = ?)`, budgetID)
	if err != nil {
		return nil, err
	}
	for _, a := range apus {
		a.Lines = lines[a.PartidaID]
	}
	return apus, nil
}

func (s *Store) loadLines(ctx context.Context, where string, arg interface{}) (map[entities.PartidaID][]entities.ResourceLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT partida_id, `+lineColumns+` FROM resource_lines `+where+` ORDER BY partida_id, position`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[entities.PartidaID][]entities.ResourceLine)
	for rows.Next() {
		var (
			partidaID entities.PartidaID
			kind      string
			l         entities.ResourceLine
		)
		err := rows.Scan(&partidaID, &l.ID, &kind, &l.ResourceID, &l.NestedPartidaID, &l.Unit,
			&l.Quantity, &l.CrewSize, &l.WastePct, &l.Price, &l.Override, &l.OverridePrice, &l.Parcial)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource line: %w", err)
		}
		if l.Kind, err = entities.ParseResourceKind(kind); err != nil {
			return nil, fmt.Errorf("resource line %s/%s: %w", partidaID, l.ID, err)
		}
		lines[partidaID] = append(lines[partidaID], l)
	}
	return lines, rows.Err()
}

// SaveAPU replaces an analysis and all of its lines in one transaction
func (s *Store) SaveAPU(ctx context.Context, budgetID entities.BudgetID, apu *entities.APU) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO apus (partida_id, budget_id, yield, shift_length) VALUES (?, ?, ?, ?)
			ON CONFLICT(partida_id) DO UPDATE SET
				budget_id = excluded.budget_id, yield = excluded.yield, shift_length = excluded.shift_length
		`, apu.PartidaID, budgetID, apu.Yield, apu.ShiftLength)
		if err != nil {
			return fmt.Errorf("failed to save APU %s: %w", apu.PartidaID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM resource_lines WHERE partida_id = ?`, apu.PartidaID); err != nil {
			return fmt.Errorf("failed to clear lines of APU %s: %w", apu.PartidaID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO resource_lines (partida_id, position, `+lineColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, l := range apu.Lines {
			_, err := stmt.ExecContext(ctx, apu.PartidaID, i, l.ID, l.Kind.String(), l.ResourceID, l.NestedPartidaID,
				l.Unit, l.Quantity, l.CrewSize, l.WastePct, l.Price, l.Override, l.OverridePrice, l.Parcial)
			if err != nil {
				return fmt.Errorf("failed to save line %s of APU %s: %w", l.ID, apu.PartidaID, err)
			}
		}
		return nil
	})
}

// GetSharedPrices returns the catalog of a budget in insertion order
func (s *Store) GetSharedPrices(ctx context.Context, budgetID entities.BudgetID) ([]*entities.SharedPrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, resource_id, price FROM shared_prices WHERE budget_id = ? ORDER BY rowid`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared prices of %s: %w", budgetID, err)
	}
	defer rows.Close()

	prices := make([]*entities.SharedPrice, 0)
	for rows.Next() {
		var p entities.SharedPrice
		if err := rows.Scan(&p.ID, &p.BudgetID, &p.ResourceID, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan shared price: %w", err)
		}
		prices = append(prices, &p)
	}
	return prices, rows.Err()
}

// SaveSharedPrices upserts catalog entries by resource; a stored entry keeps its id
func (s *Store) SaveSharedPrices(ctx context.Context, budgetID entities.BudgetID, prices []entities.SharedPrice) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO shared_prices (id, budget_id, resource_id, price) VALUES (?, ?, ?, ?)
			ON CONFLICT(budget_id, resource_id) DO UPDATE SET price = excluded.price
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range prices {
			if p.ID == "" {
				p.ID = entities.PriceID(uuid.NewString())
			}
			if _, err := stmt.ExecContext(ctx, p.ID, budgetID, p.ResourceID, p.Price); err != nil {
				return fmt.Errorf("failed to save shared price %s: %w", p.ResourceID, err)
			}
		}
		return nil
	})
}
