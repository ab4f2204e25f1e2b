// Package db provides the Postgres-backed tariff and break point store.
// It implements tariff.Resolver and breaks.Source for deployments that
// publish rate cards centrally instead of shipping HCL files.
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	// Postgres driver
	_ "github.com/lib/pq"

	"freight-rating/core/breaks"
	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

// Store wraps a Postgres connection
type Store struct {
	db *sql.DB
}

// Open connects to Postgres
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Storage("open postgres", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, errors.Storage("ping postgres", err)
	}
	return &Store{db: conn}, nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the rating tables when missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tariff_rates (
			id UUID PRIMARY KEY,
			tariff_id TEXT NOT NULL,
			item_code TEXT NOT NULL,
			position INT NOT NULL,
			calculation_method TEXT NOT NULL,
			rate NUMERIC(20,6) NOT NULL,
			unit_type TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			minimum_quantity NUMERIC(20,6) NOT NULL DEFAULT 0,
			minimum_charge NUMERIC(20,6) NOT NULL DEFAULT 0,
			maximum_charge NUMERIC(20,6) NOT NULL DEFAULT 0,
			base_amount NUMERIC(20,6) NOT NULL DEFAULT 0,
			uom TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tariff_rates_lookup
			ON tariff_rates (tariff_id, item_code, position)`,
		`CREATE TABLE IF NOT EXISTS break_tables (
			line_ref TEXT NOT NULL,
			side TEXT NOT NULL,
			basis TEXT NOT NULL DEFAULT 'per_unit',
			PRIMARY KEY (line_ref, side)
		)`,
		`CREATE TABLE IF NOT EXISTS break_points (
			id UUID PRIMARY KEY,
			line_ref TEXT NOT NULL,
			side TEXT NOT NULL,
			rate_type TEXT NOT NULL,
			breakpoint NUMERIC(20,6) NOT NULL,
			unit_rate NUMERIC(20,6) NOT NULL,
			currency TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_break_points_lookup
			ON break_points (line_ref, side)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Storage("ensure schema", err)
		}
	}
	return nil
}

// Resolve implements tariff.Resolver. Position order preserves rate
// card order, so the default first-match selection is deterministic.
func (s *Store) Resolve(ctx context.Context, tariffID, itemCode string) ([]types.TariffRate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tariff_id, item_code, calculation_method, rate, unit_type,
		       currency, minimum_quantity, minimum_charge, maximum_charge,
		       base_amount, uom
		FROM tariff_rates
		WHERE tariff_id = $1 AND item_code = $2
		ORDER BY position`, tariffID, itemCode)
	if err != nil {
		return nil, errors.Storage("query tariff rates", err)
	}
	defer rows.Close()

	var rates []types.TariffRate
	for rows.Next() {
		var r types.TariffRate
		var method, currency string
		if err := rows.Scan(&r.TariffID, &r.ItemCode, &method, &r.Rate,
			&r.UnitType, &currency, &r.MinimumQuantity, &r.MinimumCharge,
			&r.MaximumCharge, &r.BaseAmount, &r.UOM); err != nil {
			return nil, errors.Storage("scan tariff rate", err)
		}
		r.Method = types.CalculationMethod(method)
		r.Currency = types.Currency(currency)
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate tariff rates", err)
	}
	return rates, nil
}

// SaveTariffRates replaces the rates of one tariff card
func (s *Store) SaveTariffRates(ctx context.Context, tariffID string, rates []types.TariffRate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tariff_rates WHERE tariff_id = $1`, tariffID); err != nil {
		return errors.Storage("delete tariff rates", err)
	}

	for i, r := range rates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tariff_rates (id, tariff_id, item_code, position,
				calculation_method, rate, unit_type, currency,
				minimum_quantity, minimum_charge, maximum_charge,
				base_amount, uom)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			uuid.New(), tariffID, r.ItemCode, i, string(r.Method), r.Rate,
			r.UnitType, string(r.Currency), r.MinimumQuantity,
			r.MinimumCharge, r.MaximumCharge, r.BaseAmount, r.UOM)
		if err != nil {
			return errors.Storage("insert tariff rate", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit tariff rates", err)
	}
	return nil
}

// Table implements breaks.Source. Validation runs at this boundary so
// inconsistent stored data never reaches the calculation engine.
func (s *Store) Table(ctx context.Context, lineRef string, side types.Side) (*breaks.Table, error) {
	basis := types.BasisPerUnit
	var basisStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT basis FROM break_tables WHERE line_ref = $1 AND side = $2`,
		lineRef, string(side)).Scan(&basisStr)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, errors.Storage("query break table", err)
	default:
		basis = types.RateBasis(basisStr)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rate_type, breakpoint, unit_rate, currency
		FROM break_points
		WHERE line_ref = $1 AND side = $2
		ORDER BY breakpoint`, lineRef, string(side))
	if err != nil {
		return nil, errors.Storage("query break points", err)
	}
	defer rows.Close()

	var points []types.BreakPoint
	for rows.Next() {
		p := types.BreakPoint{LineRef: lineRef, Type: side}
		var rateType, currency string
		if err := rows.Scan(&rateType, &p.Breakpoint, &p.UnitRate, &currency); err != nil {
			return nil, errors.Storage("scan break point", err)
		}
		p.RateType = types.RateType(rateType)
		p.Currency = types.Currency(currency)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate break points", err)
	}

	return breaks.Build(lineRef, side, basis, points)
}

// SaveBreakPoints replaces the break table for a (line, side) pair.
// The write path belongs to the document collaborator; points are
// validated before being stored so broken tables are rejected at save
// time rather than surfacing at rating time.
func (s *Store) SaveBreakPoints(ctx context.Context, lineRef string, side types.Side, basis types.RateBasis, points []types.BreakPoint) error {
	if lineRef == "" {
		return errors.Input("break points require a persisted line")
	}
	if _, err := breaks.Build(lineRef, side, basis, points); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO break_tables (line_ref, side, basis)
		VALUES ($1, $2, $3)
		ON CONFLICT (line_ref, side) DO UPDATE SET basis = EXCLUDED.basis`,
		lineRef, string(side), string(basis))
	if err != nil {
		return errors.Storage("upsert break table", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM break_points WHERE line_ref = $1 AND side = $2`,
		lineRef, string(side))
	if err != nil {
		return errors.Storage("delete break points", err)
	}

	for _, p := range points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO break_points (id, line_ref, side, rate_type,
				breakpoint, unit_rate, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), lineRef, string(side), string(p.RateType),
			p.Breakpoint, p.UnitRate, string(p.Currency))
		if err != nil {
			return errors.Storage("insert break point", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit break points", err)
	}
	return nil
}
