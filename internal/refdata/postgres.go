package refdata

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Schema is the DDL for the Postgres reference tables.
//
//go:embed schema.sql
var Schema string

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	descriptionsQuery = `SELECT disease, description FROM disease_descriptions ORDER BY id`
	medicationsQuery  = `SELECT disease, medications FROM disease_medications ORDER BY id`
	dietsQuery        = `SELECT disease, diets FROM disease_diets ORDER BY id`
	precautionsQuery  = `SELECT disease, precaution_1, precaution_2, precaution_3, precaution_4 FROM disease_precautions ORDER BY id`
	workoutsQuery     = `SELECT disease, workout FROM disease_workouts ORDER BY id`
)

// LoadPostgres reads the five reference tables in a single pass each.
func LoadPostgres(ctx context.Context, q Querier) (Tables, error) {
	var t Tables
	var err error

	t.Descriptions, err = collect(ctx, q, descriptionsQuery, func(row pgx.CollectableRow) (DescriptionRow, error) {
		var r DescriptionRow
		err := row.Scan(&r.Disease, &r.Description)
		return r, err
	})
	if err != nil {
		return Tables{}, err
	}

	t.Medications, err = collect(ctx, q, medicationsQuery, func(row pgx.CollectableRow) (MedicationRow, error) {
		var r MedicationRow
		err := row.Scan(&r.Disease, &r.Medications)
		return r, err
	})
	if err != nil {
		return Tables{}, err
	}

	t.Diets, err = collect(ctx, q, dietsQuery, func(row pgx.CollectableRow) (DietRow, error) {
		var r DietRow
		err := row.Scan(&r.Disease, &r.Diets)
		return r, err
	})
	if err != nil {
		return Tables{}, err
	}

	t.Precautions, err = collect(ctx, q, precautionsQuery, func(row pgx.CollectableRow) (PrecautionRow, error) {
		var (
			r     PrecautionRow
			slots [MaxPrecautions]*string
		)
		if err := row.Scan(&r.Disease, &slots[0], &slots[1], &slots[2], &slots[3]); err != nil {
			return r, err
		}
		r.Precautions = make([]string, 0, MaxPrecautions)
		for _, p := range slots {
			if p != nil && *p != "" {
				r.Precautions = append(r.Precautions, *p)
			}
		}
		return r, nil
	})
	if err != nil {
		return Tables{}, err
	}

	t.Workouts, err = collect(ctx, q, workoutsQuery, func(row pgx.CollectableRow) (WorkoutRow, error) {
		var r WorkoutRow
		err := row.Scan(&r.Disease, &r.Workout)
		return r, err
	})
	if err != nil {
		return Tables{}, err
	}

	return t, nil
}

func collect[T any](ctx context.Context, q Querier, sql string, fn func(pgx.CollectableRow) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", sql, err)
	}
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", sql, err)
	}
	return out, nil
}
