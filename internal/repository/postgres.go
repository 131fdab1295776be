package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

// PostgresStore reads the same tables directly over SQL.
type PostgresStore struct {
	db *sqlx.DB
}

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type temperatureRecord struct {
	Degree float64   `db:"degree"`
	Time   time.Time `db:"time"`
}

type heartRateRecord struct {
	BPM       *float64  `db:"bpm"`
	SpO2      *float64  `db:"spo2"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *PostgresStore) Temperatures(ctx context.Context, q Query) ([]models.TemperatureRow, error) {
	query, args := buildSelect(models.TemperatureTable, "degree, time", "time", q)

	var records []temperatureRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", models.TemperatureTable, err)
	}

	rows := make([]models.TemperatureRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.TemperatureRow{Degree: r.Degree, Time: r.Time.UTC().Format(time.RFC3339Nano)})
	}
	return rows, nil
}

func (s *PostgresStore) HeartRates(ctx context.Context, q Query) ([]models.HeartRateRow, error) {
	query, args := buildSelect(models.HeartRateTable, "bpm, spo2, created_at", "created_at", q)

	var records []heartRateRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", models.HeartRateTable, err)
	}

	rows := make([]models.HeartRateRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.HeartRateRow{
			BPM:       r.BPM,
			SpO2:      r.SpO2,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return rows, nil
}

// buildSelect renders a bindvar query for the postgres driver.
func buildSelect(table, columns, timeColumn string, q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !q.From.IsZero() {
		args = append(args, q.From.UTC())
		where = append(where, fmt.Sprintf("%s >= $%d", timeColumn, len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To.UTC())
		where = append(where, fmt.Sprintf("%s < $%d", timeColumn, len(args)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", columns, table)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s", timeColumn, direction)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

var _ SensorStore = (*PostgresStore)(nil)
