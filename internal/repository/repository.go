package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/Jamolkhon5/lifesense/internal/config"
	"github.com/Jamolkhon5/lifesense/internal/models"
)

// Query selects rows from one sensor table. Zero From/To leave that side open;
// To is exclusive. Limit <= 0 means no limit.
type Query struct {
	Limit     int
	Ascending bool
	From      time.Time
	To        time.Time
}

// Latest is the common "newest first, at most n rows" query.
func Latest(n int) Query {
	return Query{Limit: n}
}

// SensorStore reads the vitals tables. It is read-only.
type SensorStore interface {
	Temperatures(ctx context.Context, q Query) ([]models.TemperatureRow, error)
	HeartRates(ctx context.Context, q Query) ([]models.HeartRateRow, error)
}

// Repository wraps the configured SensorStore and the resources it owns.
type Repository struct {
	SensorStore
	db *sqlx.DB
}

// NewRepository opens the store selected by cfg.Driver.
func NewRepository(cfg config.StoreConfig, log zerolog.Logger) (*Repository, error) {
	switch cfg.Driver {
	case config.DriverPostgREST:
		client := &http.Client{Timeout: cfg.Timeout}
		return &Repository{SensorStore: NewPostgRESTStore(cfg.URL, cfg.Key, client)}, nil
	case config.DriverPostgres:
		db, err := Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Repository{SensorStore: NewPostgresStore(db), db: db}, nil
	case config.DriverMock:
		log.Warn().Msg("using generated sensor data")
		return &Repository{SensorStore: NewMockStore(time.Now)}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// DB is the SQL handle for the postgres driver, nil otherwise.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
