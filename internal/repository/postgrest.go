package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

const restPath = "/rest/v1"

// StatusError is returned when the table API answers with a non-2xx status.
type StatusError struct {
	Table  string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store %s: status %d: %s", e.Table, e.Status, e.Body)
}

// PostgRESTStore reads the hosted tables through their REST API (/rest/v1/<table>).
type PostgRESTStore struct {
	baseURL   string
	apiKey    string
	transport http.RoundTripper
	timeout   time.Duration
}

// NewPostgRESTStore reads through client's transport and bounds every query by
// client.Timeout. A nil client gets a 10 second timeout.
func NewPostgRESTStore(baseURL, apiKey string, client *http.Client) *PostgRESTStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &PostgRESTStore{
		baseURL:   strings.TrimRight(baseURL, "/") + restPath,
		apiKey:    apiKey,
		transport: transport,
		timeout:   client.Timeout,
	}
}

func (s *PostgRESTStore) Temperatures(ctx context.Context, q Query) ([]models.TemperatureRow, error) {
	var rows []models.TemperatureRow
	if err := s.get(ctx, models.TemperatureTable, "degree,time", "time", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PostgRESTStore) HeartRates(ctx context.Context, q Query) ([]models.HeartRateRow, error) {
	var rows []models.HeartRateRow
	if err := s.get(ctx, models.HeartRateTable, "bpm,spo2,created_at", "created_at", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PostgRESTStore) get(ctx context.Context, table, columns, timeColumn string, q Query, dst any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	client := postgrest.NewClient(s.baseURL, "", nil)
	if client.ClientError != nil {
		return fmt.Errorf("store url: %w", client.ClientError)
	}
	client.SetApiKey(s.apiKey)
	client.SetAuthToken(s.apiKey)
	client.Transport.Parent = &statusTransport{ctx: ctx, table: table, next: s.transport}

	builder := client.From(table).
		Select(columns, "", false).
		Order(timeColumn, &postgrest.OrderOpts{Ascending: q.Ascending})
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit, "")
	}
	if filter := rangeFilter(timeColumn, q); filter != "" {
		builder = builder.And(filter, "")
	}

	body, _, err := builder.Execute()
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// rangeFilter renders the time bounds as one and=(...) group, since both bounds
// apply to the same column.
func rangeFilter(column string, q Query) string {
	var parts []string
	if !q.From.IsZero() {
		parts = append(parts, column+".gte."+q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		parts = append(parts, column+".lt."+q.To.UTC().Format(time.RFC3339))
	}
	return strings.Join(parts, ",")
}

// statusTransport binds the query to ctx and turns non-2xx answers into a
// StatusError before the client library flattens them.
type statusTransport struct {
	ctx   context.Context
	table string
	next  http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return nil, &StatusError{Table: t.table, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

var _ SensorStore = (*PostgRESTStore)(nil)
