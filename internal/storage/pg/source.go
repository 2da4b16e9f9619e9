// Package pg reads reference tables and business records from PostgreSQL.
//
// The source is read-only. Reference tables mirror the file formats: a geo
// table of (zip, city, state) rows and a code table of raw NAICS tokens,
// range tokens included. The record table has one column per field key.
package pg

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bizcheck/internal/config"
	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/reference"
)

// Source is a read-only view over the configured tables.
type Source struct {
	pool *pgxpool.Pool
	conf config.DatabaseConfig
}

// Connect opens a pool and pings it, retrying with exponential backoff until
// conf.ConnectTimeout elapses.
func Connect(ctx context.Context, conf config.DatabaseConfig) (*Source, error) {
	poolConfig, err := pgxpool.ParseConfig(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(conf.MaxConns)
	poolConfig.MinConns = int32(conf.MinConns)
	poolConfig.MaxConnLifetime = conf.MaxConnLifetime

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = conf.ConnectTimeout

	var pool *pgxpool.Pool
	connect := func() error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("database not ready, retrying", "error", err, "wait", wait)
	}

	ts := time.Now()
	if err := backoff.RetryNotify(connect, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("connected to database",
		"database", poolConfig.ConnConfig.Database,
		"connection_time", time.Since(ts),
	)

	return &Source{pool: pool, conf: conf}, nil
}

// Close releases the pool.
func (s *Source) Close() {
	s.pool.Close()
}

// GeoRows reads the geo reference table. Zips stored as numbers are padded
// back to five digits.
func (s *Source) GeoRows(ctx context.Context) ([]reference.GeoRow, error) {
	query := fmt.Sprintf("SELECT zip::text, city, state FROM %s", tableIdent(s.conf.GeoTable))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.conf.GeoTable, err)
	}
	geo, err := pgx.CollectRows(rows, scanGeoRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.conf.GeoTable, err)
	}
	return geo, nil
}

// CategoryTokens reads the raw code tokens; NULLs are skipped.
func (s *Source) CategoryTokens(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT code::text FROM %s", tableIdent(s.conf.CodeTable))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.conf.CodeTable, err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[pgtype.Text])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.conf.CodeTable, err)
	}

	tokens := make([]string, 0, len(codes))
	for _, c := range codes {
		if c.Valid {
			tokens = append(tokens, c.String)
		}
	}
	return tokens, nil
}

// Dataset loads both reference tables into a Dataset.
func (s *Source) Dataset(ctx context.Context) (*reference.Dataset, error) {
	geo, err := s.GeoRows(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := s.CategoryTokens(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := reference.NewCategoryCodes(tokens)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.conf.CodeTable, err)
	}

	slog.Info("reference data loaded from database",
		"geo_rows", len(geo),
		"category_codes", codes.Len(),
	)
	return reference.NewDataset(reference.NewGeoReference(geo), codes)
}

// Records reads every row of the record table.
func (s *Source) Records(ctx context.Context) ([]core.Record, error) {
	query := recordQuery(s.conf.RecordTable)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.conf.RecordTable, err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.conf.RecordTable, err)
	}
	return records, nil
}

func scanGeoRow(row pgx.CollectableRow) (reference.GeoRow, error) {
	var zip, city, state pgtype.Text
	if err := row.Scan(&zip, &city, &state); err != nil {
		return reference.GeoRow{}, err
	}
	return geoRow(zip, city, state)
}

func geoRow(zip, city, state pgtype.Text) (reference.GeoRow, error) {
	if !zip.Valid || !city.Valid || !state.Valid {
		return reference.GeoRow{}, fmt.Errorf("%w: null column", reference.ErrMalformedGeoRow)
	}
	z, ok := reference.NormalizeZip(zip.String)
	if !ok {
		return reference.GeoRow{}, fmt.Errorf("%w: zip %q", reference.ErrMalformedGeoRow, zip.String)
	}
	return reference.GeoRow{Zip: z, City: city.String, State: state.String}, nil
}

func scanRecord(row pgx.CollectableRow) (core.Record, error) {
	vals, err := row.Values()
	if err != nil {
		return core.Record{}, err
	}
	fields := core.Fields()
	m := make(map[core.Field]core.Value, len(fields))
	for i, f := range fields {
		if i < len(vals) {
			m[f] = dbValue(vals[i])
		}
	}
	return core.NewRecord(m), nil
}

// recordQuery selects one column per field, in field order.
func recordQuery(table string) string {
	fields := core.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pgx.Identifier{f.Key()}.Sanitize()
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), tableIdent(table))
}

// tableIdent quotes a possibly schema-qualified table name.
func tableIdent(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// dbValue converts a decoded column into a core Value. Whole numerics become
// Integer so numeric zips and phones validate like their JSON counterparts.
func dbValue(x any) core.Value {
	switch t := x.(type) {
	case int16:
		return core.Integer(int64(t))
	case float32:
		return core.ValueOf(float64(t))
	case pgtype.Numeric:
		if !t.Valid {
			return core.Missing()
		}
		if n, err := t.Int64Value(); err == nil && n.Valid {
			return core.Integer(n.Int64)
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid || math.IsNaN(f.Float64) {
			return core.Missing()
		}
		return core.Unsupported(strconv.FormatFloat(f.Float64, 'g', -1, 64))
	case pgtype.Text:
		if !t.Valid {
			return core.Missing()
		}
		return core.Text(t.String)
	case []byte:
		return core.Unsupported(string(t))
	case time.Time:
		return core.Unsupported(t.Format(time.RFC3339))
	default:
		return core.ValueOf(x)
	}
}
