package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/active-heroes/directory-cli/internal/db"
	"github.com/active-heroes/directory-cli/internal/model"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore on an existing pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id                      BIGSERIAL PRIMARY KEY,
	uei                     TEXT NOT NULL DEFAULT '',
	cage_code               TEXT NOT NULL DEFAULT '',
	legal_business_name     TEXT NOT NULL,
	business_type           TEXT NOT NULL DEFAULT '',
	registration_status     TEXT NOT NULL DEFAULT '',
	registration_expiration TEXT NOT NULL DEFAULT '',
	entity_start_date       TEXT NOT NULL DEFAULT '',
	naics_codes             TEXT NOT NULL DEFAULT '',
	naics_descriptions      TEXT NOT NULL DEFAULT '',
	dba_name                TEXT NOT NULL DEFAULT '',
	service_branch          TEXT NOT NULL DEFAULT '',
	owner_name              TEXT NOT NULL DEFAULT '',
	certification_date      TEXT NOT NULL DEFAULT '',
	phone                   TEXT NOT NULL DEFAULT '',
	email                   TEXT NOT NULL DEFAULT '',
	website                 TEXT NOT NULL DEFAULT '',
	linkedin_url            TEXT NOT NULL DEFAULT '',
	physical_address_line1  TEXT NOT NULL DEFAULT '',
	physical_address_line2  TEXT NOT NULL DEFAULT '',
	city                    TEXT NOT NULL DEFAULT '',
	state                   TEXT NOT NULL DEFAULT '',
	zip_code                TEXT NOT NULL DEFAULT '',
	country                 TEXT NOT NULL DEFAULT '',
	latitude                DOUBLE PRECISION,
	longitude               DOUBLE PRECISION,
	distance_miles          DOUBLE PRECISION,
	source                  TEXT NOT NULL DEFAULT '',
	notes                   TEXT NOT NULL DEFAULT '',
	date_added              TIMESTAMPTZ NOT NULL,
	date_updated            TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_businesses_uei ON businesses(uei) WHERE uei != '';
CREATE INDEX IF NOT EXISTS idx_businesses_zip ON businesses(zip_code text_pattern_ops);
CREATE INDEX IF NOT EXISTS idx_businesses_state ON businesses(state);
CREATE INDEX IF NOT EXISTS idx_businesses_type ON businesses(business_type);
CREATE INDEX IF NOT EXISTS idx_businesses_distance ON businesses(distance_miles);

CREATE TABLE IF NOT EXISTS ingest_log (
	id           UUID PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	processed    INTEGER NOT NULL DEFAULT 0,
	created      INTEGER NOT NULL DEFAULT 0,
	updated      INTEGER NOT NULL DEFAULT 0,
	unchanged    INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_ingest_log_source ON ingest_log(source);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Insert persists a new business and sets its ID.
func (s *PostgresStore) Insert(ctx context.Context, b *model.Business) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO businesses (
			uei, cage_code, legal_business_name, business_type,
			registration_status, registration_expiration, entity_start_date,
			naics_codes, naics_descriptions, dba_name, service_branch,
			owner_name, certification_date,
			phone, email, website, linkedin_url,
			physical_address_line1, physical_address_line2, city, state, zip_code, country,
			latitude, longitude, distance_miles,
			source, notes, date_added, date_updated
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		) RETURNING id`,
		insertArgs(b)...,
	).Scan(&b.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: insert business")
	}
	return nil
}

// Update applies a field map to one record.
func (s *PostgresStore) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	names, err := validateFields(fields)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	args = append(args, id)
	for i, f := range names {
		sets = append(sets, fmt.Sprintf("%s = $%d", f, i+2))
		args = append(args, fields[f])
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE businesses SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update business %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: business not found: %d", id)
	}
	return nil
}

// Get fetches one business by ID, or nil when absent.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get business %d", id)
	}
	return b, nil
}

// Delete removes one business.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete business %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: business not found: %d", id)
	}
	return nil
}

// FindByUEI returns the record with the given UEI, or nil.
func (s *PostgresStore) FindByUEI(ctx context.Context, uei string) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE uei = $1 LIMIT 1`, uei)
	b, err := scanBusiness(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find by uei")
	}
	return b, nil
}

// FindByZipPrefix returns all records whose zip code starts with prefix.
func (s *PostgresStore) FindByZipPrefix(ctx context.Context, prefix string) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE zip_code LIKE $1 || '%' ORDER BY id`,
		prefix)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find by zip prefix")
	}
	defer rows.Close()
	return collectPgxBusinesses(rows)
}

func collectPgxBusinesses(rows pgx.Rows) ([]model.Business, error) {
	var out []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate businesses")
	}
	return out, nil
}

var postgresSorts = map[string]string{
	"":           "distance_miles ASC NULLS LAST, LOWER(legal_business_name) ASC",
	"distance":   "distance_miles ASC NULLS LAST, LOWER(legal_business_name) ASC",
	"name":       "LOWER(legal_business_name) ASC",
	"city":       "LOWER(city) ASC, LOWER(legal_business_name) ASC",
	"state":      "state ASC, LOWER(city) ASC",
	"date_added": "date_added DESC",
}

// Search returns one page of businesses matching the filter.
func (s *PostgresStore) Search(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	normalizePaging(&f)
	orderBy, ok := postgresSorts[f.SortBy]
	if !ok {
		return nil, eris.Errorf("postgres: unknown sort %q", f.SortBy)
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf(
			"(legal_business_name ILIKE %[1]s OR dba_name ILIKE %[1]s OR naics_descriptions ILIKE %[1]s OR city ILIKE %[1]s)", p))
	}
	if st := strings.TrimSpace(f.State); st != "" {
		conds = append(conds, "state = "+arg(strings.ToUpper(st)))
	}
	if bt := strings.TrimSpace(f.BusinessType); bt != "" {
		conds = append(conds, "business_type ILIKE "+arg("%"+bt+"%"))
	}
	if f.MaxDistance != nil {
		conds = append(conds, "distance_miles IS NOT NULL AND distance_miles <= "+arg(*f.MaxDistance))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM businesses"+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "postgres: count search")
	}

	query := fmt.Sprintf("SELECT %s FROM businesses%s ORDER BY %s LIMIT %s OFFSET %s",
		businessColumns, where, orderBy, arg(f.PerPage), arg((f.Page-1)*f.PerPage))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search")
	}
	defer rows.Close()

	businesses, err := collectPgxBusinesses(rows)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Businesses: businesses,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: (total + f.PerPage - 1) / f.PerPage,
	}, nil
}

// ListAll returns every business, nearest first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses
		 ORDER BY distance_miles ASC NULLS LAST, LOWER(legal_business_name) ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()
	return collectPgxBusinesses(rows)
}

// Stats summarizes the directory.
func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		ByType:   make(map[string]int),
		ByState:  make(map[string]int),
		BySource: make(map[string]int),
	}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE uei != ''),
			COUNT(*) FILTER (WHERE phone != ''),
			COUNT(*) FILTER (WHERE email != ''),
			COUNT(*) FILTER (WHERE website != '')
		FROM businesses`).
		Scan(&st.Total, &st.WithUEI, &st.HasPhone, &st.HasEmail, &st.HasWebsite)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats totals")
	}

	for col, dest := range map[string]map[string]int{
		"business_type": st.ByType,
		"state":         st.ByState,
		"source":        st.BySource,
	} {
		if err := s.groupCount(ctx, col, dest); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *PostgresStore) groupCount(ctx context.Context, col string, dest map[string]int) error {
	rows, err := s.pool.Query(ctx,
		"SELECT "+col+", COUNT(*) FROM businesses WHERE "+col+" != '' GROUP BY "+col)
	if err != nil {
		return eris.Wrapf(err, "postgres: stats by %s", col)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return eris.Wrapf(err, "postgres: scan stats by %s", col)
		}
		dest[key] = n
	}
	return rows.Err()
}

// StartIngest opens an ingest-log row.
func (s *PostgresStore) StartIngest(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_log (id, source, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, source, IngestStatusRunning, time.Now().UTC())
	if err != nil {
		return "", eris.Wrap(err, "postgres: start ingest")
	}
	return id, nil
}

// CompleteIngest closes an ingest-log row.
func (s *PostgresStore) CompleteIngest(ctx context.Context, id, status string, rep *model.IngestReport, errMsg string) error {
	if rep == nil {
		rep = &model.IngestReport{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE ingest_log SET
			status = $2, processed = $3, created = $4, updated = $5,
			unchanged = $6, skipped = $7, failed = $8, error = $9, completed_at = $10
		WHERE id = $1`,
		id, status, rep.Processed, rep.Created, rep.Updated,
		rep.Unchanged, rep.Skipped, rep.Failed, errMsg, time.Now().UTC())
	if err != nil {
		return eris.Wrapf(err, "postgres: complete ingest %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: ingest run not found: %s", id)
	}
	return nil
}

// ListIngests returns the most recent ingest runs.
func (s *PostgresStore) ListIngests(ctx context.Context, limit int) ([]IngestEntry, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, status, processed, created, updated, unchanged,
			skipped, failed, error, started_at, completed_at
		FROM ingest_log ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list ingests")
	}
	defer rows.Close()

	var out []IngestEntry
	for rows.Next() {
		var e IngestEntry
		var rep model.IngestReport
		var completed *time.Time
		err := rows.Scan(&e.ID, &e.Source, &e.Status,
			&rep.Processed, &rep.Created, &rep.Updated, &rep.Unchanged,
			&rep.Skipped, &rep.Failed, &e.Error, &e.StartedAt, &completed)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan ingest entry")
		}
		e.Report = &rep
		e.CompletedAt = completed
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate ingests")
	}
	return out, nil
}
