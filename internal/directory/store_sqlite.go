package directory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/active-heroes/directory-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
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
	latitude                REAL,
	longitude               REAL,
	distance_miles          REAL,
	source                  TEXT NOT NULL DEFAULT '',
	notes                   TEXT NOT NULL DEFAULT '',
	date_added              DATETIME NOT NULL,
	date_updated            DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_businesses_uei ON businesses(uei) WHERE uei != '';
CREATE INDEX IF NOT EXISTS idx_businesses_zip ON businesses(zip_code);
CREATE INDEX IF NOT EXISTS idx_businesses_state ON businesses(state);
CREATE INDEX IF NOT EXISTS idx_businesses_type ON businesses(business_type);
CREATE INDEX IF NOT EXISTS idx_businesses_distance ON businesses(distance_miles);

CREATE TABLE IF NOT EXISTS ingest_log (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	processed    INTEGER NOT NULL DEFAULT 0,
	created      INTEGER NOT NULL DEFAULT 0,
	updated      INTEGER NOT NULL DEFAULT 0,
	unchanged    INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_ingest_log_source ON ingest_log(source);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// businessColumns is the canonical select list, aligned with scanBusiness.
const businessColumns = `id, uei, cage_code, legal_business_name, business_type,
	registration_status, registration_expiration, entity_start_date,
	naics_codes, naics_descriptions, dba_name, service_branch, owner_name, certification_date,
	phone, email, website, linkedin_url,
	physical_address_line1, physical_address_line2, city, state, zip_code, country,
	latitude, longitude, distance_miles,
	source, notes, date_added, date_updated`

type scannable interface {
	Scan(dest ...any) error
}

func scanBusiness(row scannable) (*model.Business, error) {
	var b model.Business
	var lat, lon, dist sql.NullFloat64
	err := row.Scan(
		&b.ID, &b.UEI, &b.CAGECode, &b.LegalName, &b.BusinessType,
		&b.RegistrationStatus, &b.RegistrationExpiration, &b.EntityStartDate,
		&b.NAICSCodes, &b.NAICSDescriptions, &b.DBAName, &b.ServiceBranch,
		&b.OwnerName, &b.CertificationDate,
		&b.Phone, &b.Email, &b.Website, &b.LinkedInURL,
		&b.AddressLine1, &b.AddressLine2, &b.City, &b.State, &b.ZipCode, &b.Country,
		&lat, &lon, &dist,
		&b.Source, &b.Notes, &b.DateAdded, &b.DateUpdated,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		b.Latitude = &lat.Float64
	}
	if lon.Valid {
		b.Longitude = &lon.Float64
	}
	if dist.Valid {
		b.DistanceMiles = &dist.Float64
	}
	return &b, nil
}

func insertArgs(b *model.Business) []any {
	var lat, lon, dist any
	if b.Latitude != nil {
		lat = *b.Latitude
	}
	if b.Longitude != nil {
		lon = *b.Longitude
	}
	if b.DistanceMiles != nil {
		dist = *b.DistanceMiles
	}
	return []any{
		b.UEI, b.CAGECode, b.LegalName, b.BusinessType,
		b.RegistrationStatus, b.RegistrationExpiration, b.EntityStartDate,
		b.NAICSCodes, b.NAICSDescriptions, b.DBAName, b.ServiceBranch,
		b.OwnerName, b.CertificationDate,
		b.Phone, b.Email, b.Website, b.LinkedInURL,
		b.AddressLine1, b.AddressLine2, b.City, b.State, b.ZipCode, b.Country,
		lat, lon, dist,
		b.Source, b.Notes, b.DateAdded, b.DateUpdated,
	}
}

// validateFields rejects column names the field registry does not know,
// keeping Update safe to feed from a merge delta. Returns sorted names.
func validateFields(fields map[string]any) ([]string, error) {
	names := make([]string, 0, len(fields))
	for f := range fields {
		if f != "date_updated" && !model.KnownField(f) {
			return nil, eris.Errorf("store: unknown field %q", f)
		}
		names = append(names, f)
	}
	sort.Strings(names)
	return names, nil
}

// Insert persists a new business and sets its ID.
func (s *SQLiteStore) Insert(ctx context.Context, b *model.Business) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (
			uei, cage_code, legal_business_name, business_type,
			registration_status, registration_expiration, entity_start_date,
			naics_codes, naics_descriptions, dba_name, service_branch,
			owner_name, certification_date,
			phone, email, website, linkedin_url,
			physical_address_line1, physical_address_line2, city, state, zip_code, country,
			latitude, longitude, distance_miles,
			source, notes, date_added, date_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insertArgs(b)...,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert business")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: last insert id")
	}
	b.ID = id
	return nil
}

// Update applies a field map to one record.
func (s *SQLiteStore) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	names, err := validateFields(fields)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, f := range names {
		sets = append(sets, f+" = ?")
		args = append(args, fields[f])
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE businesses SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update business %d", id)
	}
	return checkRowsAffected(res, id)
}

func checkRowsAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: business not found: %d", id)
	}
	return nil
}

// Get fetches one business by ID, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = ?`, id)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get business %d", id)
	}
	return b, nil
}

// Delete removes one business.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete business %d", id)
	}
	return checkRowsAffected(res, id)
}

// FindByUEI returns the record with the given UEI, or nil.
func (s *SQLiteStore) FindByUEI(ctx context.Context, uei string) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE uei = ? LIMIT 1`, uei)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find by uei")
	}
	return b, nil
}

// FindByZipPrefix returns all records whose zip code starts with prefix.
func (s *SQLiteStore) FindByZipPrefix(ctx context.Context, prefix string) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE zip_code LIKE ? ORDER BY id`,
		prefix+"%")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find by zip prefix")
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func collectBusinesses(rows *sql.Rows) ([]model.Business, error) {
	var out []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business")
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate businesses")
	}
	return out, nil
}

const (
	defaultPerPage = 25
	maxPerPage     = 200
)

var sqliteSorts = map[string]string{
	"":           "distance_miles IS NULL, distance_miles ASC, legal_business_name COLLATE NOCASE ASC",
	"distance":   "distance_miles IS NULL, distance_miles ASC, legal_business_name COLLATE NOCASE ASC",
	"name":       "legal_business_name COLLATE NOCASE ASC",
	"city":       "city COLLATE NOCASE ASC, legal_business_name COLLATE NOCASE ASC",
	"state":      "state ASC, city COLLATE NOCASE ASC",
	"date_added": "date_added DESC",
}

func normalizePaging(f *SearchFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
}

// Search returns one page of businesses matching the filter.
func (s *SQLiteStore) Search(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	normalizePaging(&f)
	orderBy, ok := sqliteSorts[f.SortBy]
	if !ok {
		return nil, eris.Errorf("sqlite: unknown sort %q", f.SortBy)
	}

	var conds []string
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		conds = append(conds,
			"(legal_business_name LIKE ? OR dba_name LIKE ? OR naics_descriptions LIKE ? OR city LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if st := strings.TrimSpace(f.State); st != "" {
		conds = append(conds, "state = ?")
		args = append(args, strings.ToUpper(st))
	}
	if bt := strings.TrimSpace(f.BusinessType); bt != "" {
		conds = append(conds, "business_type LIKE ?")
		args = append(args, "%"+bt+"%")
	}
	if f.MaxDistance != nil {
		conds = append(conds, "distance_miles IS NOT NULL AND distance_miles <= ?")
		args = append(args, *f.MaxDistance)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM businesses"+where, args...).Scan(&total); err != nil {
		return nil, eris.Wrap(err, "sqlite: count search")
	}

	query := "SELECT " + businessColumns + " FROM businesses" + where +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query,
		append(args, f.PerPage, (f.Page-1)*f.PerPage)...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search")
	}
	defer rows.Close()

	businesses, err := collectBusinesses(rows)
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
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+businessColumns+` FROM businesses
		 ORDER BY distance_miles IS NULL, distance_miles ASC, legal_business_name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

// Stats summarizes the directory.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		ByType:   make(map[string]int),
		ByState:  make(map[string]int),
		BySource: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(CASE WHEN uei != '' THEN 1 END),
			COUNT(CASE WHEN phone != '' THEN 1 END),
			COUNT(CASE WHEN email != '' THEN 1 END),
			COUNT(CASE WHEN website != '' THEN 1 END)
		FROM businesses`).
		Scan(&st.Total, &st.WithUEI, &st.HasPhone, &st.HasEmail, &st.HasWebsite)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats totals")
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

func (s *SQLiteStore) groupCount(ctx context.Context, col string, dest map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+col+", COUNT(*) FROM businesses WHERE "+col+" != '' GROUP BY "+col)
	if err != nil {
		return eris.Wrapf(err, "sqlite: stats by %s", col)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return eris.Wrapf(err, "sqlite: scan stats by %s", col)
		}
		dest[key] = n
	}
	return rows.Err()
}

// StartIngest opens an ingest-log row.
func (s *SQLiteStore) StartIngest(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_log (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		id, source, IngestStatusRunning, time.Now().UTC())
	if err != nil {
		return "", eris.Wrap(err, "sqlite: start ingest")
	}
	return id, nil
}

// CompleteIngest closes an ingest-log row.
func (s *SQLiteStore) CompleteIngest(ctx context.Context, id, status string, rep *model.IngestReport, errMsg string) error {
	if rep == nil {
		rep = &model.IngestReport{}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingest_log SET
			status = ?, processed = ?, created = ?, updated = ?,
			unchanged = ?, skipped = ?, failed = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		status, rep.Processed, rep.Created, rep.Updated,
		rep.Unchanged, rep.Skipped, rep.Failed, errMsg, time.Now().UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete ingest %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: ingest run not found: %s", id)
	}
	return nil
}

// ListIngests returns the most recent ingest runs.
func (s *SQLiteStore) ListIngests(ctx context.Context, limit int) ([]IngestEntry, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, status, processed, created, updated, unchanged,
			skipped, failed, error, started_at, completed_at
		FROM ingest_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ingests")
	}
	defer rows.Close()

	var out []IngestEntry
	for rows.Next() {
		var e IngestEntry
		var rep model.IngestReport
		var completed sql.NullTime
		err := rows.Scan(&e.ID, &e.Source, &e.Status,
			&rep.Processed, &rep.Created, &rep.Updated, &rep.Unchanged,
			&rep.Skipped, &rep.Failed, &e.Error, &e.StartedAt, &completed)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ingest entry")
		}
		e.Report = &rep
		if completed.Valid {
			e.CompletedAt = &completed.Time
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate ingests")
	}
	return out, nil
}
