// Package postgres persists assessed submissions and answers the medication
// and camp lookups. The store accepts a DBTX so the same code runs against a
// *pgxpool.Pool or inside a pgx.Tx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
	id                    TEXT PRIMARY KEY,
	soldier_id            TEXT NOT NULL,
	patient_id            TEXT NOT NULL DEFAULT '',
	camp                  TEXT NOT NULL,
	hydration             TEXT NOT NULL,
	uniform               TEXT NOT NULL,
	intensity             TEXT NOT NULL,
	work_minutes          DOUBLE PRECISION NOT NULL,
	rest_minutes          DOUBLE PRECISION NOT NULL,
	medication            BOOLEAN NOT NULL DEFAULT FALSE,
	submitted_at          TIMESTAMPTZ NOT NULL,
	station_id            TEXT NOT NULL,
	air_temperature_c     DOUBLE PRECISION NOT NULL,
	relative_humidity_pct DOUBLE PRECISION NOT NULL,
	wbgt_raw              DOUBLE PRECISION NOT NULL,
	wbgt_effective        DOUBLE PRECISION NOT NULL,
	category              TEXT NOT NULL,
	min_activity_minutes  INTEGER,
	short_activity        BOOLEAN NOT NULL,
	ratio_checked         BOOLEAN NOT NULL,
	ratio_compliant       BOOLEAN NOT NULL,
	risk                  TEXT NOT NULL,
	assessed_at           TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_camp_soldier
	ON submissions (camp, soldier_id, submitted_at DESC);
CREATE TABLE IF NOT EXISTS medications (
	patient     TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medications_patient ON medications (patient);`

// ON CONFLICT keeps redelivered Kafka messages idempotent.
const insertSQL = `
INSERT INTO submissions (
	id, soldier_id, patient_id, camp, hydration, uniform, intensity,
	work_minutes, rest_minutes, medication, submitted_at,
	station_id, air_temperature_c, relative_humidity_pct,
	wbgt_raw, wbgt_effective, category, min_activity_minutes,
	short_activity, ratio_checked, ratio_compliant, risk, assessed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11,
	$12, $13, $14,
	$15, $16, $17, $18,
	$19, $20, $21, $22, $23
) ON CONFLICT (id) DO NOTHING`

const medicationSQL = `
SELECT EXISTS (
	SELECT 1 FROM medications
	WHERE patient = $1
	  AND (description ILIKE '%metformin%' OR description ILIKE '%aspirin%')
)`

const latestByCampSQL = `
SELECT id, soldier_id, patient_id, camp, hydration, uniform, intensity,
       work_minutes, rest_minutes, medication, submitted_at
FROM (
	SELECT *,
	       ROW_NUMBER() OVER (PARTITION BY soldier_id ORDER BY submitted_at DESC) AS row_num
	FROM submissions
	WHERE camp = $1
) latest
WHERE row_num = 1
ORDER BY soldier_id`

// Store implements the submission repository, domain.MedicationChecker and
// pipeline.BatchLoader on PostgreSQL.
type Store struct {
	db DBTX
}

// NewStore creates a Store backed by the given connection (pool or transaction).
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadBatch persists a batch of assessed submissions in a single round trip.
func (s *Store) LoadBatch(ctx context.Context, batch []domain.AssessedSubmission) error {
	if len(batch) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i := range batch {
		b.Queue(insertSQL, insertArgs(batch[i])...)
	}

	br := s.db.SendBatch(ctx, b)
	var errs []error
	for i := range batch {
		if _, err := br.Exec(); err != nil {
			errs = append(errs, fmt.Errorf("save submission %s: %w", batch[i].Submission.ID, err))
		}
	}
	if err := br.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close batch: %w", err))
	}
	return errors.Join(errs...)
}

// HasMedication reports whether the patient has a recorded medication that
// impairs heat loss. An empty patient ID never matches.
func (s *Store) HasMedication(ctx context.Context, patientID string) (bool, error) {
	if patientID == "" {
		return false, nil
	}
	var found bool
	if err := s.db.QueryRow(ctx, medicationSQL, patientID).Scan(&found); err != nil {
		return false, fmt.Errorf("medication lookup for %s: %w", patientID, err)
	}
	return found, nil
}

// LatestByCamp returns the most recent submission of every soldier at the
// camp, ordered by soldier ID.
func (s *Store) LatestByCamp(ctx context.Context, camp string) ([]domain.Submission, error) {
	rows, err := s.db.Query(ctx, latestByCampSQL, camp)
	if err != nil {
		return nil, fmt.Errorf("latest submissions for %s: %w", camp, err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		var hydration, uniform, intensity string
		if err := rows.Scan(
			&sub.ID, &sub.SoldierID, &sub.PatientID, &sub.Camp,
			&hydration, &uniform, &intensity,
			&sub.WorkMinutes, &sub.RestMinutes, &sub.Medication, &sub.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Hydration = domain.HydrationIndicator(hydration)
		sub.Uniform = domain.UniformLoad(uniform)
		sub.Intensity = domain.ActivityIntensity(intensity)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func insertArgs(a domain.AssessedSubmission) []any {
	sub, r, res := a.Submission, a.Reading, a.Result
	return []any{
		sub.ID, sub.SoldierID, sub.PatientID, sub.Camp,
		string(sub.Hydration), string(sub.Uniform), string(sub.Intensity),
		sub.WorkMinutes, sub.RestMinutes, sub.Medication, sub.SubmittedAt,
		r.StationID, r.AirTemperatureC, r.RelativeHumidityPct,
		res.WBGTRaw, res.WBGTEffective, res.Category.String(), res.MinActivityMinutes,
		res.ShortActivity, res.RatioChecked, res.RatioCompliant, string(res.Risk), res.AssessedAt,
	}
}
