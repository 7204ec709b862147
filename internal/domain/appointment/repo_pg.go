package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvdm12/hospital-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, doctor_id, patient_id, start_time, end_time, reason, status,
	notes, confirmed, confirmed_at, location, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var ap Appointment
	err := row.Scan(&ap.ID, &ap.DoctorID, &ap.PatientID, &ap.StartTime, &ap.EndTime,
		&ap.Reason, &ap.Status, &ap.Notes, &ap.Confirmed, &ap.ConfirmedAt,
		&ap.Location, &ap.CreatedAt, &ap.UpdatedAt)
	return &ap, err
}

func blockingStatusStrings() []string {
	out := make([]string, len(BlockingStatuses))
	for i, s := range BlockingStatuses {
		out[i] = string(s)
	}
	return out
}

func (r *repoPG) Create(ctx context.Context, ap *Appointment) error {
	ap.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, start_time, end_time,
			reason, status, notes, confirmed, confirmed_at, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		ap.ID, ap.DoctorID, ap.PatientID, ap.StartTime, ap.EndTime,
		ap.Reason, ap.Status, ap.Notes, ap.Confirmed, ap.ConfirmedAt, ap.Location).
		Scan(&ap.CreatedAt, &ap.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ap, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "appointment", ID: id}
	}
	return ap, err
}

func (r *repoPG) Update(ctx context.Context, ap *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment SET start_time=$2, end_time=$3, reason=$4, status=$5,
			notes=$6, confirmed=$7, confirmed_at=$8, location=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		ap.ID, ap.StartTime, ap.EndTime, ap.Reason, ap.Status,
		ap.Notes, ap.Confirmed, ap.ConfirmedAt, ap.Location).
		Scan(&ap.UpdatedAt)
}

func (r *repoPG) FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1
		  AND start_time < $3 AND end_time > $2
		  AND status = ANY($4)
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY start_time`,
		doctorID, start, end, blockingStatusStrings(), excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) FindOverdueUnresolved(ctx context.Context, threshold time.Time, limit, offset int) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status IN ('scheduled', 'confirmed')
		  AND start_time < $1
		ORDER BY start_time
		LIMIT $2 OFFSET $3`,
		threshold, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "doctor_id", doctorID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "patient_id", patientID, limit, offset)
}

func (r *repoPG) listBy(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE `+column+` = $1
		 ORDER BY start_time DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListForRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	add := func(clause string, value interface{}) {
		where += fmt.Sprintf(clause, idx)
		args = append(args, value)
		idx++
	}

	if params.DoctorID != nil {
		add(` AND doctor_id = $%d`, *params.DoctorID)
	}
	if params.PatientID != nil {
		add(` AND patient_id = $%d`, *params.PatientID)
	}
	if params.Status != nil {
		add(` AND status = $%d`, string(*params.Status))
	}
	if params.From != nil {
		add(` AND start_time >= $%d`, *params.From)
	}
	if params.To != nil {
		add(` AND start_time < $%d`, *params.To)
	}
	if params.Reason != "" {
		add(` AND reason ILIKE $%d`, "%"+params.Reason+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+apptCols+` FROM appointment`+where+
		` ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) NextForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*Appointment, error) {
	ap, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND start_time >= $2 AND status = ANY($3)
		ORDER BY start_time
		LIMIT 1`,
		patientID, after, blockingStatusStrings()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "appointment", ID: patientID}
	}
	return ap, err
}

func (r *repoPG) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT status, COUNT(*) FROM appointment GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

type pgTxRunner struct{ pool *pgxpool.Pool }

// NewTxRunnerPG returns a TxRunner backed by serializable Postgres
// transactions.
func NewTxRunnerPG(pool *pgxpool.Pool) TxRunner { return &pgTxRunner{pool: pool} }

func (r *pgTxRunner) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunSerializable(ctx, r.pool, fn)
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		ap, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ap)
	}
	return items, rows.Err()
}
