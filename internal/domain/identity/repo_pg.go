package identity

import (
	"context"
	"errors"

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

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, active, first_name, last_name, specialty, license_number,
	email, phone, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Active, &d.FirstName, &d.LastName, &d.Specialty,
		&d.LicenseNumber, &d.Email, &d.Phone, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, active, first_name, last_name, specialty, license_number, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.Active, d.FirstName, d.LastName, d.Specialty, d.LicenseNumber, d.Email, d.Phone)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET active=$2, first_name=$3, last_name=$4, specialty=$5,
			license_number=$6, email=$7, phone=$8, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Active, d.FirstName, d.LastName, d.Specialty, d.LicenseNumber, d.Email, d.Phone)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

const ruleCols = `id, doctor_id, weekday, start_time, end_time, active, created_at, updated_at`

func scanRule(row pgx.Row) (*AvailabilityRule, error) {
	var ar AvailabilityRule
	err := row.Scan(&ar.ID, &ar.DoctorID, &ar.Weekday, &ar.StartTime, &ar.EndTime,
		&ar.Active, &ar.CreatedAt, &ar.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &ar, err
}

func (r *doctorRepoPG) UpsertAvailability(ctx context.Context, rule *AvailabilityRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO availability_rule (id, doctor_id, weekday, start_time, end_time, active)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (doctor_id, weekday)
		DO UPDATE SET start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
			active=EXCLUDED.active, updated_at=NOW()`,
		rule.ID, rule.DoctorID, rule.Weekday, rule.StartTime, rule.EndTime, rule.Active)
	return err
}

func (r *doctorRepoPG) GetAvailability(ctx context.Context, doctorID uuid.UUID, weekday int) (*AvailabilityRule, error) {
	return scanRule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+ruleCols+` FROM availability_rule WHERE doctor_id = $1 AND weekday = $2`,
		doctorID, weekday))
}

func (r *doctorRepoPG) ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityRule, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+ruleCols+` FROM availability_rule WHERE doctor_id = $1 ORDER BY weekday`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []*AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, active, mrn, first_name, last_name, birth_date, gender,
	email, phone, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Active, &p.MRN, &p.FirstName, &p.LastName,
		&p.BirthDate, &p.Gender, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, active, mrn, first_name, last_name, birth_date, gender, email, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Active, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Email, p.Phone)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET active=$2, mrn=$3, first_name=$4, last_name=$5,
			birth_date=$6, gender=$7, email=$8, phone=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Active, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Email, p.Phone)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
