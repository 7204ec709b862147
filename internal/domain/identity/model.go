package identity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Active        bool      `db:"active" json:"active"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Specialty     string    `db:"specialty" json:"specialty"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Active    bool       `db:"active" json:"active"`
	MRN       string     `db:"mrn" json:"mrn"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// AvailabilityRule is one row of a doctor's weekly working-hours template,
// at most one per weekday. Times are clock strings in "15:04" form.
type AvailabilityRule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday   int       `db:"weekday" json:"weekday"` // 0 = Sunday, matching time.Weekday
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the clock time of at falls inside this rule's
// window. Only active rules with well-formed times cover anything.
func (r *AvailabilityRule) Covers(at time.Time) bool {
	if !r.Active {
		return false
	}
	start, err1 := time.Parse("15:04", r.StartTime)
	end, err2 := time.Parse("15:04", r.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}

	minutes := at.Hour()*60 + at.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	return minutes >= startMin && minutes < endMin
}
