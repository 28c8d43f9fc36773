// Package emr is the clinic's record store: patients, doctors, and the
// booking log, backed by Postgres through bun.
package emr

import (
	"time"

	"github.com/uptrace/bun"
)

type Patient struct {
	bun.BaseModel `bun:"table:patients,alias:p"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Name            string `bun:"name,notnull"`
	DOB             string `bun:"dob,notnull"`
	Email           string `bun:"email"`
	Phone           string `bun:"phone"`
	LastVisitDoctor string `bun:"last_visit_doctor"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Doctor struct {
	bun.BaseModel `bun:"table:doctors,alias:d"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull,unique"`
	Specialty string `bun:"specialty,notnull"`
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID              int64  `bun:"id,pk,autoincrement"`
	PatientName     string `bun:"patient_name,notnull"`
	DoctorName      string `bun:"doctor_name,notnull"`
	AppointmentTime string `bun:"appointment_time,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
