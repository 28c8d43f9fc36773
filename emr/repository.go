package emr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

// Repository serves the patient directory and booking log from Postgres.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("emr: db handle is required")
	}
	return &Repository{db: db}, nil
}

// FindPatient matches on case-insensitive name plus exact date of birth.
// A missing record returns (nil, nil): that is a new patient, not an error.
func (r *Repository) FindPatient(ctx context.Context, fullName, dob string) (*contractx.PatientRecord, error) {
	var p Patient
	err := r.db.NewSelect().
		Model(&p).
		Where("lower(p.name) = lower(?)", strings.TrimSpace(fullName)).
		Where("p.dob = ?", strings.TrimSpace(dob)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("emr: find patient: %w", err)
	}

	return &contractx.PatientRecord{
		Name:            p.Name,
		DOB:             p.DOB,
		Email:           p.Email,
		Phone:           p.Phone,
		LastVisitDoctor: p.LastVisitDoctor,
	}, nil
}

func (r *Repository) ListDoctors(ctx context.Context) ([]contractx.Doctor, error) {
	var rows []Doctor
	if err := r.db.NewSelect().Model(&rows).Order("d.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("emr: list doctors: %w", err)
	}

	doctors := make([]contractx.Doctor, 0, len(rows))
	for _, d := range rows {
		doctors = append(doctors, contractx.Doctor{
			Name:      d.Name,
			Specialty: d.Specialty,
		})
	}
	return doctors, nil
}

func (r *Repository) AppendBooking(ctx context.Context, patientName, doctorName, appointmentTime string) error {
	booking := &Booking{
		PatientName:     patientName,
		DoctorName:      doctorName,
		AppointmentTime: appointmentTime,
	}
	if _, err := r.db.NewInsert().Model(booking).Exec(ctx); err != nil {
		return fmt.Errorf("emr: append booking: %w", err)
	}
	return nil
}
