// Command seed populates the EMR database with the clinic's doctors and a
// batch of generated patient records for local development.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog/log"

	"github.com/clinicdesk/scheduling-agent/emr"
	configx "github.com/clinicdesk/scheduling-agent/pkg/config"
	_ "github.com/clinicdesk/scheduling-agent/pkg/logger/autoload"
)

type SeedConfig struct {
	Patients int   `envconfig:"SEED_PATIENTS" default:"25"`
	Seed     int64 `envconfig:"SEED_RANDOM_SEED" default:"0"`
}

var doctors = []emr.Doctor{
	{Name: "Dr. Adams", Specialty: "General Health"},
	{Name: "Dr. Chen", Specialty: "Cardiology"},
	{Name: "Dr. Patel", Specialty: "Orthopedics"},
	{Name: "Dr. Lee", Specialty: "Pediatrics"},
}

func main() {
	ctx := context.Background()

	seedCfg := configx.MustNew[SeedConfig]("")
	if seedCfg.Seed != 0 {
		gofakeit.Seed(seedCfg.Seed)
	}

	emrCfg := configx.MustNew[emr.Config]("EMR")
	db, err := emr.Open(*emrCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open emr database")
	}
	defer db.Close()

	if err := emr.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate emr database")
	}

	for i := range doctors {
		d := doctors[i]
		if _, err := db.NewInsert().
			Model(&d).
			On("CONFLICT (name) DO UPDATE").
			Set("specialty = EXCLUDED.specialty").
			Exec(ctx); err != nil {
			log.Fatal().Err(err).Str("doctor", d.Name).Msg("seed doctor")
		}
	}

	patients := make([]emr.Patient, 0, seedCfg.Patients)
	for i := 0; i < seedCfg.Patients; i++ {
		dob := gofakeit.DateRange(
			time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
		).Format("2006-01-02")

		patients = append(patients, emr.Patient{
			Name:            gofakeit.Name(),
			DOB:             dob,
			Email:           gofakeit.Email(),
			Phone:           gofakeit.Phone(),
			LastVisitDoctor: doctors[gofakeit.Number(0, len(doctors)-1)].Name,
		})
	}
	if len(patients) > 0 {
		if _, err := db.NewInsert().Model(&patients).Exec(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed patients")
		}
	}

	fmt.Printf("seeded %d doctors and %d patients\n", len(doctors), len(patients))
}
