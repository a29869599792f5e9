package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedWeeklyRules(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed availability rules: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Medicina General",
		"Cardiología",
		"Dermatología",
		"Pediatría",
		"Ortopedia",
		"Neurología",
		"Psiquiatría",
		"Oftalmología",
		"Endocrinología",
		"Otorrinolaringología",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, uuid.New(), gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// seedWeeklyRules gives every doctor a Monday-Friday schedule with a morning
// and an afternoon window, 20-minute slots.
func seedWeeklyRules(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding weekly rules for %d doctors", len(doctorIDs))

	windows := []availability.TimeWindow{
		{Start: mustTime("08:00"), End: mustTime("12:00"), Label: "mañana"},
		{Start: mustTime("14:00"), End: mustTime("18:00"), Label: "tarde"},
	}
	windowsJSON, err := json.Marshal(windows)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, doctorID := range doctorIDs {
		for dow := 1; dow <= 5; dow++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_rules (
					id, doctor_id, kind, day_of_week, is_available, time_windows,
					slot_duration_minutes, buffer_minutes, max_appointments, priority,
					created_at, updated_at
				)
				VALUES ($1, $2, 'weekly_recurring', $3, true, $4, 20, 0, 0, 0, now(), now())
			`, uuid.New(), doctorID, dow, windowsJSON)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func mustTime(s string) availability.TimeOfDay {
	t, err := availability.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
