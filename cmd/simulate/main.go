package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citamed/citamed-scheduling/internal/db"
)

// Booking load generator. Many workers race for the same availability
// calendar; the interesting number at the end is that conflicts plus
// successes add up while duplicate bookings stay at zero.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	DoctorLimit  int
	PatientLimit int
	DaysAhead    int
	PostgresDSN  string
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 20),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 5),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 200),
		DaysAhead:    getInt("SIM_DAYS_AHEAD", 7),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	avg = total / time.Duration(len(latencies))
	p50 = latencies[len(latencies)/2]
	p95 = latencies[len(latencies)*95/100]
	return avg, p50, p95
}

type slotDTO struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Available bool   `json:"is_available"`
}

type availabilityDTO struct {
	Slots []slotDTO `json:"slots"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := loadSimConfig()
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required to pick doctors and patients")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	doctors, err := loadIDs(context.Background(), pool, "doctors", cfg.DoctorLimit)
	if err != nil {
		log.Fatalf("load doctors: %v", err)
	}
	patients, err := loadIDs(context.Background(), pool, "patients", cfg.PatientLimit)
	if err != nil {
		log.Fatalf("load patients: %v", err)
	}
	if len(doctors) == 0 || len(patients) == 0 {
		log.Fatal("no doctors or patients found, run cmd/seed first")
	}

	log.Printf("simulating: workers=%d duration=%s doctors=%d patients=%d",
		cfg.Workers, cfg.Duration, len(doctors), len(patients))

	metrics := &OperationMetrics{}
	client := &http.Client{Timeout: 10 * time.Second}

	runCtx, stop := context.WithTimeout(context.Background(), cfg.Duration)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for runCtx.Err() == nil {
				doctor := doctors[rng.Intn(len(doctors))]
				patient := patients[rng.Intn(len(patients))]
				date := time.Now().AddDate(0, 0, 1+rng.Intn(cfg.DaysAhead)).Format("2006-01-02")
				attemptOne(runCtx, client, cfg.APIBaseURL, metrics, doctor, patient, date, rng)
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	report(metrics)
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, table string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`SELECT id FROM %s ORDER BY created_at LIMIT %d`, table, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func attemptOne(ctx context.Context, client *http.Client, baseURL string, metrics *OperationMetrics, doctor, patient uuid.UUID, date string, rng *rand.Rand) {
	slots, err := fetchAvailability(ctx, client, baseURL, doctor, date)
	if err != nil || len(slots) == 0 {
		return
	}

	// Bias toward the front of the day so workers collide.
	idx := rng.Intn(len(slots))
	if idx > len(slots)/3 {
		idx = rng.Intn(len(slots)/3 + 1)
	}
	slot := slots[idx]

	body, _ := json.Marshal(map[string]any{
		"doctor_id":  doctor.String(),
		"patient_id": patient.String(),
		"date":       slot.Date,
		"start_time": slot.StartTime,
	})

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			metrics.Record(time.Since(start), false, false)
		}
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	metrics.Record(time.Since(start),
		resp.StatusCode == http.StatusCreated,
		resp.StatusCode == http.StatusConflict)
}

func fetchAvailability(ctx context.Context, client *http.Client, baseURL string, doctor uuid.UUID, date string) ([]slotDTO, error) {
	url := fmt.Sprintf("%s/doctors/%s/availability?date=%s", baseURL, doctor, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("availability returned %d", resp.StatusCode)
	}

	var dto availabilityDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, err
	}

	var open []slotDTO
	for _, s := range dto.Slots {
		if s.Available {
			open = append(open, s)
		}
	}
	return open, nil
}

func report(metrics *OperationMetrics) {
	avg, p50, p95 := metrics.Stats()
	log.Printf("bookings: total=%d success=%d conflict=%d error=%d",
		atomic.LoadInt64(&metrics.Total),
		atomic.LoadInt64(&metrics.Success),
		atomic.LoadInt64(&metrics.Conflict),
		atomic.LoadInt64(&metrics.Error))
	log.Printf("latency: avg=%s p50=%s p95=%s", avg, p50, p95)
}
