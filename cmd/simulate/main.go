package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"

	"github.com/hackgods/petcare-booking/internal/api"
	"github.com/hackgods/petcare-booking/internal/logging"
	"github.com/hackgods/petcare-booking/internal/records"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	CancelRatio  float64
	ReadRatio    float64
	Owners       int
	Days         int
}

type owner struct {
	Name     string
	Whatsapp string
	PetName  string
	PetType  string
}

type booked struct {
	ID            string
	OwnerWhatsapp string
}

type DataPool struct {
	Owners []owner
	Days   []string
	Times  []string

	mu           sync.RWMutex
	appointments []booked
}

func (dp *DataPool) AddAppointment(b booked) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, b)
}

func (dp *DataPool) GetRandomAppointment(f *gofakeit.Faker) (booked, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return booked{}, false
	}
	return dp.appointments[f.IntN(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, fastest, slowest, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	fastest = latencies[0]
	slowest = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, fastest, slowest, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking      OperationMetrics
	Cancel       OperationMetrics
	ReadByID     OperationMetrics
	Availability OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	log     *slog.Logger
	metrics Metrics
}

func main() {
	log := logging.Setup(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "text"), "simulate")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log.Info("simulator starting",
		"duration", cfg.Duration,
		"workers", cfg.Workers,
		"booking", cfg.BookingRatio,
		"cancel", cfg.CancelRatio,
		"read", cfg.ReadRatio,
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		log.Error("load data pool", "error", err)
		os.Exit(1)
	}
	sim.pool = pool
	log.Info("data pool ready", "owners", len(pool.Owners), "days", len(pool.Days), "times", len(pool.Times))

	sim.Run()
	sim.PrintReport()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	violations, err := sim.CheckSlots(ctx)
	if err != nil {
		log.Error("slot check failed", "error", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			log.Error("double booking", "slot", v)
		}
		os.Exit(1)
	}
	log.Info("no slot holds more than one live appointment")
}

func loadConfig() SimConfig {
	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		Owners:       getInt("SIM_OWNERS", 200),
		Days:         getInt("SIM_DAYS", 3),
	}

	total := cfg.BookingRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Owners <= 0 || cfg.Days <= 0 {
		return fmt.Errorf("SIM_OWNERS and SIM_DAYS must be > 0")
	}
	return nil
}

// loadDataPool reads the slot times from the API and makes up owners. A
// small number of days keeps contention on each slot high.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	var slots []records.TimeSlot
	if err := s.getJSON(ctx, "/time-slots", &slots); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	pool := &DataPool{}
	for _, slot := range slots {
		pool.Times = append(pool.Times, slot.Time)
	}
	if len(pool.Times) == 0 {
		return nil, fmt.Errorf("no time slots configured")
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	for i := 0; i < s.config.Days; i++ {
		pool.Days = append(pool.Days, tomorrow.AddDate(0, 0, i).Format("2006-01-02"))
	}

	f := gofakeit.New(uint64(time.Now().UnixNano()))
	for i := 0; i < s.config.Owners; i++ {
		pool.Owners = append(pool.Owners, owner{
			Name:     f.Name(),
			Whatsapp: "55" + f.Phone(),
			PetName:  f.PetName(),
			PetType:  f.RandomString([]string{"cachorro", "gato"}),
		})
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info("starting simulation", "duration", s.config.Duration, "workers", s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	f := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := f.Float64()
			if r < s.config.BookingRatio {
				s.doBooking(ctx, f)
			} else if r < s.config.BookingRatio+s.config.CancelRatio {
				s.doCancel(ctx, f)
			} else if f.Bool() {
				s.doReadByID(ctx, f)
			} else {
				s.doAvailability(ctx, f)
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, f *gofakeit.Faker) {
	o := s.pool.Owners[f.IntN(len(s.pool.Owners))]

	body, _ := json.Marshal(api.CreateAppointmentRequest{
		ServiceID:     "sim",
		Date:          s.pool.Days[f.IntN(len(s.pool.Days))],
		Time:          s.pool.Times[f.IntN(len(s.pool.Times))],
		PetName:       o.PetName,
		PetType:       o.PetType,
		PetAge:        strconv.Itoa(f.Number(1, 15)),
		OwnerName:     o.Name,
		OwnerWhatsapp: o.Whatsapp,
	})

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var appt records.Appointment
			if json.NewDecoder(resp.Body).Decode(&appt) == nil && appt.ID != "" {
				s.pool.AddAppointment(booked{ID: appt.ID, OwnerWhatsapp: appt.OwnerWhatsapp})
			}
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

func (s *Simulator) doCancel(ctx context.Context, f *gofakeit.Faker) {
	b, ok := s.pool.GetRandomAppointment(f)
	if !ok {
		return
	}

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/appointments/%s/cancel", s.config.APIBaseURL, b.ID), nil)
	req.Header.Set(api.CustomerHeader, b.OwnerWhatsapp)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		// A second cancel of the same appointment is an invalid transition.
		success = resp.StatusCode == http.StatusOK
		conflict = resp.StatusCode == http.StatusConflict
	}

	s.metrics.Cancel.Record(latency, success, conflict)
}

func (s *Simulator) doReadByID(ctx context.Context, f *gofakeit.Faker) {
	b, ok := s.pool.GetRandomAppointment(f)
	if !ok {
		return
	}

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/appointments/%s", s.config.APIBaseURL, b.ID), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ReadByID.Record(latency, success, false)
}

func (s *Simulator) doAvailability(ctx context.Context, f *gofakeit.Faker) {
	day := s.pool.Days[f.IntN(len(s.pool.Days))]

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/availability?date=%s", s.config.APIBaseURL, day), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Availability.Record(latency, success, false)
}

// CheckSlots lists every appointment and returns the slots held by more than
// one non-cancelled appointment.
func (s *Simulator) CheckSlots(ctx context.Context) ([]string, error) {
	var appts []records.Appointment
	if err := s.getJSON(ctx, "/appointments", &appts); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, a := range appts {
		if a.Status == records.StatusCancelled {
			continue
		}
		counts[a.Date+" "+a.Time]++
	}

	var violations []string
	for slot, n := range counts {
		if n > 1 {
			violations = append(violations, fmt.Sprintf("%s x%d", slot, n))
		}
	}
	sort.Strings(violations)

	s.log.Info("slot check", "appointments", len(appts), "live_slots", len(counts), "violations", len(violations))
	return violations, nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Slots under contention: %d\n", len(s.pool.Days)*len(s.pool.Times))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Availability", &s.metrics.Availability)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, fastest, slowest, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), fastest.Round(time.Millisecond), slowest.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
