// Package server provides the HTTP API over the budget store, with a live
// event stream of summary changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/model"
)

// Repository is the store surface the API reads and writes.
type Repository interface {
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	GetBudget(ctx context.Context, id string) (model.Budget, error)
	SaveBudget(ctx context.Context, b model.Budget) (model.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	GetExpense(ctx context.Context, id string) (model.Expense, error)
	SaveExpense(ctx context.Context, e model.Expense) (model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	// DefaultAlertThreshold applies to budgets created without one. Zero is
	// a valid threshold; callers pass the configured default.
	DefaultAlertThreshold float64
	LogRequests           bool
	Now                   func() time.Time
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At              time.Time       `json:"at"`
	ActiveBudgets   int             `json:"activeBudgets"`
	Expenses        int             `json:"expenses"`
	TotalBudgeted   decimal.Decimal `json:"totalBudgeted"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	TotalRemaining  decimal.Decimal `json:"totalRemaining"`
	OverBudgetCount int             `json:"overBudgetCount"`
	AlertCount      int             `json:"alertCount"`
	StreakDays      int             `json:"streakDays"`
}

// Delta captures the change between consecutive snapshots.
type Delta struct {
	Expenses        int             `json:"expenses"`
	TotalBudgeted   decimal.Decimal `json:"totalBudgeted"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	OverBudgetCount int             `json:"overBudgetCount"`
	AlertCount      int             `json:"alertCount"`
	StreakDays      int             `json:"streakDays"`
}

func (d Delta) isZero() bool {
	return d.Expenses == 0 &&
		d.TotalBudgeted.IsZero() &&
		d.TotalSpent.IsZero() &&
		d.OverBudgetCount == 0 &&
		d.AlertCount == 0 &&
		d.StreakDays == 0
}

// Event is emitted whenever the budget snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"startedAt"`
	LastRefreshAt   time.Time `json:"lastRefreshAt"`
	RefreshCount    int64     `json:"refreshCount"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"lastError,omitempty"`
	EventCount      int       `json:"eventCount"`
	SubscriberCount int       `json:"subscriberCount"`
}

// Service provides the HTTP API and event stream.
type Service struct {
	cfg  Config
	repo Repository

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	hasSnapshot   bool
	snapshot      Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service backed by repo.
func New(cfg Config, repo Repository) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the API router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.cfg.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Get("/summary", s.handleSummary)
		r.Get("/streak", s.handleStreak)
		r.Get("/spending", s.handleSpending)

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleReplaceBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
			r.Get("/{id}/progress", s.handleBudgetProgress)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})
	})

	return r
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.refresh(ctx, "startup")
	log.Printf("INFO: moneyplan API listening on %s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// refresh recomputes the snapshot from the store and publishes an event if
// anything changed. It runs after every mutation; there is no timer.
func (s *Service) refresh(ctx context.Context, reason string) {
	now := s.cfg.Now()
	snap, err := s.computeSnapshot(ctx, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRefreshAt = now
		s.refreshCount++
		s.mu.Unlock()
		log.Printf("ERROR: refreshing summary (%s): %v", reason, err)
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastRefreshAt = now
	s.refreshCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Reason:    reason,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "delta",
				Reason:    reason,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) computeSnapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	budgets, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	summary := budget.GenerateSummary(budgets, expenses, now)
	return Snapshot{
		At:              now,
		ActiveBudgets:   len(summary.BudgetProgress),
		Expenses:        len(expenses),
		TotalBudgeted:   summary.TotalBudgeted,
		TotalSpent:      summary.TotalSpent,
		TotalRemaining:  summary.TotalRemaining,
		OverBudgetCount: summary.OverBudgetCount,
		AlertCount:      summary.AlertCount,
		StreakDays:      budget.CalculateStreak(expenses, budgets, now),
	}, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Expenses:        curr.Expenses - prev.Expenses,
		TotalBudgeted:   curr.TotalBudgeted.Sub(prev.TotalBudgeted),
		TotalSpent:      curr.TotalSpent.Sub(prev.TotalSpent),
		OverBudgetCount: curr.OverBudgetCount - prev.OverBudgetCount,
		AlertCount:      curr.AlertCount - prev.AlertCount,
		StreakDays:      curr.StreakDays - prev.StreakDays,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRefreshAt:   s.lastRefreshAt,
		RefreshCount:    s.refreshCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
