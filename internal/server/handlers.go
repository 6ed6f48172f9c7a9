package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/pipeline"
	"github.com/theirongolddev/moneyplan/internal/store"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StreakResponse is served at /v1/streak.
type StreakResponse struct {
	Days    int    `json:"days"`
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Tier    int    `json:"tier"`
	Message string `json:"message"`
}

// SpendingResponse is served at /v1/spending.
type SpendingResponse struct {
	Summary model.ExpenseSummary    `json:"summary"`
	Monthly []model.MonthlySpending `json:"monthly"`
}

type budgetRequest struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"`
	StartDate      model.Date      `json:"startDate"`
	EndDate        *model.Date     `json:"endDate"`
	AlertThreshold *float64        `json:"alertThreshold"`
	IsActive       *bool           `json:"isActive"`
}

type expenseRequest struct {
	Date        model.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps store errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Printf("ERROR: %s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeValidation(w http.ResponseWriter, err error) {
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fe})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Service) loadAll(w http.ResponseWriter, r *http.Request) ([]model.Budget, []model.Expense, bool) {
	budgets, err := s.repo.ListBudgets(r.Context())
	if err != nil {
		writeStoreError(w, "budgets", err)
		return nil, nil, false
	}
	expenses, err := s.repo.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, "expenses", err)
		return nil, nil, false
	}
	return budgets, expenses, true
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	budgets, expenses, ok := s.loadAll(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, budget.GenerateSummary(budgets, expenses, s.cfg.Now()))
}

func (s *Service) handleStreak(w http.ResponseWriter, r *http.Request) {
	budgets, expenses, ok := s.loadAll(w, r)
	if !ok {
		return
	}
	badge := budget.BadgeFor(budget.CalculateStreak(expenses, budgets, s.cfg.Now()))
	writeJSON(w, http.StatusOK, StreakResponse{
		Days:    badge.Days,
		Title:   badge.Title,
		Icon:    badge.Icon,
		Tier:    badge.Tier,
		Message: badge.Message(),
	})
}

func (s *Service) handleSpending(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, "expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, SpendingResponse{
		Summary: pipeline.SummarizeExpenses(expenses, s.cfg.Now()),
		Monthly: pipeline.MonthlyTotals(expenses),
	})
}

func (s *Service) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.repo.ListBudgets(r.Context())
	if err != nil {
		writeStoreError(w, "budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Service) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "budget", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.GetBudget(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "budget", err)
		return
	}
	expenses, err := s.repo.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, "expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, budget.CalculateProgress(b, expenses, s.cfg.Now()))
}

// toBudget converts a request body into a budget, applying defaults for the
// optional fields.
func (s *Service) toBudget(req budgetRequest) (model.Budget, error) {
	errs := model.FieldErrors{}
	b := model.Budget{
		Name:           strings.TrimSpace(req.Name),
		Amount:         req.Amount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AlertThreshold: s.cfg.DefaultAlertThreshold,
		IsActive:       true,
	}
	if b.EndDate != nil && b.EndDate.IsZero() {
		b.EndDate = nil
	}

	if req.Category == "" {
		errs["category"] = "Category is required"
	} else if c, err := model.ParseBudgetCategory(req.Category); err != nil {
		errs["category"] = err.Error()
	} else {
		b.Category = c
	}
	if p, err := model.ParsePeriod(req.Period); err != nil {
		errs["period"] = err.Error()
	} else {
		b.Period = p
	}
	if req.AlertThreshold != nil {
		b.AlertThreshold = *req.AlertThreshold
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := model.ValidateBudget(b); err != nil {
		var fe model.FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				if _, set := errs[k]; !set {
					errs[k] = v
				}
			}
		}
	}
	if len(errs) > 0 {
		return model.Budget{}, errs
	}
	return b, nil
}

func (s *Service) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	b, err := s.toBudget(req)
	if err != nil {
		writeValidation(w, err)
		return
	}
	created, err := s.repo.SaveBudget(r.Context(), b)
	if err != nil {
		writeStoreError(w, "budget", err)
		return
	}
	log.Printf("INFO: Created budget %s (%s, %s)", created.ID, created.Category, created.Period)
	s.refresh(r.Context(), "budget_created")
	writeJSON(w, http.StatusCreated, created)
}

// handleReplaceBudget applies a full replace; fields missing from the body
// take their defaults, not their stored values.
func (s *Service) handleReplaceBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.repo.GetBudget(r.Context(), id)
	if err != nil {
		writeStoreError(w, "budget", err)
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	b, err := s.toBudget(req)
	if err != nil {
		writeValidation(w, err)
		return
	}
	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt

	updated, err := s.repo.SaveBudget(r.Context(), b)
	if err != nil {
		writeStoreError(w, "budget", err)
		return
	}
	log.Printf("INFO: Replaced budget %s", updated.ID)
	s.refresh(r.Context(), "budget_updated")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteBudget(r.Context(), id); err != nil {
		writeStoreError(w, "budget", err)
		return
	}
	log.Printf("INFO: Deleted budget %s", id)
	s.refresh(r.Context(), "budget_deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := pipeline.ExpenseFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	for key, dst := range map[string]*model.Date{"from": &filter.From, "to": &filter.To} {
		if v := q.Get(key); v != "" {
			d, err := model.ParseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+key+" date")
				return
			}
			*dst = d
		}
	}

	expenses, err := s.repo.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, "expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.FilterExpenses(expenses, filter))
}

func (s *Service) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.repo.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "expense", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Service) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	e := model.Expense{
		Date:        req.Date,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}
	errs := model.FieldErrors{}
	if req.Category != "" {
		c, err := model.ParseCategory(req.Category)
		if err != nil {
			errs["category"] = err.Error()
		}
		e.Category = c
	}
	if err := model.ValidateExpense(e, s.cfg.Now()); err != nil {
		var fe model.FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				if _, set := errs[k]; !set {
					errs[k] = v
				}
			}
		}
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	created, err := s.repo.SaveExpense(r.Context(), e)
	if err != nil {
		writeStoreError(w, "expense", err)
		return
	}
	log.Printf("INFO: Recorded expense %s (%s %s)", created.ID, created.Category, created.Amount)
	s.refresh(r.Context(), "expense_created")
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteExpense(r.Context(), id); err != nil {
		writeStoreError(w, "expense", err)
		return
	}
	log.Printf("INFO: Deleted expense %s", id)
	s.refresh(r.Context(), "expense_deleted")
	w.WriteHeader(http.StatusNoContent)
}
