// Package finance tracks expenses against a monthly budget.
package finance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ExpensesKey = "adhd-expenses"
	BudgetKey   = "adhd-budget"
)

// ErrInvalidAmount is returned for zero or negative amounts.
var ErrInvalidAmount = errors.New("finance: amount must be positive")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Expense is one spending record. Mood is the mood at the time of the
// purchase, used by analytics.
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Impulsive   bool      `json:"impulsive"`
	Mood        mood.Mood `json:"mood,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e Expense) GetID() string      { return e.ID }
func (e *Expense) Touch(t time.Time) { e.UpdatedAt = t }

// Budget is the monthly envelope plus optional per-category limits.
type Budget struct {
	Monthly    float64            `json:"monthly"`
	Categories map[string]float64 `json:"categories"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func (b *Budget) Touch(t time.Time) { b.UpdatedAt = t }

// CategoryStatus is spend versus limit for one category.
type CategoryStatus struct {
	Category string  `json:"category"`
	Spent    float64 `json:"spent"`
	Limit    float64 `json:"limit"`
	Over     bool    `json:"over"`
}

// Status summarises a month against the budget.
type Status struct {
	Month      string           `json:"month"`
	Spent      float64          `json:"spent"`
	Budget     float64          `json:"budget"`
	Remaining  float64          `json:"remaining"`
	OverBudget bool             `json:"overBudget"`
	Categories []CategoryStatus `json:"categories"`
}

// Store owns expenses and the budget.
type Store struct {
	expenses *docstore.Collection[Expense]
	budget   *docstore.Document[Budget]
}

// NewStore loads finance state from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{
		expenses: docstore.NewCollection[Expense](kv, ExpensesKey, log),
		budget: docstore.NewDocument(kv, BudgetKey, func() Budget {
			return Budget{Categories: map[string]float64{}}
		}, log),
	}
}

// AddExpense assigns an id, defaults the date to now and the category
// to "autre", and stores e.
func (s *Store) AddExpense(e Expense) (Expense, error) {
	if e.Amount <= 0 {
		return Expense{}, ErrInvalidAmount
	}
	now := timeNow().UTC()
	e.ID = uuid.NewString()
	if e.Date.IsZero() {
		e.Date = now
	}
	e.Category = normalizeCategory(e.Category)
	e.UpdatedAt = now
	return s.expenses.Add(e), nil
}

// UpdateExpense applies fn to the expense with id.
func (s *Store) UpdateExpense(id string, fn func(*Expense)) (Expense, error) {
	var bad bool
	e, err := s.expenses.Update(id, func(e *Expense) {
		prev := *e
		fn(e)
		e.ID = prev.ID
		e.Category = normalizeCategory(e.Category)
		if e.Amount <= 0 {
			bad = true
			*e = prev
		}
	})
	if err != nil {
		return Expense{}, fmt.Errorf("finance: update %s: %w", id, err)
	}
	if bad {
		return e, ErrInvalidAmount
	}
	return e, nil
}

// DeleteExpense removes the expense with id.
func (s *Store) DeleteExpense(id string) error {
	if err := s.expenses.Delete(id); err != nil {
		return fmt.Errorf("finance: delete %s: %w", id, err)
	}
	return nil
}

// List returns the expenses of the month containing month, newest
// first. A zero month returns every expense.
func (s *Store) List(month time.Time) []Expense {
	var out []Expense
	if month.IsZero() {
		out = s.expenses.List()
	} else {
		out = s.expenses.Filter(inMonth(month))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// MonthTotal sums the expenses of the month containing month.
func (s *Store) MonthTotal(month time.Time) float64 {
	var total float64
	for _, e := range s.expenses.Filter(inMonth(month)) {
		total += e.Amount
	}
	return total
}

// CategoryTotals sums the month's expenses per category.
func (s *Store) CategoryTotals(month time.Time) map[string]float64 {
	out := map[string]float64{}
	for _, e := range s.expenses.Filter(inMonth(month)) {
		out[e.Category] += e.Amount
	}
	return out
}

// Budget returns the current budget.
func (s *Store) Budget() Budget { return s.budget.Get() }

// SetBudget replaces the monthly amount and, when categories is non-nil,
// the per-category limits.
func (s *Store) SetBudget(monthly float64, categories map[string]float64) Budget {
	return s.budget.Update(func(b *Budget) {
		b.Monthly = max(0, monthly)
		if categories != nil {
			b.Categories = map[string]float64{}
			for k, v := range categories {
				b.Categories[normalizeCategory(k)] = v
			}
		}
	})
}

// Status compares the month's spending with the budget.
func (s *Store) Status(month time.Time) Status {
	b := s.budget.Get()
	spent := s.MonthTotal(month)
	totals := s.CategoryTotals(month)

	st := Status{
		Month:      month.Format("2006-01"),
		Spent:      spent,
		Budget:     b.Monthly,
		Remaining:  b.Monthly - spent,
		OverBudget: b.Monthly > 0 && spent > b.Monthly,
		Categories: []CategoryStatus{},
	}
	for cat, limit := range b.Categories {
		got := totals[cat]
		st.Categories = append(st.Categories, CategoryStatus{
			Category: cat,
			Spent:    got,
			Limit:    limit,
			Over:     limit > 0 && got > limit,
		})
	}
	sort.Slice(st.Categories, func(i, j int) bool { return st.Categories[i].Category < st.Categories[j].Category })
	return st
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return "autre"
	}
	return c
}

func inMonth(month time.Time) func(Expense) bool {
	y, m, _ := month.Date()
	return func(e Expense) bool {
		ey, em, _ := e.Date.In(month.Location()).Date()
		return ey == y && em == m
	}
}
