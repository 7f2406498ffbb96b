// Package site covers a project once it is under construction: the expense
// ledger checked against the estimated budget, material stock control, the
// daily site diary, and the marketplace where registered suppliers bid on
// saved projects.
package site

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/internal/errors"
)

// ExpenseCategory groups ledger entries
type ExpenseCategory string

const (
	ExpenseMaterials ExpenseCategory = "Materials"
	ExpenseLabor     ExpenseCategory = "Labor"
	ExpenseLogistics ExpenseCategory = "Logistics"
	ExpensePermits   ExpenseCategory = "Permits"
	ExpenseMisc      ExpenseCategory = "Misc"
)

// ExpenseCategories lists the categories in display order
var ExpenseCategories = []ExpenseCategory{ExpenseMaterials, ExpenseLabor, ExpenseLogistics, ExpensePermits, ExpenseMisc}

// ParseExpenseCategory accepts a category name in any case. An empty name
// files the expense under Misc.
func ParseExpenseCategory(raw string) (ExpenseCategory, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ExpenseMisc, true
	}
	for _, c := range ExpenseCategories {
		if strings.EqualFold(raw, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Expense is one ledger entry
type Expense struct {
	ID       string          `json:"id"`
	Project  string          `json:"project"`
	Item     string          `json:"item"`
	Amount   decimal.Decimal `json:"amount"`
	Category ExpenseCategory `json:"category"`
	Date     time.Time       `json:"date"`
	Note     string          `json:"note,omitempty"`
}

// Validate normalises e and checks it can be logged
func (e *Expense) Validate() error {
	e.Project = strings.TrimSpace(e.Project)
	e.Item = strings.TrimSpace(e.Item)
	if e.Project == "" {
		return errors.InvalidInput("project", "empty")
	}
	if e.Item == "" {
		return errors.InvalidInput("item", "empty")
	}
	if !e.Amount.IsPositive() {
		return errors.InvalidInput("amount", e.Amount)
	}
	c, ok := ParseExpenseCategory(string(e.Category))
	if !ok {
		return errors.InvalidInput("category", e.Category)
	}
	e.Category = c
	return nil
}

// SortExpenses orders expenses newest first
func SortExpenses(es []Expense) {
	sort.SliceStable(es, func(i, j int) bool {
		return es[i].Date.After(es[j].Date)
	})
}

// Health compares actual spending with the estimated budget
type Health struct {
	Planned    decimal.Decimal                     `json:"planned"`
	Spent      decimal.Decimal                     `json:"spent"`
	Remaining  decimal.Decimal                     `json:"remaining"`
	UsedPct    float64                             `json:"used_pct"`
	OverBudget bool                                `json:"over_budget"`
	ByCategory map[ExpenseCategory]decimal.Decimal `json:"by_category"`
}

// FinancialHealth sums expenses against the planned BOQ total.
// UsedPct is zero when there is no planned budget.
func FinancialHealth(planned decimal.Decimal, expenses []Expense) Health {
	h := Health{
		Planned:    planned,
		Spent:      decimal.Zero,
		ByCategory: make(map[ExpenseCategory]decimal.Decimal),
	}
	for _, e := range expenses {
		h.Spent = h.Spent.Add(e.Amount)
		h.ByCategory[e.Category] = h.ByCategory[e.Category].Add(e.Amount)
	}
	h.Remaining = planned.Sub(h.Spent)
	h.OverBudget = h.Remaining.IsNegative()
	if planned.IsPositive() {
		h.UsedPct = h.Spent.Div(planned).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}
	return h
}
