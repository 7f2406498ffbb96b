package site

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// DefaultRating is the rating a newly registered supplier starts with
const DefaultRating = 5.0

// Supplier is a registered material vendor
type Supplier struct {
	ID           string         `json:"id"`
	Company      string         `json:"company"`
	Location     types.Location `json:"location"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email,omitempty"`
	Materials    []string       `json:"materials,omitempty"`
	Rating       float64        `json:"rating"`
	RegisteredAt time.Time      `json:"registered_at"`
}

// Validate normalises s and checks the registration fields
func (s *Supplier) Validate() error {
	s.Company = strings.TrimSpace(s.Company)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	if s.Company == "" {
		return errors.InvalidInput("company", "empty")
	}
	if s.Phone == "" {
		return errors.InvalidInput("phone", "empty")
	}
	if strings.TrimSpace(string(s.Location)) == "" {
		return errors.InvalidInput("location", "empty")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return errors.InvalidInput("email", s.Email)
	}
	if s.Rating == 0 {
		s.Rating = DefaultRating
	}
	if s.Rating < 0 || s.Rating > 5 {
		return errors.InvalidInput("rating", s.Rating)
	}
	return nil
}

// Matches reports whether a directory search hits s. The query is matched
// against the location, company and materials; an empty query matches all.
func (s Supplier) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(string(s.Location)), q) ||
		strings.Contains(strings.ToLower(s.Company), q) {
		return true
	}
	for _, m := range s.Materials {
		if strings.Contains(strings.ToLower(m), q) {
			return true
		}
	}
	return false
}

// SortSuppliers orders suppliers by rating, then company name
func SortSuppliers(ss []Supplier) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Rating != ss[j].Rating {
			return ss[i].Rating > ss[j].Rating
		}
		return ss[i].Company < ss[j].Company
	})
}

// BidStatus is the state of a bid. Bids start Pending and are decided once.
type BidStatus string

const (
	BidPending  BidStatus = "Pending"
	BidAccepted BidStatus = "Accepted"
	BidRejected BidStatus = "Rejected"
)

// ParseBidStatus accepts a status name in any case
func ParseBidStatus(raw string) (BidStatus, bool) {
	for _, s := range []BidStatus{BidPending, BidAccepted, BidRejected} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Bid is a supplier's offer on a project tender
type Bid struct {
	ID          string          `json:"id"`
	Project     string          `json:"project"`
	Supplier    string          `json:"supplier"`
	Amount      decimal.Decimal `json:"amount"`
	Phone       string          `json:"phone,omitempty"`
	Status      BidStatus       `json:"status"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Validate normalises b; a new bid is always Pending
func (b *Bid) Validate() error {
	b.Project = strings.TrimSpace(b.Project)
	b.Supplier = strings.TrimSpace(b.Supplier)
	b.Phone = strings.TrimSpace(b.Phone)
	if b.Project == "" {
		return errors.InvalidInput("project", "empty")
	}
	if b.Supplier == "" {
		return errors.InvalidInput("supplier", "empty")
	}
	if !b.Amount.IsPositive() {
		return errors.InvalidInput("amount", b.Amount)
	}
	b.Status = BidPending
	return nil
}

// Decide checks a status change. Only a pending bid can be accepted or
// rejected.
func Decide(b Bid, to BidStatus) error {
	if to != BidAccepted && to != BidRejected {
		return errors.InvalidInput("status", to)
	}
	if b.Status != BidPending {
		return errors.Conflict(fmt.Sprintf("bid %s is already %s", b.ID, b.Status)).WithContext("bid", b.ID)
	}
	return nil
}

// SortBidsByAmount orders a project's bids cheapest first
func SortBidsByAmount(bs []Bid) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].Amount.Equal(bs[j].Amount) {
			return bs[i].Amount.LessThan(bs[j].Amount)
		}
		return bs[i].SubmittedAt.Before(bs[j].SubmittedAt)
	})
}

// SortBidsByTime orders bids newest first
func SortBidsByTime(bs []Bid) {
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].SubmittedAt.After(bs[j].SubmittedAt)
	})
}

// Tender is a saved project open to supplier bids
type Tender struct {
	Project  string          `json:"project"`
	Location types.Location  `json:"location"`
	Date     time.Time       `json:"date"`
	EstValue decimal.Decimal `json:"est_value"`
	Items    int             `json:"items"`
}

// OpenTenders returns the tenders whose location contains query, newest
// first. An empty query returns every tender.
func OpenTenders(ts []Tender, query string) []Tender {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Tender, 0, len(ts))
	for _, t := range ts {
		if q == "" || strings.Contains(strings.ToLower(string(t.Location)), q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Project < out[j].Project
	})
	return out
}
