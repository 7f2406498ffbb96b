package storage

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sitemate/core/site"
	"sitemate/internal/errors"
)

// Ledger records what happens on site after a project is estimated:
// spending, stock movements, the daily diary, and supplier bids.
type Ledger interface {
	// AddExpense logs one expense against a project
	AddExpense(ctx context.Context, e *site.Expense) error

	// Expenses returns a project's expenses, newest first
	Expenses(ctx context.Context, project string) ([]site.Expense, error)

	// MoveStock applies one delivery or draw and returns the new balance.
	// The balance and its log entry are written together.
	MoveStock(ctx context.Context, project string, req site.StockRequest) (site.StockItem, error)

	// Stock returns the current balances of a project, by item name
	Stock(ctx context.Context, project string) ([]site.StockItem, error)

	// StockLog returns a project's stock movements, newest first
	StockLog(ctx context.Context, project string) ([]site.StockMovement, error)

	// AddDiary files the day's site report; one entry per project per day
	AddDiary(ctx context.Context, d *site.DiaryEntry) error

	// Diary returns a project's entries, newest day first
	Diary(ctx context.Context, project string) ([]site.DiaryEntry, error)

	// RegisterSupplier adds a supplier to the directory
	RegisterSupplier(ctx context.Context, s *site.Supplier) error

	// Suppliers searches the directory, best rated first
	Suppliers(ctx context.Context, query string) ([]site.Supplier, error)

	// SubmitBid records a pending bid on a project
	SubmitBid(ctx context.Context, b *site.Bid) error

	// Bids returns a project's bids, cheapest first
	Bids(ctx context.Context, project string) ([]site.Bid, error)

	// SupplierBids returns a supplier's bids, newest first
	SupplierBids(ctx context.Context, supplier string) ([]site.Bid, error)

	// DecideBid accepts or rejects a pending bid
	DecideBid(ctx context.Context, id string, status site.BidStatus) (*site.Bid, error)
}

// Tenders lists saved projects as tenders open to supplier bids
func Tenders(ctx context.Context, store Store, query string) ([]site.Tender, error) {
	list, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	ts := make([]site.Tender, 0, len(list))
	for _, s := range list {
		ts = append(ts, site.Tender{
			Project:  s.Name,
			Location: s.Location,
			Date:     s.Timestamp,
			EstValue: s.Value,
			Items:    s.Items,
		})
	}
	return site.OpenTenders(ts, query), nil
}

// SubmitRegisteredBid submits b after checking its supplier is in the
// directory. Bids from unknown companies are NotFound.
func SubmitRegisteredBid(ctx context.Context, l Ledger, b *site.Bid) error {
	company := strings.TrimSpace(b.Supplier)
	ss, err := l.Suppliers(ctx, company)
	if err != nil {
		return err
	}
	for _, s := range ss {
		if strings.EqualFold(s.Company, company) {
			b.Supplier = s.Company
			return l.SubmitBid(ctx, b)
		}
	}
	return errors.NotFound("supplier", company)
}

// ledgerDoc is the whole ledger as held by the memory and file backends
type ledgerDoc struct {
	Expenses  []site.Expense       `json:"expenses"`
	Stock     []site.StockItem     `json:"stock"`
	Movements []site.StockMovement `json:"movements"`
	Diary     []site.DiaryEntry    `json:"diary"`
	Suppliers []site.Supplier      `json:"suppliers"`
	Bids      []site.Bid           `json:"bids"`
}

// memLedger keeps the ledger in memory. When persist is set every write is
// flushed through it and rolled back if the flush fails.
type memLedger struct {
	doc     ledgerDoc
	mu      sync.RWMutex
	now     func() time.Time
	persist func(data []byte) error
}

func newMemLedger() *memLedger {
	return &memLedger{now: time.Now}
}

// update runs fn under the write lock. fn must validate before it mutates.
func (l *memLedger) update(fn func(d *ledgerDoc) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var before []byte
	if l.persist != nil {
		before, _ = json.Marshal(&l.doc)
	}
	if err := fn(&l.doc); err != nil {
		return err
	}
	if l.persist == nil {
		return nil
	}

	data, err := json.MarshalIndent(&l.doc, "", "  ")
	if err == nil {
		err = l.persist(data)
	}
	if err != nil {
		var restored ledgerDoc
		_ = json.Unmarshal(before, &restored)
		l.doc = restored
		return errors.Internal("failed to write ledger", err)
	}
	return nil
}

func (l *memLedger) AddExpense(ctx context.Context, e *site.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Date.IsZero() {
		e.Date = l.now()
	}
	return l.update(func(d *ledgerDoc) error {
		d.Expenses = append(d.Expenses, *e)
		return nil
	})
}

func (l *memLedger) Expenses(ctx context.Context, project string) ([]site.Expense, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	project = strings.TrimSpace(project)
	var out []site.Expense
	for _, e := range l.doc.Expenses {
		if e.Project == project {
			out = append(out, e)
		}
	}
	site.SortExpenses(out)
	return out, nil
}

func (l *memLedger) MoveStock(ctx context.Context, project string, req site.StockRequest) (site.StockItem, error) {
	project = strings.TrimSpace(project)
	item := strings.TrimSpace(req.Item)

	var next site.StockItem
	err := l.update(func(d *ledgerDoc) error {
		idx := -1
		for i, s := range d.Stock {
			if s.Project == project && s.Item == item {
				idx = i
				break
			}
		}
		var cur *site.StockItem
		if idx >= 0 {
			c := d.Stock[idx]
			cur = &c
		}

		n, mv, err := site.ApplyStock(project, cur, req, l.now())
		if err != nil {
			return err
		}
		if idx >= 0 {
			d.Stock[idx] = n
		} else {
			d.Stock = append(d.Stock, n)
		}
		d.Movements = append(d.Movements, mv)
		next = n
		return nil
	})
	return next, err
}

func (l *memLedger) Stock(ctx context.Context, project string) ([]site.StockItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	project = strings.TrimSpace(project)
	var out []site.StockItem
	for _, s := range l.doc.Stock {
		if s.Project == project {
			out = append(out, s)
		}
	}
	sortStock(out)
	return out, nil
}

func (l *memLedger) StockLog(ctx context.Context, project string) ([]site.StockMovement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	project = strings.TrimSpace(project)
	var out []site.StockMovement
	for i := len(l.doc.Movements) - 1; i >= 0; i-- {
		if m := l.doc.Movements[i]; m.Project == project {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *memLedger) AddDiary(ctx context.Context, entry *site.DiaryEntry) error {
	if err := entry.Validate(l.now()); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return l.update(func(d *ledgerDoc) error {
		for _, existing := range d.Diary {
			if existing.Project == entry.Project && existing.Date == entry.Date {
				return site.DiaryExists(entry.Project, entry.Date)
			}
		}
		c := *entry
		c.Labor = cloneLabor(entry.Labor)
		d.Diary = append(d.Diary, c)
		return nil
	})
}

func (l *memLedger) Diary(ctx context.Context, project string) ([]site.DiaryEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	project = strings.TrimSpace(project)
	var out []site.DiaryEntry
	for _, e := range l.doc.Diary {
		if e.Project == project {
			e.Labor = cloneLabor(e.Labor)
			out = append(out, e)
		}
	}
	site.SortDiary(out)
	return out, nil
}

func (l *memLedger) RegisterSupplier(ctx context.Context, s *site.Supplier) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.RegisteredAt = l.now()
	return l.update(func(d *ledgerDoc) error {
		c := *s
		c.Materials = append([]string(nil), s.Materials...)
		d.Suppliers = append(d.Suppliers, c)
		return nil
	})
}

func (l *memLedger) Suppliers(ctx context.Context, query string) ([]site.Supplier, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []site.Supplier
	for _, s := range l.doc.Suppliers {
		if s.Matches(query) {
			s.Materials = append([]string(nil), s.Materials...)
			out = append(out, s)
		}
	}
	site.SortSuppliers(out)
	return out, nil
}

func (l *memLedger) SubmitBid(ctx context.Context, b *site.Bid) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.SubmittedAt = l.now()
	return l.update(func(d *ledgerDoc) error {
		d.Bids = append(d.Bids, *b)
		return nil
	})
}

func (l *memLedger) Bids(ctx context.Context, project string) ([]site.Bid, error) {
	out := l.bids(func(b site.Bid) bool { return b.Project == strings.TrimSpace(project) })
	site.SortBidsByAmount(out)
	return out, nil
}

func (l *memLedger) SupplierBids(ctx context.Context, supplier string) ([]site.Bid, error) {
	out := l.bids(func(b site.Bid) bool { return b.Supplier == strings.TrimSpace(supplier) })
	site.SortBidsByTime(out)
	return out, nil
}

func (l *memLedger) bids(keep func(site.Bid) bool) []site.Bid {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []site.Bid
	for _, b := range l.doc.Bids {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (l *memLedger) DecideBid(ctx context.Context, id string, status site.BidStatus) (*site.Bid, error) {
	var decided site.Bid
	err := l.update(func(d *ledgerDoc) error {
		for i, b := range d.Bids {
			if b.ID != id {
				continue
			}
			if err := site.Decide(b, status); err != nil {
				return err
			}
			d.Bids[i].Status = status
			decided = d.Bids[i]
			return nil
		}
		return errors.NotFound("bid", id)
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

func sortStock(ss []site.StockItem) {
	sort.Slice(ss, func(i, j int) bool { return ss[i].Item < ss[j].Item })
}

func cloneLabor(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
