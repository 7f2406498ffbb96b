package storage

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sitemate/core/site"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

type expenseRecord struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Project  string          `gorm:"size:255;index;not null"`
	Item     string          `gorm:"size:255;not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(18,2)"`
	Category string          `gorm:"size:32"`
	Date     time.Time
	Note     string `gorm:"type:text"`
}

func (expenseRecord) TableName() string { return "expenses" }

type stockRecord struct {
	Project   string `gorm:"size:255;primaryKey"`
	Item      string `gorm:"size:255;primaryKey"`
	Quantity  float64
	Unit      string `gorm:"size:32"`
	UpdatedAt time.Time
}

func (stockRecord) TableName() string { return "inventory" }

type movementRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Project   string `gorm:"size:255;index;not null"`
	Item      string `gorm:"size:255;not null"`
	Change    float64
	Unit      string `gorm:"size:32"`
	Operation string `gorm:"size:8"`
	At        time.Time
}

func (movementRecord) TableName() string { return "inventory_logs" }

type diaryRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Project   string         `gorm:"size:255;not null;uniqueIndex:idx_diary_day"`
	Date      string         `gorm:"size:10;not null;uniqueIndex:idx_diary_day"`
	Weather   string         `gorm:"size:128"`
	Labor     map[string]int `gorm:"type:jsonb;serializer:json"`
	WorkDone  string         `gorm:"type:text"`
	Issues    string         `gorm:"type:text"`
	CreatedAt time.Time
}

func (diaryRecord) TableName() string { return "site_diary" }

type supplierRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Company      string    `gorm:"size:255;not null"`
	Location     string    `gorm:"size:128;index"`
	Phone        string    `gorm:"size:32"`
	Email        string    `gorm:"size:255"`
	Materials    []string  `gorm:"type:jsonb;serializer:json"`
	Rating       float64
	RegisteredAt time.Time
}

func (supplierRecord) TableName() string { return "suppliers" }

type bidRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Project     string          `gorm:"size:255;index;not null"`
	Supplier    string          `gorm:"size:255;index;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)"`
	Phone       string          `gorm:"size:32"`
	Status      string          `gorm:"size:16;default:Pending"`
	SubmittedAt time.Time
}

func (bidRecord) TableName() string { return "bids" }

var ledgerModels = []interface{}{
	&expenseRecord{}, &stockRecord{}, &movementRecord{}, &diaryRecord{}, &supplierRecord{}, &bidRecord{},
}

func (s *PostgresStore) AddExpense(ctx context.Context, e *site.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	id := newID(&e.ID)
	return s.db.WithContext(ctx).Create(&expenseRecord{
		ID:       id,
		Project:  e.Project,
		Item:     e.Item,
		Amount:   e.Amount,
		Category: string(e.Category),
		Date:     e.Date,
		Note:     e.Note,
	}).Error
}

func (s *PostgresStore) Expenses(ctx context.Context, project string) ([]site.Expense, error) {
	var recs []expenseRecord
	err := s.db.WithContext(ctx).Where("project = ?", strings.TrimSpace(project)).Order("date DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]site.Expense, 0, len(recs))
	for _, r := range recs {
		out = append(out, site.Expense{
			ID:       r.ID.String(),
			Project:  r.Project,
			Item:     r.Item,
			Amount:   r.Amount,
			Category: site.ExpenseCategory(r.Category),
			Date:     r.Date,
			Note:     r.Note,
		})
	}
	return out, nil
}

func (s *PostgresStore) MoveStock(ctx context.Context, project string, req site.StockRequest) (site.StockItem, error) {
	project = strings.TrimSpace(project)
	item := strings.TrimSpace(req.Item)

	var next site.StockItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec stockRecord
		var cur *site.StockItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project = ? AND item = ?", project, item).First(&rec).Error
		switch {
		case stderrors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			c := rec.toItem()
			cur = &c
		}

		n, mv, err := site.ApplyStock(project, cur, req, s.now())
		if err != nil {
			return err
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project"}, {Name: "item"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit", "updated_at"}),
		}).Create(&stockRecord{
			Project:   n.Project,
			Item:      n.Item,
			Quantity:  n.Quantity,
			Unit:      n.Unit,
			UpdatedAt: n.UpdatedAt,
		}).Error
		if err != nil {
			return err
		}
		next = n
		return tx.Create(&movementRecord{
			Project:   mv.Project,
			Item:      mv.Item,
			Change:    mv.Change,
			Unit:      mv.Unit,
			Operation: string(mv.Operation),
			At:        mv.At,
		}).Error
	})
	return next, err
}

func (r stockRecord) toItem() site.StockItem {
	return site.StockItem{Project: r.Project, Item: r.Item, Quantity: r.Quantity, Unit: r.Unit, UpdatedAt: r.UpdatedAt}
}

func (s *PostgresStore) Stock(ctx context.Context, project string) ([]site.StockItem, error) {
	var recs []stockRecord
	err := s.db.WithContext(ctx).Where("project = ?", strings.TrimSpace(project)).Order("item").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]site.StockItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toItem())
	}
	return out, nil
}

func (s *PostgresStore) StockLog(ctx context.Context, project string) ([]site.StockMovement, error) {
	var recs []movementRecord
	err := s.db.WithContext(ctx).Where("project = ?", strings.TrimSpace(project)).Order("id DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]site.StockMovement, 0, len(recs))
	for _, r := range recs {
		out = append(out, site.StockMovement{
			Project:   r.Project,
			Item:      r.Item,
			Change:    r.Change,
			Unit:      r.Unit,
			Operation: site.StockOperation(r.Operation),
			At:        r.At,
		})
	}
	return out, nil
}

func (s *PostgresStore) AddDiary(ctx context.Context, d *site.DiaryEntry) error {
	if err := d.Validate(s.now()); err != nil {
		return err
	}
	id := newID(&d.ID)
	err := s.db.WithContext(ctx).Create(&diaryRecord{
		ID:        id,
		Project:   d.Project,
		Date:      d.Date,
		Weather:   d.Weather,
		Labor:     d.Labor,
		WorkDone:  d.WorkDone,
		Issues:    d.Issues,
		CreatedAt: d.CreatedAt,
	}).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return site.DiaryExists(d.Project, d.Date)
	}
	return err
}

func (s *PostgresStore) Diary(ctx context.Context, project string) ([]site.DiaryEntry, error) {
	var recs []diaryRecord
	err := s.db.WithContext(ctx).Where("project = ?", strings.TrimSpace(project)).Order("date DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]site.DiaryEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, site.DiaryEntry{
			ID:        r.ID.String(),
			Project:   r.Project,
			Date:      r.Date,
			Weather:   r.Weather,
			Labor:     r.Labor,
			WorkDone:  r.WorkDone,
			Issues:    r.Issues,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *PostgresStore) RegisterSupplier(ctx context.Context, sup *site.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	sup.RegisteredAt = s.now()
	id := newID(&sup.ID)
	return s.db.WithContext(ctx).Create(&supplierRecord{
		ID:           id,
		Company:      sup.Company,
		Location:     string(sup.Location),
		Phone:        sup.Phone,
		Email:        sup.Email,
		Materials:    sup.Materials,
		Rating:       sup.Rating,
		RegisteredAt: sup.RegisteredAt,
	}).Error
}

// Suppliers matches in Go so every backend searches the same way
func (s *PostgresStore) Suppliers(ctx context.Context, query string) ([]site.Supplier, error) {
	var recs []supplierRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, err
	}
	var out []site.Supplier
	for _, r := range recs {
		sup := site.Supplier{
			ID:           r.ID.String(),
			Company:      r.Company,
			Location:     types.Location(r.Location),
			Phone:        r.Phone,
			Email:        r.Email,
			Materials:    r.Materials,
			Rating:       r.Rating,
			RegisteredAt: r.RegisteredAt,
		}
		if sup.Matches(query) {
			out = append(out, sup)
		}
	}
	site.SortSuppliers(out)
	return out, nil
}

func (s *PostgresStore) SubmitBid(ctx context.Context, b *site.Bid) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.SubmittedAt = s.now()
	id := newID(&b.ID)
	return s.db.WithContext(ctx).Create(&bidRecord{
		ID:          id,
		Project:     b.Project,
		Supplier:    b.Supplier,
		Amount:      b.Amount,
		Phone:       b.Phone,
		Status:      string(b.Status),
		SubmittedAt: b.SubmittedAt,
	}).Error
}

func (s *PostgresStore) Bids(ctx context.Context, project string) ([]site.Bid, error) {
	return s.findBids(ctx, "project = ?", strings.TrimSpace(project), "amount ASC, submitted_at ASC")
}

func (s *PostgresStore) SupplierBids(ctx context.Context, supplier string) ([]site.Bid, error) {
	return s.findBids(ctx, "supplier = ?", strings.TrimSpace(supplier), "submitted_at DESC")
}

func (s *PostgresStore) findBids(ctx context.Context, where, arg, order string) ([]site.Bid, error) {
	var recs []bidRecord
	if err := s.db.WithContext(ctx).Where(where, arg).Order(order).Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]site.Bid, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toBid())
	}
	return out, nil
}

func (r bidRecord) toBid() site.Bid {
	return site.Bid{
		ID:          r.ID.String(),
		Project:     r.Project,
		Supplier:    r.Supplier,
		Amount:      r.Amount,
		Phone:       r.Phone,
		Status:      site.BidStatus(r.Status),
		SubmittedAt: r.SubmittedAt,
	}
}

func (s *PostgresStore) DecideBid(ctx context.Context, id string, status site.BidStatus) (*site.Bid, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NotFound("bid", id)
	}

	var decided site.Bid
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec bidRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", uid).First(&rec).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("bid", id)
		}
		if err != nil {
			return err
		}
		if err := site.Decide(rec.toBid(), status); err != nil {
			return err
		}
		if err := tx.Model(&rec).Update("status", string(status)).Error; err != nil {
			return err
		}
		rec.Status = string(status)
		decided = rec.toBid()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

// newID parses or assigns the record ID held in *id
func newID(id *string) uuid.UUID {
	if u, err := uuid.Parse(*id); err == nil {
		return u
	}
	u := uuid.New()
	*id = u.String()
	return u
}
