// Package storage persists completed estimations as named projects.
// Supports multiple backends: file, memory, PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Store persists projects by name. Writes to the same name are serialized
// and the last writer wins.
type Store interface {
	// Save creates or replaces the project with p.Name
	Save(ctx context.Context, p *Project) error

	// Load retrieves a project by name
	Load(ctx context.Context, name string) (*Project, error)

	// Delete removes a project
	Delete(ctx context.Context, name string) error

	// List returns every project, newest first
	List(ctx context.Context) ([]Summary, error)

	// Close closes the store
	Close() error
}

// Project is a saved estimation
type Project struct {
	// ID is assigned on first save
	ID string `json:"id"`

	// Name identifies the project
	Name string `json:"name"`

	// Location is the site
	Location types.Location `json:"location"`

	// Soil is the site soil
	Soil types.SoilType `json:"soil"`

	// BOQ is the priced bill of quantities
	BOQ types.BOQTable `json:"boq"`

	// Narrative is the report text shown with the BOQ
	Narrative string `json:"narrative,omitempty"`

	// UpdatedAt is the time of the last save
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is a list entry
type Summary struct {
	Name      string          `json:"name"`
	Location  types.Location  `json:"location"`
	Timestamp time.Time       `json:"timestamp"`
	Total     string          `json:"total"`
	Value     decimal.Decimal `json:"value"`
	Items     int             `json:"items"`
}

func summarize(p *Project) Summary {
	total := p.BOQ.Total()
	return Summary{
		Name:      p.Name,
		Location:  p.Location,
		Timestamp: p.UpdatedAt,
		Total:     types.FormatNaira(total),
		Value:     total,
		Items:     len(p.BOQ.Lines),
	}
}

// prepare validates p and stamps its identity before a write
func prepare(p *Project, now time.Time) error {
	if p == nil {
		return errors.InvalidInput("project", nil)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.InvalidInput("name", "empty")
	}
	if p.BOQ.IsEmpty() {
		return errors.New(errors.TypeInput, "cannot save empty project").WithContext("project", p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.UpdatedAt = now
	return nil
}

func notFound(name string) error {
	return errors.NotFound("project", name)
}

func clone(p *Project) *Project {
	c := *p
	c.BOQ = *p.BOQ.Clone()
	return &c
}

// nameLocks hands out one mutex per project name
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *nameLocks) lock(name string) func() {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Options configures StoreFactory
type Options struct {
	// Path is the directory for the file backend
	Path string

	// DSN is the PostgreSQL connection string
	DSN string
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, opts Options) (Store, error) {
	switch backend {
	case BackendFile, "":
		path := opts.Path
		if path == "" {
			path = ".sitemate"
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		return OpenPostgresStore(opts.DSN)
	default:
		return nil, errors.Config(fmt.Sprintf("unsupported storage backend: %s", backend))
	}
}

// Ensure interfaces are implemented
var (
	_ io.Closer = (*FileStore)(nil)
	_ io.Closer = (*MemoryStore)(nil)
	_ io.Closer = (*PostgresStore)(nil)
	_ Store     = (*FileStore)(nil)
	_ Store     = (*MemoryStore)(nil)
	_ Store     = (*PostgresStore)(nil)
	_ Ledger    = (*FileStore)(nil)
	_ Ledger    = (*MemoryStore)(nil)
	_ Ledger    = (*PostgresStore)(nil)
)
