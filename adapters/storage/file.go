package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"sitemate/internal/errors"
)

// FileStore keeps one JSON document per project. The site ledger is a
// single document under ledger/.
type FileStore struct {
	*memLedger
	basePath string
	locks    *nameLocks
	now      func() time.Time
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	s := &FileStore{basePath: basePath, locks: newNameLocks(), now: time.Now}
	if err := s.openLedger(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) openLedger() error {
	dir := filepath.Join(s.basePath, "ledger")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	path := filepath.Join(dir, "site.json")

	l := newMemLedger()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("failed to read ledger: %w", err)
	default:
		if err := json.Unmarshal(data, &l.doc); err != nil {
			return errors.Wrapf(errors.TypeInternal, err, "failed to unmarshal %s", path)
		}
	}
	l.persist = func(data []byte) error {
		return writeAtomic(dir, path, data)
	}
	s.memLedger = l
	return nil
}

// writeAtomic replaces path with data through a temp file in dir
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// maxSlugLen keeps file names well under NAME_MAX for any project name
const maxSlugLen = 48

// fileName maps a project name to a stable, filesystem safe name
func fileName(name string) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "project"
	}
	// distinct names may share a slug, so a hash of the name keeps them apart
	sum := sha256.Sum256([]byte(name))
	return fmt.Sprintf("%s-%x.json", slug, sum[:8])
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.basePath, fileName(name))
}

func (s *FileStore) Save(ctx context.Context, p *Project) error {
	if err := prepare(p, s.now()); err != nil {
		return err
	}
	unlock := s.locks.lock(p.Name)
	defer unlock()

	if existing, err := s.read(s.path(p.Name)); err == nil && existing.ID != "" {
		p.ID = existing.ID
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := writeAtomic(s.basePath, s.path(p.Name), data); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*Project, error) {
	p, err := s.read(s.path(strings.TrimSpace(name)))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	return p, err
}

func (s *FileStore) read(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "failed to unmarshal %s", filepath.Base(path))
	}
	return &p, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	unlock := s.locks.lock(name)
	defer unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		p, err := s.read(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}
		out = append(out, summarize(p))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error {
	return nil
}

func sortSummaries(out []Summary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Name < out[j].Name
	})
}
