package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

func sampleProject(name string) *Project {
	return &Project{
		Name:     name,
		Location: types.LocationLekki,
		Soil:     types.SoilSwampy,
		BOQ: types.BOQTable{
			Location: types.LocationLekki,
			Currency: types.NGN,
			Lines: []types.PricedLine{
				{Item: "Cement", Category: types.CategoryCement, Unit: types.ProcureBag, Quantity: 100,
					UnitPrice: decimal.NewFromInt(10900), Total: decimal.NewFromInt(1090000)},
				{Item: "12mm Iron Rod", Category: types.CategorySteel, Unit: types.ProcureLength, Quantity: 50,
					UnitPrice: decimal.RequireFromString("13455.5"), Total: decimal.RequireFromString("672775")},
				{Item: "Paint", Category: types.CategoryOther, Unit: types.ProcureNotInDB, Quantity: 4,
					UnitPrice: decimal.Zero, Total: decimal.Zero, Unresolved: true},
			},
		},
		Narrative: "Raft foundation recommended.",
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saved := sampleProject("Lekki Duplex")
			if err := store.Save(ctx, saved); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if saved.ID == "" {
				t.Error("save should assign an ID")
			}

			loaded, err := store.Load(ctx, "Lekki Duplex")
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if loaded.Location != saved.Location || loaded.Soil != saved.Soil {
				t.Errorf("site context changed: %s/%s", loaded.Location, loaded.Soil)
			}
			if len(loaded.BOQ.Lines) != len(saved.BOQ.Lines) {
				t.Fatalf("expected %d lines, got %d", len(saved.BOQ.Lines), len(loaded.BOQ.Lines))
			}
			for i, want := range saved.BOQ.Lines {
				got := loaded.BOQ.Lines[i]
				if got.Item != want.Item || got.Quantity != want.Quantity || !got.Total.Equal(want.Total) {
					t.Errorf("line %d = %+v, want %+v", i, got, want)
				}
			}
			diff := loaded.BOQ.Total().Sub(saved.BOQ.Total()).Abs()
			if diff.GreaterThan(decimal.RequireFromString("0.000001")) {
				t.Errorf("total drifted by %s", diff)
			}
		})
	}
}

func TestSaveRejectsEmptyBOQ(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Save(context.Background(), &Project{Name: "Empty"})
			if !errors.IsType(err, errors.TypeInput) {
				t.Fatalf("expected input error, got %v", err)
			}
			err = store.Save(context.Background(), sampleProject("   "))
			if !errors.IsType(err, errors.TypeInput) {
				t.Fatalf("expected input error for blank name, got %v", err)
			}
		})
	}
}

func TestSaveReplacesByName(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleProject("Fence")
			if err := store.Save(ctx, first); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			second := sampleProject("Fence")
			second.Location = types.LocationAbuja
			if err := store.Save(ctx, second); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if second.ID != first.ID {
				t.Error("replacing a project should keep its ID")
			}

			loaded, _ := store.Load(ctx, "Fence")
			if loaded.Location != types.LocationAbuja {
				t.Errorf("expected last write to win, got %s", loaded.Location)
			}
			list, _ := store.List(ctx)
			if len(list) != 1 {
				t.Errorf("expected one project, got %d", len(list))
			}
		})
	}
}

func TestConcurrentSavesSameName(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					p := sampleProject("Shared")
					p.Narrative = fmt.Sprintf("writer %d", i)
					if err := store.Save(ctx, p); err != nil {
						t.Errorf("save %d failed: %v", i, err)
					}
				}(i)
			}
			wg.Wait()

			loaded, err := store.Load(ctx, "Shared")
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if len(loaded.BOQ.Lines) != 3 {
				t.Errorf("expected an intact record, got %+v", loaded)
			}
		})
	}
}

func TestListAndDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, n := range []string{"Alpha", "Beta"} {
				if err := store.Save(ctx, sampleProject(n)); err != nil {
					t.Fatalf("save failed: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(list) != 2 || list[0].Name != "Beta" {
				t.Fatalf("expected newest first, got %+v", list)
			}
			if list[0].Total != "₦1,762,775" {
				t.Errorf("unexpected summary total %s", list[0].Total)
			}

			if err := store.Delete(ctx, "Alpha"); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if _, err := store.Load(ctx, "Alpha"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected not found after delete, got %v", err)
			}
			if err := store.Delete(ctx, "Alpha"); !errors.IsType(err, errors.TypeNotFound) {
				t.Errorf("expected not found deleting twice, got %v", err)
			}
		})
	}
}

func TestFileNameKeepsSimilarNamesApart(t *testing.T) {
	if fileName("My Project") == fileName("my-project") {
		t.Error("distinct names must map to distinct files")
	}
	long := strings.Repeat("Lekki Phase 1 Duplex ", 10)
	if fileName(long) == fileName(long+"B") {
		t.Error("names sharing a truncated slug must map to distinct files")
	}
}

func TestFileStoreLongName(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	ctx := context.Background()
	name := strings.Repeat("Oyenuga Road Block of Flats ", 8)

	if n := fileName(strings.TrimSpace(name)); len(n) > 255 {
		t.Fatalf("file name too long: %d bytes", len(n))
	}
	if err := fs.Save(ctx, sampleProject(name)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := fs.Load(ctx, name)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Name != strings.TrimSpace(name) {
		t.Errorf("unexpected name %q", got.Name)
	}
}

func TestStoreFactory(t *testing.T) {
	if _, err := StoreFactory(BackendMemory, Options{}); err != nil {
		t.Errorf("memory backend: %v", err)
	}
	if _, err := StoreFactory(BackendFile, Options{Path: t.TempDir()}); err != nil {
		t.Errorf("file backend: %v", err)
	}
	if _, err := StoreFactory(BackendPostgres, Options{}); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("postgres without DSN should be a config error, got %v", err)
	}
	if _, err := StoreFactory("s3", Options{}); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("unknown backend should be a config error, got %v", err)
	}
}
