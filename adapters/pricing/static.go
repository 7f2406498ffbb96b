package pricing

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"sitemate/core/boq"
	"sitemate/core/materials"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

// SourceStatic identifies quotes answered by the built-in rate table
const SourceStatic = "static"

// Rate is one priced catalogue entry. Prices are ex-Ibadan per procurement unit.
type Rate struct {
	Name     string                 `hcl:"name,label" json:"name"`
	Category types.MaterialCategory `hcl:"category,optional" json:"category"`
	Price    float64                `hcl:"price" json:"price"`
	Unit     string                 `hcl:"unit,optional" json:"unit"`
	Supplier string                 `hcl:"supplier,optional" json:"supplier,omitempty"`
	Aliases  []string               `hcl:"aliases,optional" json:"aliases,omitempty"`
	Default  bool                   `hcl:"default,optional" json:"default,omitempty"`
}

type rateFile struct {
	Materials []Rate `hcl:"material,block"`
}

// DefaultRates is the built-in catalogue used when no rate file is configured
func DefaultRates() []Rate {
	rates := []Rate{
		{Name: "Cement - Dangote 3X 42.5R (50kg)", Category: types.CategoryCement, Price: 10000, Unit: "bag", Supplier: "Bodija Builders Mart", Aliases: []string{"cement", "dangote cement"}, Default: true},
		{Name: "Cement - Lafarge Elephant 42.5N (50kg)", Category: types.CategoryCement, Price: 9800, Unit: "bag", Supplier: "Bodija Builders Mart", Aliases: []string{"lafarge cement"}},
		{Name: "Sharp Sand (20 tons)", Category: types.CategorySand, Price: 130000, Unit: "truck", Supplier: "AdMub Sands (Iwo Road)", Aliases: []string{"sand", "sharp sand"}, Default: true},
		{Name: "Plaster Sand (20 tons)", Category: types.CategorySand, Price: 110000, Unit: "truck", Supplier: "AdMub Sands (Iwo Road)", Aliases: []string{"plaster sand", "soft sand"}},
		{Name: "Granite 3/4 inch (30 tons)", Category: types.CategoryGranite, Price: 640000, Unit: "truck", Supplier: "Oyo Concrete Works", Aliases: []string{"granite", "chippings", "3/4 granite"}, Default: true},
		{Name: "9-inch Vibrated Block", Category: types.CategoryBlock, Price: 650, Unit: "piece", Supplier: "Oyo Concrete Works", Aliases: []string{"block", "blocks", "9 inch block", "9-inch block"}, Default: true},
		{Name: "6-inch Vibrated Block", Category: types.CategoryBlock, Price: 500, Unit: "piece", Supplier: "Oyo Concrete Works", Aliases: []string{"6 inch block", "6-inch block"}},
	}
	for _, size := range []int64{8, 10, 12, 16, 20, 25} {
		r := Rate{
			Name:     decimal.NewFromInt(size).String() + "mm Iron Rod (TMT)",
			Category: types.CategorySteel,
			Price:    float64(4500 + size*600),
			Unit:     "length",
			Supplier: "Titanium Steel Depot",
		}
		s := decimal.NewFromInt(size).String()
		r.Aliases = []string{"y" + s, s + "mm rod", s + "mm iron rod", s + "mm"}
		if size == 12 {
			r.Default = true
			r.Aliases = append(r.Aliases, "iron rod", "rod", "rebar", "steel")
		}
		rates = append(rates, r)
	}
	return rates
}

// LoadRates decodes an HCL rate file:
//
//	material "Sharp Sand (20 tons)" {
//	  category = "sand"
//	  price    = 130000
//	  unit     = "truck"
//	  aliases  = ["sand"]
//	}
func LoadRates(path string) ([]Rate, error) {
	var file rateFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "failed to decode rate file %s", path)
	}
	for i, r := range file.Materials {
		if r.Price <= 0 {
			return nil, errors.InvalidInput("price", r.Price).WithContext("material", r.Name)
		}
		if r.Category == "" {
			file.Materials[i].Category = materials.Classify(r.Name)
		}
	}
	return file.Materials, nil
}

// StaticTable answers price lookups from an in-memory catalogue
type StaticTable struct {
	mu    sync.RWMutex
	rates []Rate
	index map[string]int
}

// NewStaticTable builds a table from rates; later entries replace earlier
// ones with the same name.
func NewStaticTable(rates ...[]Rate) *StaticTable {
	t := &StaticTable{index: make(map[string]int)}
	for _, set := range rates {
		for _, r := range set {
			t.put(r)
		}
	}
	return t
}

// NewDefaultStaticTable returns the built-in catalogue, overlaid with the
// HCL file at path when path is not empty
func NewDefaultStaticTable(path string) (*StaticTable, error) {
	if path == "" {
		return NewStaticTable(DefaultRates()), nil
	}
	extra, err := LoadRates(path)
	if err != nil {
		return nil, err
	}
	return NewStaticTable(DefaultRates(), extra), nil
}

func (t *StaticTable) put(r Rate) {
	key := normalize(r.Name)
	if i, ok := t.index[key]; ok {
		t.rates[i] = r
		return
	}
	t.index[key] = len(t.rates)
	t.rates = append(t.rates, r)
}

// Len returns the number of catalogue entries
func (t *StaticTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rates)
}

// Rates returns a copy of the catalogue
func (t *StaticTable) Rates() []Rate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Rate, len(t.rates))
	copy(out, t.rates)
	return out
}

// Resolve implements boq.PriceResolver. Unknown materials return an empty quote.
func (t *StaticTable) Resolve(ctx context.Context, query string, _ types.Location) (boq.Quote, error) {
	if err := ctx.Err(); err != nil {
		return boq.Quote{}, errors.Timeout("static price lookup", err)
	}
	r, ok := t.Lookup(query)
	if !ok {
		return boq.Quote{}, nil
	}
	return boq.Quote{
		BasePrice: decimal.NewFromFloat(r.Price),
		Name:      r.Name,
		Supplier:  r.Supplier,
		Source:    SourceStatic,
	}, nil
}

// Lookup matches query against names and aliases first, then against the
// entries whose words contain every word of the query. Ties go to the
// category default.
func (t *StaticTable) Lookup(query string) (Rate, bool) {
	q := normalize(query)
	if q == "" {
		return Rate{}, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if i, ok := t.index[q]; ok {
		return t.rates[i], true
	}
	for _, r := range t.rates {
		for _, a := range r.Aliases {
			if normalize(a) == q {
				return r, true
			}
		}
	}

	words := tokens(q)
	best := -1
	for i, r := range t.rates {
		if !containsAll(r, words) {
			continue
		}
		if best < 0 || (r.Default && !t.rates[best].Default) {
			best = i
		}
	}
	if best >= 0 {
		return t.rates[best], true
	}
	return Rate{}, false
}

var nonWord = regexp.MustCompile(`[^a-z0-9/.]+`)

func normalize(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

func tokens(s string) []string {
	return strings.Fields(s)
}

func containsAll(r Rate, words []string) bool {
	have := make(map[string]bool)
	for _, w := range tokens(normalize(r.Name)) {
		have[w] = true
	}
	for _, a := range r.Aliases {
		for _, w := range tokens(normalize(a)) {
			have[w] = true
		}
	}
	for _, w := range words {
		if !have[w] {
			return false
		}
	}
	return true
}
