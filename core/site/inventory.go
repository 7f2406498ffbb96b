package site

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sitemate/core/materials"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

// StockOperation is the direction of a stock movement
type StockOperation string

const (
	// StockIn records a delivery to site
	StockIn StockOperation = "in"
	// StockOut records material drawn for use
	StockOut StockOperation = "out"
)

// ParseStockOperation accepts the operation names used on site
func ParseStockOperation(raw string) (StockOperation, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in", "add", "delivery", "receive":
		return StockIn, true
	case "out", "remove", "usage", "consume":
		return StockOut, true
	default:
		return "", false
	}
}

// Label is the ledger wording of the operation
func (op StockOperation) Label() string {
	if op == StockOut {
		return "Stock OUT"
	}
	return "Stock IN"
}

// StockItem is the balance of one material on one site
type StockItem struct {
	Project   string    `json:"project"`
	Item      string    `json:"item"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockMovement is one entry of the stock log. Change is negative for
// material drawn out.
type StockMovement struct {
	Project   string         `json:"project"`
	Item      string         `json:"item"`
	Change    float64        `json:"change"`
	Unit      string         `json:"unit"`
	Operation StockOperation `json:"operation"`
	At        time.Time      `json:"at"`
}

// StockRequest asks for one movement
type StockRequest struct {
	Item      string         `json:"item"`
	Quantity  float64        `json:"quantity"`
	Unit      string         `json:"unit,omitempty"`
	Operation StockOperation `json:"operation"`
}

// DefaultStockUnit names the unit a material is counted in on site
func DefaultStockUnit(item string) string {
	switch c := materials.Classify(item); {
	case c == types.CategoryCement:
		return "bags"
	case c == types.CategoryBlock:
		return "pcs"
	case c.IsConcrete():
		return "tonnes"
	case c == types.CategorySteel:
		return "lengths"
	default:
		return "units"
	}
}

// ApplyStock computes the balance and log entry for one movement. current
// is nil when the item has never been stocked on this site. Stock never
// goes below zero.
func ApplyStock(project string, current *StockItem, req StockRequest, now time.Time) (StockItem, StockMovement, error) {
	item := strings.TrimSpace(req.Item)
	if item == "" {
		return StockItem{}, StockMovement{}, errors.InvalidInput("item", "empty")
	}
	if req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		return StockItem{}, StockMovement{}, errors.InvalidInput("quantity", req.Quantity)
	}
	if req.Operation != StockIn && req.Operation != StockOut {
		return StockItem{}, StockMovement{}, errors.InvalidInput("operation", req.Operation)
	}

	next := StockItem{Project: project, Item: item, Unit: strings.TrimSpace(req.Unit)}
	if current != nil {
		next.Quantity = current.Quantity
		next.Unit = current.Unit
	}
	if next.Unit == "" {
		next.Unit = DefaultStockUnit(item)
	}

	change := req.Quantity
	if req.Operation == StockOut {
		if current == nil {
			return StockItem{}, StockMovement{}, errors.NotFound("stock item", item)
		}
		if req.Quantity > current.Quantity {
			return StockItem{}, StockMovement{}, errors.Conflict(fmt.Sprintf(
				"insufficient stock of %s: %g %s on hand", item, current.Quantity, current.Unit))
		}
		change = -req.Quantity
	}

	next.Quantity = round3(next.Quantity + change)
	next.UpdatedAt = now
	return next, StockMovement{
		Project:   project,
		Item:      item,
		Change:    change,
		Unit:      next.Unit,
		Operation: req.Operation,
		At:        now,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
