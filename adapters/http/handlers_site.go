package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitemate/adapters/export/pdf"
	"sitemate/adapters/storage"
	"sitemate/core/site"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// Site execution and marketplace handlers

// siteProject loads the project named in the path and checks a ledger is
// configured. It writes the error response itself and reports false.
func (a *Adapter) siteProject(c *gin.Context) (*storage.Project, bool) {
	if a.ledger == nil {
		a.writeError(c, errors.Config("site ledger not available for this storage backend"))
		return nil, false
	}
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return nil, false
	}
	return p, true
}

type expenseRequest struct {
	Item     string          `json:"item" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`

	// Date is YYYY-MM-DD; empty means today
	Date string `json:"date"`
}

func (a *Adapter) handleAddExpense(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	e := site.Expense{
		Project:  p.Name,
		Item:     req.Item,
		Amount:   req.Amount,
		Category: site.ExpenseCategory(req.Category),
		Note:     req.Note,
	}
	if req.Date != "" {
		d, err := time.Parse(site.DateLayout, req.Date)
		if err != nil {
			a.writeError(c, errors.InvalidInput("date", req.Date))
			return
		}
		e.Date = d
	}
	if err := a.ledger.AddExpense(c.Request.Context(), &e); err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("expense logged", logging.Project(p.Name), zap.String("amount", e.Amount.String()))
	c.JSON(http.StatusCreated, e)
}

// ExpensesResponse is the ledger with its budget check
type ExpensesResponse struct {
	Project  string         `json:"project"`
	Expenses []site.Expense `json:"expenses"`
	Health   site.Health    `json:"health"`
}

func (a *Adapter) expenses(c *gin.Context) (*storage.Project, *ExpensesResponse, bool) {
	p, ok := a.siteProject(c)
	if !ok {
		return nil, nil, false
	}
	es, err := a.ledger.Expenses(c.Request.Context(), p.Name)
	if err != nil {
		a.writeError(c, err)
		return nil, nil, false
	}
	return p, &ExpensesResponse{
		Project:  p.Name,
		Expenses: es,
		Health:   site.FinancialHealth(p.BOQ.Total(), es),
	}, true
}

func (a *Adapter) handleListExpenses(c *gin.Context) {
	if _, resp, ok := a.expenses(c); ok {
		c.JSON(http.StatusOK, resp)
	}
}

func (a *Adapter) handleExpenseReport(c *gin.Context) {
	p, resp, ok := a.expenses(c)
	if !ok {
		return
	}
	data, err := pdf.ExpenseLog(p.Name, resp.Health, resp.Expenses)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+exportName(p.Name+"_Expenses", "pdf")+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

type stockMoveRequest struct {
	Item      string  `json:"item" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Unit      string  `json:"unit"`
	Operation string  `json:"operation" binding:"required"`
}

func (a *Adapter) handleMoveStock(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	var req stockMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	op, ok := site.ParseStockOperation(req.Operation)
	if !ok {
		a.writeError(c, errors.InvalidInput("operation", req.Operation))
		return
	}
	item, err := a.ledger.MoveStock(c.Request.Context(), p.Name, site.StockRequest{
		Item:      req.Item,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Operation: op,
	})
	if err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("stock updated", logging.Project(p.Name), logging.Material(item.Item),
		zap.String("operation", op.Label()), zap.Float64("balance", item.Quantity))
	c.JSON(http.StatusOK, item)
}

// InventoryResponse is the stock position of one site
type InventoryResponse struct {
	Project string               `json:"project"`
	Stock   []site.StockItem     `json:"stock"`
	Log     []site.StockMovement `json:"log"`
}

func (a *Adapter) inventory(c *gin.Context) (*InventoryResponse, bool) {
	p, ok := a.siteProject(c)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	stock, err := a.ledger.Stock(ctx, p.Name)
	if err != nil {
		a.writeError(c, err)
		return nil, false
	}
	log, err := a.ledger.StockLog(ctx, p.Name)
	if err != nil {
		a.writeError(c, err)
		return nil, false
	}
	return &InventoryResponse{Project: p.Name, Stock: stock, Log: log}, true
}

func (a *Adapter) handleInventory(c *gin.Context) {
	if resp, ok := a.inventory(c); ok {
		c.JSON(http.StatusOK, resp)
	}
}

func (a *Adapter) handleStockReport(c *gin.Context) {
	resp, ok := a.inventory(c)
	if !ok {
		return
	}
	data, err := pdf.StockReport(resp.Project, resp.Stock, resp.Log)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+exportName(resp.Project+"_Inventory", "pdf")+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

type diaryRequest struct {
	Date     string         `json:"date"`
	Weather  string         `json:"weather"`
	Labor    map[string]int `json:"labor"`
	WorkDone string         `json:"work_done" binding:"required"`
	Issues   string         `json:"issues"`
}

func (a *Adapter) handleAddDiary(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	var req diaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	entry := site.DiaryEntry{
		Project:  p.Name,
		Date:     req.Date,
		Weather:  req.Weather,
		Labor:    req.Labor,
		WorkDone: req.WorkDone,
		Issues:   req.Issues,
	}
	if err := a.ledger.AddDiary(c.Request.Context(), &entry); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (a *Adapter) handleDiary(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	entries, err := a.ledger.Diary(c.Request.Context(), p.Name)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p.Name, "entries": entries})
}

func (a *Adapter) handleRegisterSupplier(c *gin.Context) {
	if a.ledger == nil {
		a.writeError(c, errors.Config("site ledger not available for this storage backend"))
		return
	}
	var s site.Supplier
	if err := c.ShouldBindJSON(&s); err != nil {
		a.badRequest(c, err)
		return
	}
	s.ID, s.Rating = "", 0
	if err := a.ledger.RegisterSupplier(c.Request.Context(), &s); err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("supplier registered", zap.String("company", s.Company), logging.Location(s.Location.String()))
	c.JSON(http.StatusCreated, s)
}

func (a *Adapter) handleSuppliers(c *gin.Context) {
	if a.ledger == nil {
		a.writeError(c, errors.Config("site ledger not available for this storage backend"))
		return
	}
	ss, err := a.ledger.Suppliers(c.Request.Context(), c.Query("q"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": ss, "count": len(ss)})
}

func (a *Adapter) handleSupplierBids(c *gin.Context) {
	if a.ledger == nil {
		a.writeError(c, errors.Config("site ledger not available for this storage backend"))
		return
	}
	bids, err := a.ledger.SupplierBids(c.Request.Context(), c.Param("company"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": c.Param("company"), "bids": bids})
}

func (a *Adapter) handleTenders(c *gin.Context) {
	ts, err := storage.Tenders(c.Request.Context(), a.store, c.Query("location"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenders": ts, "count": len(ts)})
}

type bidRequest struct {
	Supplier string          `json:"supplier" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Phone    string          `json:"phone"`
}

func (a *Adapter) handleSubmitBid(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	b := site.Bid{Project: p.Name, Supplier: req.Supplier, Amount: req.Amount, Phone: req.Phone}
	if err := storage.SubmitRegisteredBid(c.Request.Context(), a.ledger, &b); err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("bid submitted", logging.Project(p.Name), zap.String("supplier", b.Supplier))
	c.JSON(http.StatusCreated, b)
}

func (a *Adapter) handleBids(c *gin.Context) {
	p, ok := a.siteProject(c)
	if !ok {
		return
	}
	bids, err := a.ledger.Bids(c.Request.Context(), p.Name)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p.Name, "bids": bids})
}

type decideRequest struct {
	Status string `json:"status" binding:"required"`
}

func (a *Adapter) handleDecideBid(c *gin.Context) {
	if a.ledger == nil {
		a.writeError(c, errors.Config("site ledger not available for this storage backend"))
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	status, ok := site.ParseBidStatus(req.Status)
	if !ok {
		a.writeError(c, errors.InvalidInput("status", req.Status))
		return
	}
	b, err := a.ledger.DecideBid(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("bid decided", logging.Project(b.Project), zap.String("bid", b.ID), zap.String("status", string(b.Status)))
	c.JSON(http.StatusOK, b)
}
