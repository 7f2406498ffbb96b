package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sitemate/adapters/export/excel"
	"sitemate/adapters/export/pdf"
	"sitemate/adapters/pricing"
	"sitemate/adapters/storage"
	"sitemate/core/boq"
	"sitemate/core/feasibility"
	"sitemate/core/labor"
	"sitemate/core/orchestrator"
	"sitemate/core/procurement"
	"sitemate/core/scenario"
	"sitemate/core/structural"
	"sitemate/core/timeline"
	"sitemate/core/types"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// Handler implementations

func (a *Adapter) handleHealth(c *gin.Context) {
	body := gin.H{"status": "healthy", "version": Version}
	if m, ok := a.resolver.(interface{ Stats() pricing.Stats }); ok {
		body["pricing"] = m.Stats()
	}
	c.JSON(http.StatusOK, body)
}

func (a *Adapter) handleMetrics(c *gin.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	avgLatency := float64(0)
	if a.requestCount > 0 {
		avgLatency = float64(a.totalLatencyMs) / float64(a.requestCount)
	}

	metrics := fmt.Sprintf(`# HELP sitemate_requests_total Total requests
# TYPE sitemate_requests_total counter
sitemate_requests_total %d

# HELP sitemate_errors_total Total server errors
# TYPE sitemate_errors_total counter
sitemate_errors_total %d

# HELP sitemate_latency_avg_ms Average latency
# TYPE sitemate_latency_avg_ms gauge
sitemate_latency_avg_ms %.2f
`, a.requestCount, a.errorCount, avgLatency)

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(metrics))
}

// EstimateRequest is the body of POST /api/v1/estimate
type EstimateRequest struct {
	// Text is the free-text request
	Text string `json:"text" binding:"required"`

	// Location defaults to the configured site
	Location types.Location `json:"location,omitempty"`

	// Soil defaults to the configured site soil
	Soil string `json:"soil,omitempty"`

	// PlanAreaM2 sizes a raft
	PlanAreaM2 float64 `json:"plan_area_m2,omitempty"`

	// StartDate anchors the timeline (YYYY-MM-DD)
	StartDate string `json:"start_date,omitempty"`

	// Scenario is applied to the priced BOQ when set
	Scenario *types.ScenarioAdjustment `json:"scenario,omitempty"`

	// Project saves the result under this name when a BOQ was produced
	Project string `json:"project,omitempty"`
}

// EstimateResponse is the body returned by POST /api/v1/estimate
type EstimateResponse struct {
	*orchestrator.Response
	Total      string            `json:"total,omitempty"`
	LaborTotal string            `json:"labor_total,omitempty"`
	Scenario   *ScenarioResponse `json:"scenario,omitempty"`
	Saved      *storage.Summary  `json:"saved,omitempty"`
	RequestID  string            `json:"request_id"`
}

func (a *Adapter) handleEstimate(c *gin.Context) {
	if a.estimator == nil {
		a.writeError(c, errors.Config("estimation is not configured"))
		return
	}

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	soil, err := a.soilOrDefault(req.Soil)
	if err != nil {
		a.writeError(c, err)
		return
	}
	var start time.Time
	if req.StartDate != "" {
		start, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			a.writeError(c, errors.InvalidInput("start_date", req.StartDate))
			return
		}
	}
	if req.Scenario != nil {
		if err := scenario.Validate(*req.Scenario); err != nil {
			a.writeError(c, err)
			return
		}
	}

	location := a.locationOrDefault(req.Location)
	resp, err := a.estimator.Handle(c.Request.Context(), orchestrator.Request{
		Text:       req.Text,
		Location:   location,
		Soil:       soil,
		PlanAreaM2: req.PlanAreaM2,
		StartDate:  start,
	})
	if err != nil {
		a.writeErrorWithPartial(c, err, resp)
		return
	}

	out := EstimateResponse{Response: resp, RequestID: c.GetString(requestIDKey)}
	if resp.BOQ != nil {
		out.Total = types.FormatNaira(resp.BOQ.Total())
		out.LaborTotal = types.FormatNaira(types.LaborTotal(resp.Labor))
		if req.Scenario != nil && !req.Scenario.IsNeutral() {
			adjusted, err := scenario.Apply(resp.BOQ, *req.Scenario)
			if err != nil {
				a.writeError(c, err)
				return
			}
			out.Scenario = scenarioResponse(resp.BOQ, adjusted)
		}
		if req.Project != "" {
			p := &storage.Project{
				Name:      req.Project,
				Location:  location,
				Soil:      resp.Soil.DeclaredType,
				BOQ:       *resp.BOQ,
				Narrative: resp.Text,
			}
			if err := a.store.Save(c.Request.Context(), p); err != nil {
				a.writeErrorWithPartial(c, err, out)
				return
			}
			a.logger.Info("project saved", logging.Project(p.Name), logging.Location(string(location)))
			out.Saved = &storage.Summary{Name: p.Name, Location: p.Location, Timestamp: p.UpdatedAt, Total: out.Total}
		}
	}
	c.JSON(http.StatusOK, out)
}

func (a *Adapter) handleFeasibility(c *gin.Context) {
	var req feasibility.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	req.Location = a.locationOrDefault(req.Location)

	result, err := feasibility.Estimate(req)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type stripRequest struct {
	LoadKnPerM float64 `json:"load_kn_per_m" binding:"required"`
	SbcKPa     float64 `json:"sbc_kpa"`
	Soil       string  `json:"soil"`
}

func (a *Adapter) handleStrip(c *gin.Context) {
	var req stripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	sbc, err := a.bearingCapacity(req.SbcKPa, req.Soil, types.FoundationStrip)
	if err != nil {
		a.writeError(c, err)
		return
	}
	design, err := structural.DesignStrip(req.LoadKnPerM, sbc)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"design": design, "summary": design.Summary()})
}

type padRequest struct {
	LoadKn float64 `json:"load_kn" binding:"required"`
	SbcKPa float64 `json:"sbc_kpa"`
	Soil   string  `json:"soil"`
}

func (a *Adapter) handlePad(c *gin.Context) {
	var req padRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	sbc, err := a.bearingCapacity(req.SbcKPa, req.Soil, types.FoundationPad)
	if err != nil {
		a.writeError(c, err)
		return
	}
	design, err := structural.DesignPad(req.LoadKn, sbc)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"design": design, "summary": design.Summary()})
}

type selectRequest struct {
	Requested          types.FoundationType `json:"requested"`
	Soil               string               `json:"soil"`
	BearingCapacityKPa float64              `json:"bearing_capacity_kpa"`
	Building           types.BuildingClass  `json:"building"`
	PlanAreaM2         float64              `json:"plan_area_m2"`
	LoadKn             float64              `json:"load_kn"`
}

func (a *Adapter) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	soil, err := a.soilOrDefault(req.Soil)
	if err != nil {
		a.writeError(c, err)
		return
	}
	ctx := structural.SoilFor(soil)
	if req.BearingCapacityKPa > 0 {
		ctx.BearingCapacityKPa = req.BearingCapacityKPa
	}
	if req.PlanAreaM2 == 0 {
		req.PlanAreaM2 = orchestrator.DefaultPlanAreaM2
	}
	if req.Building == "" {
		req.Building = types.BuildingBungalow
	}

	sel, err := structural.SelectFoundation(structural.SelectionRequest{
		Requested:  req.Requested,
		Soil:       ctx,
		Building:   req.Building,
		PlanAreaM2: req.PlanAreaM2,
		LoadKn:     req.LoadKn,
	})
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": sel, "soil": ctx, "engine_note": orchestrator.EngineNote(sel)})
}

type materialsRequest struct {
	Materials map[string]float64 `json:"materials" binding:"required"`
	Location  types.Location     `json:"location"`
	StartDate string             `json:"start_date,omitempty"`
}

func (a *Adapter) handleConvert(c *gin.Context) {
	var req materialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, boq.Convert(req.Materials, a.locationOrDefault(req.Location)))
}

// PriceResponse is the body returned by POST /api/v1/boq/price
type PriceResponse struct {
	BOQ        *types.BOQTable       `json:"boq"`
	Total      string                `json:"total"`
	Labor      []types.LaborLineItem `json:"labor"`
	LaborTotal string                `json:"labor_total"`
	Timeline   []types.TimelinePhase `json:"timeline"`
	TotalDays  int                   `json:"total_days"`
}

func (a *Adapter) handlePrice(c *gin.Context) {
	var req materialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	start := time.Now()
	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			a.writeError(c, errors.InvalidInput("start_date", req.StartDate))
			return
		}
		start = t
	}
	location := a.locationOrDefault(req.Location)

	takeoff := boq.Convert(req.Materials, location)
	table, err := boq.Price(c.Request.Context(), takeoff.Materials, location, a.resolver)
	if err != nil {
		a.writeError(c, err)
		return
	}
	table.Warnings = mergeWarnings(takeoff.Warnings, table.Warnings)

	items := labor.Estimate(takeoff.Materials)
	phases := timeline.Schedule(takeoff.Materials, start)
	c.JSON(http.StatusOK, PriceResponse{
		BOQ:        table,
		Total:      types.FormatNaira(table.Total()),
		Labor:      items,
		LaborTotal: types.FormatNaira(types.LaborTotal(items)),
		Timeline:   phases,
		TotalDays:  timeline.TotalDays(phases),
	})
}

type scenarioRequest struct {
	BOQ        *types.BOQTable          `json:"boq" binding:"required"`
	Adjustment types.ScenarioAdjustment `json:"adjustment"`
}

// ScenarioResponse compares a base and an adjusted BOQ
type ScenarioResponse struct {
	BOQ           *types.BOQTable `json:"boq"`
	BaseTotal     decimal.Decimal `json:"base_total"`
	AdjustedTotal decimal.Decimal `json:"adjusted_total"`
	Delta         decimal.Decimal `json:"delta"`
}

func scenarioResponse(base, adjusted *types.BOQTable) *ScenarioResponse {
	return &ScenarioResponse{
		BOQ:           adjusted,
		BaseTotal:     base.Total(),
		AdjustedTotal: adjusted.Total(),
		Delta:         scenario.Delta(base, adjusted),
	}
}

func (a *Adapter) handleScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	adjusted, err := scenario.Apply(req.BOQ, req.Adjustment)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarioResponse(req.BOQ, adjusted))
}

func (a *Adapter) handleWeather(c *gin.Context) {
	if a.weather == nil {
		a.writeError(c, errors.Config("weather is not configured"))
		return
	}
	location := a.locationOrDefault(types.Location(c.Query("location")))
	advisory, err := a.weather.Current(c.Request.Context(), location)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location, "advisory": advisory})
}

func (a *Adapter) handleListProjects(c *gin.Context) {
	list, err := a.store.List(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}
	if list == nil {
		list = []storage.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (a *Adapter) handleSaveProject(c *gin.Context) {
	var p storage.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		a.badRequest(c, err)
		return
	}
	p.Location = a.locationOrDefault(p.Location)
	if p.BOQ.Location == "" {
		p.BOQ.Location = p.Location
	}
	if p.BOQ.Currency == "" {
		p.BOQ.Currency = types.NGN
	}
	if err := a.store.Save(c.Request.Context(), &p); err != nil {
		a.writeError(c, err)
		return
	}
	a.logger.Info("project saved", logging.Project(p.Name), zap.Int("lines", len(p.BOQ.Lines)))
	c.JSON(http.StatusCreated, p)
}

func (a *Adapter) handleGetProject(c *gin.Context) {
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *Adapter) handleDeleteProject(c *gin.Context) {
	if err := a.store.Delete(c.Request.Context(), c.Param("name")); err != nil {
		a.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *Adapter) handleExportWorkbook(c *gin.Context) {
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	data, err := excel.BOQWorkbook(p)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+exportName(p.Name, "xlsx")+"\"")
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (a *Adapter) handleExportReport(c *gin.Context) {
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	data, err := pdf.Report(p, "")
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+exportName(p.Name, "pdf")+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

// OrderResponse is the body returned by GET /api/v1/projects/:name/order
type OrderResponse struct {
	Message  string `json:"message"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (a *Adapter) handleOrder(c *gin.Context) {
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	supplier := c.DefaultQuery("supplier", "Supplier")
	msg := procurement.OrderMessage(p.Location, &p.BOQ, supplier)

	out := OrderResponse{Message: msg}
	if msg != procurement.NoItems {
		out.WhatsApp, _ = procurement.WhatsAppLink(c.Query("phone"), msg)
		out.Email, _ = procurement.EmailLink(c.Query("email"), p.Location, msg)
	}
	c.JSON(http.StatusOK, out)
}

func (a *Adapter) handleAudit(c *gin.Context) {
	auditor, ok := a.estimator.(Auditor)
	if !ok {
		a.writeError(c, errors.Config("audit is not configured"))
		return
	}
	p, err := a.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	review, err := auditor.Audit(c.Request.Context(), &p.BOQ)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p.Name, "review": review})
}

// Helpers

func (a *Adapter) locationOrDefault(l types.Location) types.Location {
	if strings.TrimSpace(string(l)) == "" {
		return a.config.DefaultLocation
	}
	return l
}

func (a *Adapter) soilOrDefault(raw string) (types.SoilType, error) {
	if strings.TrimSpace(raw) == "" {
		return a.config.DefaultSoil, nil
	}
	soil, ok := types.ParseSoil(raw)
	if !ok {
		return "", errors.InvalidInput("soil", raw)
	}
	return soil, nil
}

// bearingCapacity resolves the SBC for a strip or pad. Clay and swampy
// ground are refused even when an explicit SBC is given.
func (a *Adapter) bearingCapacity(sbc float64, soil string, t types.FoundationType) (float64, error) {
	s, err := a.soilOrDefault(soil)
	if err != nil {
		return 0, err
	}
	if err := structural.CheckSoil(s, t); err != nil {
		return 0, err
	}
	if sbc > 0 {
		return sbc, nil
	}
	return structural.DefaultBearingCapacity(s), nil
}

func mergeWarnings(groups ...[]types.Warning) []types.Warning {
	seen := make(map[string]bool)
	var out []types.Warning
	for _, g := range groups {
		for _, w := range g {
			key := string(w.Code) + "|" + w.Material
			if w.Material == "" {
				key += "|" + w.Message
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, w)
		}
	}
	return out
}

func exportName(name, ext string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return "SiteMate_" + clean + "." + ext
}
