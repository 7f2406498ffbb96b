// Package orchestrator sequences one estimation request through intent
// classification, structural sizing, market pricing, the completion
// service and the BOQ, labor and timeline estimators.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sitemate/core/boq"
	"sitemate/core/intent"
	"sitemate/core/labor"
	"sitemate/core/materials"
	"sitemate/core/structural"
	"sitemate/core/timeline"
	"sitemate/core/types"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// Completer is the text completion service
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 20 * time.Second

// Messages shown in place of a narrative
const (
	MsgTooShort       = "Please provide more details (e.g., 'Budget for a fence' or '2 bedroom flat')."
	MsgNoBOQ          = "Could not generate BOQ, please rephrase."
	MarketUnavailable = "Market Data Unavailable"
)

// DefaultPlanAreaM2 is the plan area assumed for a raft when none is given
const DefaultPlanAreaM2 = 150.0

// Fence projects are costed on a standard plot boundary
const (
	FencePerimeterM = 120.0
	FenceHeightM    = 3.0
)

// FoundationGrade is the concrete grade quoted for foundation pours
const FoundationGrade = types.GradeM20

// MarketItems are the reference materials quoted to the completion service
var MarketItems = []string{"Cement", "Granite", "Sharp Sand", "12mm Iron Rod", "9-inch Vibrated Block"}

// Request is one estimation request with its full site context
type Request struct {
	// Text is the user's request
	Text string `json:"text"`

	// Location is the site
	Location types.Location `json:"location"`

	// Soil is the stored site soil; a keyword in Text may override it
	Soil types.SoilType `json:"soil"`

	// PlanAreaM2 sizes a raft; zero uses DefaultPlanAreaM2
	PlanAreaM2 float64 `json:"plan_area_m2,omitempty"`

	// StartDate anchors the schedule; zero means today
	StartDate time.Time `json:"start_date,omitempty"`
}

// Response is everything produced for one request. BOQ, Labor and Timeline
// are empty when no usable BOQ came back.
type Response struct {
	Text          string                `json:"text"`
	Intent        intent.Intent         `json:"intent"`
	Soil          types.SoilContext     `json:"soil"`
	Foundation    *structural.Selection `json:"foundation,omitempty"`
	MarketContext string                `json:"market_context,omitempty"`
	BOQ           *types.BOQTable       `json:"boq,omitempty"`
	Labor         []types.LaborLineItem `json:"labor,omitempty"`
	Timeline      []types.TimelinePhase `json:"timeline,omitempty"`
	Warnings      []types.Warning       `json:"warnings,omitempty"`
}

// Options configures an Orchestrator
type Options struct {
	Classifier intent.Classifier
	Resolver   boq.PriceResolver
	Completer  Completer
	Labor      *labor.Estimator
	Timeout    time.Duration
	Logger     *zap.Logger

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// Orchestrator holds no per-request state and is safe for concurrent use
type Orchestrator struct {
	classifier intent.Classifier
	resolver   boq.PriceResolver
	completer  Completer
	labor      *labor.Estimator
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		classifier: opts.Classifier,
		resolver:   opts.Resolver,
		completer:  opts.Completer,
		labor:      opts.Labor,
		timeout:    opts.Timeout,
		logger:     logging.OrNop(opts.Logger),
		now:        opts.Now,
	}
	if o.classifier == nil {
		o.classifier = intent.NewKeywordClassifier()
	}
	if o.labor == nil {
		o.labor = labor.NewEstimator(labor.DefaultRates())
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Handle runs one request. A BOQ the completion service did not deliver
// in usable form is reported through Response.Warnings. The error is only
// set when the completion call itself failed; the response is still
// returned with its partial context.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, error) {
	start := o.now()
	log := o.logger.With(logging.Location(req.Location.String()))

	in := o.classifier.Classify(req.Text)
	resp := &Response{Intent: in}
	if in.TooShort {
		resp.Text = MsgTooShort
		return resp, nil
	}

	resp.Soil = ResolveSoil(req.Soil, in)
	if resp.Soil.Overridden {
		log.Info("soil overridden by request", zap.String("soil", string(resp.Soil.DeclaredType)))
	}

	note := ""
	if in.Foundation != types.FoundationUnevaluated || resp.Soil.DeclaredType.RequiresRaft() {
		sel, err := o.selectFoundation(req, in, resp.Soil)
		if err != nil {
			resp.Warnings = append(resp.Warnings, warningFor(err, ""))
		} else {
			resp.Foundation = &sel
			note = EngineNote(sel)
		}
	}
	if in.Fence {
		note = strings.TrimSpace(note + "\n" + FenceNote(FencePerimeterM, FenceHeightM))
	}

	resp.MarketContext = o.marketContext(ctx, req.Location)

	prompt := BuildPrompt(PromptInput{
		Location:      req.Location.String(),
		Soil:          resp.Soil.Label(),
		MarketContext: resp.MarketContext,
		EngineNote:    note,
		Query:         req.Text,
	})

	raw, err := o.complete(ctx, prompt)
	if err != nil {
		log.Warn("completion failed", zap.Error(err), logging.Elapsed(start))
		resp.Text = MsgNoBOQ
		resp.Warnings = append(resp.Warnings, warningFor(err, ""))
		return resp, err
	}
	resp.Text = CleanText(raw)

	quantities, err := ExtractBOQ(raw)
	if err != nil {
		log.Info("no BOQ in completion", zap.Error(err))
		resp.Warnings = append(resp.Warnings, types.Warning{Code: errors.TypeParsing, Message: MsgNoBOQ})
		return resp, nil
	}

	ms := boq.FromProcurement(quantities)
	table, err := boq.Price(ctx, ms, req.Location, o.resolver)
	if err != nil {
		resp.Warnings = append(resp.Warnings, warningFor(err, ""))
		return resp, nil
	}
	resp.BOQ = table
	resp.Warnings = append(resp.Warnings, table.Warnings...)
	resp.Labor = o.labor.Estimate(ms)

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = o.now()
	}
	resp.Timeline = timeline.Schedule(ms, startDate)

	log.Info("estimate complete",
		zap.Int("lines", len(table.Lines)),
		zap.String("total", types.FormatNaira(table.Total())),
		logging.Elapsed(start))
	return resp, nil
}

// ResolveSoil applies a request soil override on top of the site soil.
// The override lives only in the returned context.
func ResolveSoil(site types.SoilType, in intent.Intent) types.SoilContext {
	if in.SoilOverride != "" {
		ctx := structural.SoilFor(in.SoilOverride)
		ctx.Overridden = true
		return ctx
	}
	if !site.IsValid() {
		site = types.SoilFirmSandy
	}
	return structural.SoilFor(site)
}

// EngineNote summarises a foundation selection for the prompt, with the
// cement, sand and granite for its concrete.
func EngineNote(sel structural.Selection) string {
	d := sel.Design
	var note string
	switch d.Type {
	case types.FoundationPad:
		note = fmt.Sprintf("Engine: Pad Size %dx%d mm, %dmm deep, %s", d.Plan.WidthMm, d.Plan.LengthMm, d.DepthMm, d.ReinforcementSpec)
	case types.FoundationStrip:
		note = fmt.Sprintf("Engine: Strip Width %dmm, %dmm deep, %s", d.Plan.WidthMm, d.DepthMm, d.ReinforcementSpec)
	default:
		note = fmt.Sprintf("Engine: Raft Foundation over %.0f m2, %dmm thick, %.2f m3 concrete, %s",
			d.Plan.AreaM2, d.DepthMm, d.ConcreteVolumeM3, d.ReinforcementSpec)
		if sel.Overridden {
			note += ". " + sel.Reason + "; do NOT recommend strip or pad footings"
		}
	}
	if t := materials.ConcreteTakeoff(d.ConcreteVolumeM3, FoundationGrade); t.CementBags > 0 {
		note += fmt.Sprintf("\nEngine: %s concrete needs %.0f bags cement, %.1f t sand, %.1f t granite",
			FoundationGrade, t.CementBags, t.SandTonnes, t.GraniteTonnes)
		if d.Type == types.FoundationStrip {
			note += " per metre run"
		}
	}
	return note
}

// FenceNote gives the block and mortar count for a boundary wall
func FenceNote(perimeterM, heightM float64) string {
	blocks := materials.WallBlocks(perimeterM, heightM)
	return fmt.Sprintf("Engine: Fence %.0fm x %.0fm needs %d blocks and %d bags of mortar cement",
		perimeterM, heightM, blocks, materials.MortarBags(blocks))
}

func (o *Orchestrator) selectFoundation(req Request, in intent.Intent, soil types.SoilContext) (structural.Selection, error) {
	area := req.PlanAreaM2
	if area <= 0 {
		area = DefaultPlanAreaM2
	}
	return structural.SelectFoundation(structural.SelectionRequest{
		Requested:  in.Foundation,
		Soil:       soil,
		Building:   in.Building,
		PlanAreaM2: area,
	})
}

// marketContext quotes the reference materials at the site price
func (o *Orchestrator) marketContext(ctx context.Context, location types.Location) string {
	if o.resolver == nil {
		return MarketUnavailable
	}
	ms := make(types.Materials, 0, len(MarketItems))
	for _, name := range MarketItems {
		ms = append(ms, types.MaterialQuantity{Name: name, ProcurementQty: 1})
	}
	table, err := boq.Price(ctx, ms, location, o.resolver)
	if err != nil {
		return MarketUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**LIVE MARKET DATA FOR %s:**\n", strings.ToUpper(location.String()))
	found := false
	for _, l := range table.Lines {
		if l.Unresolved {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", l.Description, types.FormatNaira(l.UnitPrice))
		found = true
	}
	if !found {
		return MarketUnavailable
	}
	return b.String()
}

func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	if o.completer == nil {
		return "", errors.Config("no completion service configured")
	}
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := o.completer.Complete(cctx, SystemPrompt, prompt)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || cctx.Err() == context.DeadlineExceeded {
			return "", errors.Timeout("completion", err)
		}
		return "", err
	}
	return out, nil
}

func warningFor(err error, material string) types.Warning {
	code := errors.TypeOf(err)
	if code == "" {
		code = errors.TypeInternal
	}
	return types.Warning{Code: code, Material: material, Message: err.Error()}
}
