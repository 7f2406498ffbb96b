package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/boq"
	"sitemate/core/intent"
	"sitemate/core/structural"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

type fakeCompleter struct {
	reply  string
	err    error
	delay  time.Duration
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.prompt = prompt
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

type priceTable map[string]int64

func (p priceTable) Resolve(_ context.Context, query string, _ types.Location) (boq.Quote, error) {
	if v, ok := p[query]; ok {
		return boq.Quote{BasePrice: decimal.NewFromInt(v), Name: query}, nil
	}
	return boq.Quote{}, nil
}

var prices = priceTable{
	"Cement":                10000,
	"Sharp Sand":            130000,
	"Granite":               640000,
	"12mm Iron Rod":         11700,
	"9-inch Vibrated Block": 650,
}

const goodReply = `## Structural Analysis Report
The site is safe for a strip foundation.
### JSON
|||
{
  "Cement": 100,
  "Sharp Sand": 2,
  "Granite": 1,
  "12mm Iron Rod": 50,
  "9-inch Vibrated Block": 3000,
  "Roofing Nails": 3
}
|||`

var fixedStart = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func newTestOrchestrator(c Completer) *Orchestrator {
	return New(Options{
		Resolver:  prices,
		Completer: c,
		Timeout:   time.Second,
		Now:       func() time.Time { return fixedStart },
	})
}

func TestHandleFullPipeline(t *testing.T) {
	completer := &fakeCompleter{reply: goodReply}
	o := newTestOrchestrator(completer)

	resp, err := o.Handle(context.Background(), Request{
		Text:     "Budget for a fence around my plot",
		Location: types.LocationIbadan,
		Soil:     types.SoilFirmSandy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "## Structural Analysis Report\nThe site is safe for a strip foundation." {
		t.Errorf("unexpected narrative %q", resp.Text)
	}
	if resp.Foundation == nil || resp.Foundation.Design.Type != types.FoundationStrip {
		t.Fatalf("expected a strip design for a fence, got %+v", resp.Foundation)
	}
	if !strings.Contains(completer.prompt, "Engine: Strip Width 675mm") {
		t.Error("prompt should carry the engine result")
	}
	if !strings.Contains(completer.prompt, "bags cement") || !strings.Contains(completer.prompt, "per metre run") {
		t.Error("prompt should carry the strip concrete take-off")
	}
	if !strings.Contains(completer.prompt, "Engine: Fence 120m x 3m needs 3600 blocks and 72 bags of mortar cement") {
		t.Error("prompt should carry the fence block count")
	}
	if !strings.Contains(completer.prompt, "- Cement: ₦10,000") {
		t.Error("prompt should carry market prices")
	}
	if resp.BOQ == nil || len(resp.BOQ.Lines) != 6 {
		t.Fatalf("expected 6 BOQ lines, got %+v", resp.BOQ)
	}
	// 1,000,000 + 260,000 + 640,000 + 585,000 + 1,950,000
	if !resp.BOQ.Total().Equal(decimal.NewFromInt(4435000)) {
		t.Errorf("total = %s, want 4435000", resp.BOQ.Total())
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Material != "Roofing Nails" {
		t.Errorf("expected one unresolved warning, got %+v", resp.Warnings)
	}
	if len(resp.Labor) == 0 {
		t.Error("expected labor lines")
	}
	if len(resp.Timeline) != 4 || !resp.Timeline[0].StartDate.Equal(fixedStart) {
		t.Errorf("expected a 4 phase schedule starting today, got %+v", resp.Timeline)
	}
}

func TestHandleTooShort(t *testing.T) {
	completer := &fakeCompleter{reply: goodReply}
	resp, err := newTestOrchestrator(completer).Handle(context.Background(), Request{Text: "fence"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != MsgTooShort || resp.BOQ != nil {
		t.Errorf("expected the too-short guard, got %+v", resp)
	}
	if completer.prompt != "" {
		t.Error("completion must not be called for a too-short request")
	}
}

func TestHandleSwampOverrideForcesRaft(t *testing.T) {
	completer := &fakeCompleter{reply: goodReply}
	resp, err := newTestOrchestrator(completer).Handle(context.Background(), Request{
		Text:     "design a pad foundation, the site is swampy",
		Location: types.LocationLekki,
		Soil:     types.SoilFirmSandy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Soil.Overridden || resp.Soil.DeclaredType != types.SoilSwampy {
		t.Errorf("expected swampy override, got %+v", resp.Soil)
	}
	if resp.Foundation == nil || resp.Foundation.Design.Type != types.FoundationRaft || !resp.Foundation.Overridden {
		t.Fatalf("expected an overriding raft, got %+v", resp.Foundation)
	}
	if !strings.Contains(completer.prompt, "Swampy (User Override)") {
		t.Error("prompt should show the overridden soil")
	}
}

func TestHandleParseErrorKeepsNoBOQ(t *testing.T) {
	completer := &fakeCompleter{reply: "I am not sure what you mean."}
	resp, err := newTestOrchestrator(completer).Handle(context.Background(), Request{
		Text:     "two bedroom flat",
		Location: types.LocationAbuja,
	})
	if err != nil {
		t.Fatalf("parse failures are not errors, got %v", err)
	}
	if resp.BOQ != nil || resp.Labor != nil || resp.Timeline != nil {
		t.Error("no BOQ state may be kept after a parse failure")
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != errors.TypeParsing {
		t.Errorf("expected a parse warning, got %+v", resp.Warnings)
	}
}

func TestHandleTimeout(t *testing.T) {
	completer := &fakeCompleter{reply: goodReply, delay: time.Second}
	o := New(Options{Resolver: prices, Completer: completer, Timeout: 20 * time.Millisecond})

	resp, err := o.Handle(context.Background(), Request{Text: "two bedroom flat", Location: types.LocationIbadan})
	if !errors.IsType(err, errors.TypeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if resp == nil || resp.BOQ != nil || resp.Text != MsgNoBOQ {
		t.Errorf("timed out request must keep no BOQ, got %+v", resp)
	}
}

func TestResolveSoil(t *testing.T) {
	ctx := ResolveSoil(types.SoilClay, intent.Intent{})
	if ctx.DeclaredType != types.SoilClay || ctx.Overridden || ctx.BearingCapacityKPa != 75 {
		t.Errorf("unexpected site soil context %+v", ctx)
	}
	ctx = ResolveSoil("", intent.Intent{})
	if ctx.DeclaredType != types.SoilFirmSandy {
		t.Errorf("unknown site soil should default to firm, got %s", ctx.DeclaredType)
	}
}

func TestAudit(t *testing.T) {
	completer := &fakeCompleter{reply: "VERIFIED"}
	o := newTestOrchestrator(completer)
	table := &types.BOQTable{
		Location: types.LocationIbadan,
		Lines: []types.PricedLine{{
			Item: "Cement", Quantity: 10, Unit: types.ProcureBag,
			UnitPrice: decimal.NewFromInt(10000), Total: decimal.NewFromInt(100000),
		}},
	}
	out, err := o.Audit(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "VERIFIED" {
		t.Errorf("unexpected audit %q", out)
	}
	if !strings.Contains(completer.prompt, "₦100,000") {
		t.Error("audit prompt should include the BOQ summary")
	}
	if _, err := o.Audit(context.Background(), nil); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error for an empty BOQ, got %v", err)
	}
}

func TestHandleWithoutResolver(t *testing.T) {
	o := New(Options{
		Completer: &fakeCompleter{reply: goodReply},
		Timeout:   time.Second,
		Now:       func() time.Time { return fixedStart },
	})

	resp, err := o.Handle(context.Background(), Request{
		Text:     "Budget for a fence around my plot",
		Location: types.LocationIbadan,
		Soil:     types.SoilFirmSandy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MarketContext != MarketUnavailable {
		t.Errorf("unexpected market context %q", resp.MarketContext)
	}
	if resp.BOQ == nil || len(resp.BOQ.Lines) != 6 {
		t.Fatalf("expected 6 BOQ lines, got %+v", resp.BOQ)
	}
	if !resp.BOQ.Total().IsZero() {
		t.Errorf("expected zero total, got %s", resp.BOQ.Total())
	}
	if len(resp.Warnings) != 6 {
		t.Errorf("expected every line flagged, got %+v", resp.Warnings)
	}
}

func TestEngineNoteConcreteTakeoff(t *testing.T) {
	sel := structural.Selection{Design: types.FoundationDesign{
		Type:              types.FoundationRaft,
		Plan:              types.PlanDimensions{AreaM2: 100},
		DepthMm:           250,
		ReinforcementSpec: "Y12 @ 150mm c/c",
		ConcreteVolumeM3:  25,
	}}
	note := EngineNote(sel)
	if !strings.Contains(note, "M20 concrete needs 200 bags cement") {
		t.Errorf("expected 200 bags for 25 m3 of M20, got %q", note)
	}
	if strings.Contains(note, "per metre run") {
		t.Errorf("raft volume is a total, got %q", note)
	}

	sel.Design.ConcreteVolumeM3 = 0
	if strings.Contains(EngineNote(sel), "bags cement") {
		t.Error("no take-off without a concrete volume")
	}
}

func TestFenceNote(t *testing.T) {
	if got := FenceNote(60, 2); got != "Engine: Fence 60m x 2m needs 1200 blocks and 24 bags of mortar cement" {
		t.Errorf("unexpected fence note %q", got)
	}
}
