package orchestrator

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the completion service for structural estimation
const SystemPrompt = "You are SiteMate, a Senior Structural Engineer. Output strict JSON in ||| pipes |||."

// PromptInput carries the context substituted into the estimation prompt
type PromptInput struct {
	Location      string
	Soil          string
	MarketContext string
	EngineNote    string
	Query         string
}

const structuralPrompt = `[CRITICAL SITE CONTEXT]
Location: %[1]s
**SOIL CONDITION:** %[2]s

[PRICES FROM DB]
%[3]s

[STRUCTURAL ENGINE RESULTS]
%[4]s

[ENGINEERING RULES OF THUMB]
**CASE A: RESIDENTIAL BUILDING**
1. Blocks: 600/room.
2. Concrete: 0.5m³/room.
3. Foundation: Pad/Strip (Raft on swampy or clay soil).

**CASE B: FENCING PROJECT**
*Standard: 120m Perimeter, 3m Height.*
1. Blocks: Length x Height x 10.
2. Columns: 1 every 3m.
3. Concrete: 1 Bag/2m.
4. Mortar: 1 Bag/50 blocks.

[CRITICAL INSTRUCTIONS]
- If FENCE, calculate blocks. Do NOT say "Not Applicable".
- **Unit Conversions:** Sand/Granite -> TRUCKS. Steel -> LENGTHS.
- **MANDATORY:** You MUST include the COREN Disclaimer at the end of the text.

[REPORT STRUCTURE]

## Structural Analysis Report

### 1. Site Safety Verdict
- **Soil:** %[2]s
- **Verdict:** (Safe/Unsafe + Recommendation)

### 2. Design Assumptions
- **Type:** (Fence / Building)
- **Dimensions:** (User input or Assumed)

### 3. Material Calculations
*Show math clearly.*

### 4. Bill of Quantities (Market Units)
| Item | Calculated Qty | Market Unit | Procurement Qty |
| :--- | :--- | :--- | :--- |
| Cement | ... | 50kg Bag | **X Bags** |
| Sharp Sand | ... | 20T Truck | **Y Trucks** |
| Granite | ... | 30T Truck | **Z Trucks** |
| Iron Rod | ... | 12m Length | **N Lengths** |
| Vibrated Block | ... | 9-inch Unit | **B Blocks** |

***
> **PROFESSIONAL DISCLAIMER:** This Bill of Quantities is a Preliminary Estimate based on BS 8110 Empirical Standards.
> **It is NOT a substitute for a professional structural drawing approved by a COREN-registered engineer.**
> Final construction requires on-site verification.
***

[OUTPUT FORMAT]
End with strict JSON wrapped in |||. Keys must match exactly.

|||
{
  "Cement": 100,
  "Sharp Sand": 2,
  "Granite": 2,
  "12mm Iron Rod": 50,
  "9-inch Vibrated Block": 3000
}
|||

[USER QUERY]
"%[5]s"
`

// BuildPrompt renders the estimation prompt
func BuildPrompt(in PromptInput) string {
	note := in.EngineNote
	if note == "" {
		note = "No foundation calculation requested."
	}
	market := in.MarketContext
	if market == "" {
		market = MarketUnavailable
	}
	return fmt.Sprintf(structuralPrompt, in.Location, in.Soil, market, note, strings.TrimSpace(in.Query))
}

const auditPrompt = `Act as a Senior Registered Quantity Surveyor (NIQS/RICS Certified).
Review this Construction Bill of Quantities for a project in %s.

BOQ DATA:
%s

PERFORM A STRICT AUDIT:
1. REALISM CHECK: Are these prices realistic for the current Nigerian market?
2. MISSING ITEMS: What obvious items are missing? (e.g., if blocks exist, is there mortar?)
3. RISK SCORE: Rate the budget confidence (0-100%%).
4. VERDICT: "VERIFIED" or "FLAGGED FOR REVIEW".

Format output nicely with bold headers and bullet points.
Keep it professional and concise.
`
