// Package intent classifies a free-text construction request into the
// structured signals the estimation pipeline acts on.
package intent

import (
	"regexp"
	"strings"

	"sitemate/core/types"
)

// Intent is the structured reading of one request
type Intent struct {
	// TooShort is set when the request has too little detail to act on
	TooShort bool `json:"too_short"`

	// SoilOverride replaces the stored site soil for this request only
	SoilOverride types.SoilType `json:"soil_override,omitempty"`

	// Foundation is the foundation type named in the request
	Foundation types.FoundationType `json:"foundation,omitempty"`

	// Fence is set for boundary wall projects
	Fence bool `json:"fence"`

	// Building is the building class implied by the request
	Building types.BuildingClass `json:"building"`
}

// Classifier turns request text into an Intent
type Classifier interface {
	Classify(text string) Intent
}

// MinWords is the shortest request the pipeline will act on
const MinWords = 2

// KeywordClassifier reads intent from keywords in the request
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	swampWord  = regexp.MustCompile(`\bswamp(y|land)?\b`)
	clayWord   = regexp.MustCompile(`\bclay(ey)?\b`)
	padWord    = regexp.MustCompile(`\bpads?\b`)
	stripWord  = regexp.MustCompile(`\bstrips?\b`)
	raftWord   = regexp.MustCompile(`\brafts?\b`)
	fenceWord  = regexp.MustCompile(`\b(fence|fencing|fences|boundary wall|perimeter wall)\b`)
	duplexWord = regexp.MustCompile(`\b(duplex|storey|story|two[- ]floor|upstairs)\b`)
)

// Classify implements Classifier. Pad wins over strip when both appear, and
// a fence implies a strip footing.
func (c *KeywordClassifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	in := Intent{
		TooShort: len(strings.Fields(text)) < MinWords,
		Building: types.BuildingBungalow,
	}

	switch {
	case swampWord.MatchString(lower):
		in.SoilOverride = types.SoilSwampy
	case clayWord.MatchString(lower):
		in.SoilOverride = types.SoilClay
	}

	in.Fence = fenceWord.MatchString(lower)

	switch {
	case raftWord.MatchString(lower):
		in.Foundation = types.FoundationRaft
	case padWord.MatchString(lower):
		in.Foundation = types.FoundationPad
	case stripWord.MatchString(lower) || in.Fence:
		in.Foundation = types.FoundationStrip
	}

	if duplexWord.MatchString(lower) {
		in.Building = types.BuildingDuplex
	}
	return in
}
