package model

// TriageRoute says what the caller has to do with a triage outcome
type TriageRoute string

const (
	RouteNone          TriageRoute = "none"           // no rule matched, fall through to the model-backed responder
	RouteAnswer        TriageRoute = "answer"         // canned response, terminal
	RouteProductLookup TriageRoute = "product_lookup" // caller queries the catalog by keyword
	RouteComparison    TriageRoute = "comparison"     // caller fetches the products and compares them
)

// RuleBasedResult is the outcome of chat triage
type RuleBasedResult struct {
	Matched               bool        `json:"matched"`
	Route                 TriageRoute `json:"route"`
	Response              string      `json:"response,omitempty"`
	Suggestions           []string    `json:"suggestions,omitempty"`
	RequiresProductLookup bool        `json:"requiresProductLookup,omitempty"`
	ProductKeyword        string      `json:"productKeyword,omitempty"`
	RequiresComparison    bool        `json:"requiresComparison,omitempty"`
	ComparisonProducts    []string    `json:"comparisonProducts,omitempty"`
}

// ComparisonProduct is the product view consumed by the comparison template
type ComparisonProduct struct {
	Name    string   `json:"name"`
	Brand   string   `json:"brand,omitempty"`
	Price   float64  `json:"price"`
	Unit    string   `json:"unit"`
	Usage   []string `json:"usage,omitempty"`
	Quality string   `json:"quality,omitempty"`
}

// NewComparisonProduct projects a catalog record onto the comparison view
func NewComparisonProduct(p Product) ComparisonProduct {
	cp := ComparisonProduct{
		Name:    p.Name,
		Price:   p.Price,
		Unit:    p.Unit,
		Usage:   []string(p.Usage),
		Quality: p.Quality(),
	}
	if p.Brand != nil {
		cp.Brand = *p.Brand
	}
	return cp
}

// ChatRequest is the body of POST /api/v1/chat/triage
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatReply is the triage outcome with the follow-up already resolved
type ChatReply struct {
	Triage      *RuleBasedResult `json:"triage"`
	Response    string           `json:"response,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Products    []Product        `json:"products,omitempty"`
	Fallback    bool             `json:"fallback"` // caller should hand the message to the model-backed responder
}
