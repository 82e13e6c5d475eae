package core

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	calculateThreshold     = 0.6
	hybridThreshold        = 0.5
	retrievalThreshold     = 0.6
	clarifyLengthThreshold = 40 // characters; short utterances are candidates for clarify
)

var productKeywords = []string{
	"tumbler", "bottle", "mug", "cup", "cold cup", "drinkware", "straw", "lid",
	"capacity", "ml", "oz", "price", "color",
}

var outletKeywords = []string{
	"outlet", "store", "branch", "location", "near", "address", "open",
	"hours", "map", "city", "state", "postal",
}

var referencePronouns = []string{"it", "that", "those", "them", "there"}

var operatorTokenRe = regexp.MustCompile(`(?:^|\s)(\+|-|\*\*|\*|/|%)(?:\s|$)`)
var numberTokenRe = regexp.MustCompile(`\d+(\.\d+)?`)
var mathExpressionSpanRe = regexp.MustCompile(`\d+(\.\d+)?\s*(\*\*|[+\-*/%])\s*\d+(\.\d+)?`)

var calcTriggerWordsPlanner = []string{
	"plus", "minus", "times", "multiplied by", "divided by", "calculate",
	"compute", "what is", "equals",
}

var countIntentWords = []string{"how many", "count", "number of"}

// Planner is a pure function of (question, session snapshot, known locations)
// to Decision. It holds no mutable state and performs no I/O.
type Planner struct {
	// knownLocations is the closed city/state vocabulary used by
	// location_mentioned detection (spec §4.5), loaded once from config.
	knownLocations map[string]bool
}

// NewPlanner constructs a Planner over a fixed set of known city/state names
// (case-insensitive).
func NewPlanner(knownLocations []string) *Planner {
	set := make(map[string]bool, len(knownLocations))
	for _, loc := range knownLocations {
		set[strings.ToLower(loc)] = true
	}
	return &Planner{knownLocations: set}
}

// Plan produces a Decision for question given a session snapshot. Plan is
// pure: the same (question, snapshot) always yields a byte-for-byte
// identical Decision (spec §4.5, §8).
func (p *Planner) Plan(question string, snapshot Snapshot) Decision {
	lower := strings.ToLower(question)
	entities := p.extractEntities(lower, snapshot)

	calcScore, calcReason := scoreCalculate(lower, entities)
	productsScore, productsReason := scoreProducts(lower, entities, snapshot)
	outletsScore, outletsReason := scoreOutlets(lower, entities, snapshot)
	hybridScore := 0.0
	if productsScore > 0.5 && outletsScore > 0.5 {
		hybridScore = minFloat(productsScore, outletsScore) * 0.9
	}

	retrievalScore := maxFloat(productsScore, outletsScore)

	switch {
	case calcScore >= calculateThreshold && calcScore >= retrievalScore:
		if retrievalScore >= retrievalThreshold {
			return p.buildHybrid(question, entities, calcScore, productsScore, outletsScore,
				fmt.Sprintf("calculate upgraded to hybrid: %s; retrieval also qualified (%s / %s)", calcReason, productsReason, outletsReason))
		}
		return Decision{
			PrimaryAction: ActionCalculate,
			Confidence:    calcScore,
			Reasoning:     calcReason,
			Entities:      entities,
			Plan:          []PlanStep{{Tool: "calculator", Reason: calcReason}},
		}

	case hybridScore >= hybridThreshold:
		return p.buildHybrid(question, entities, calcScore, productsScore, outletsScore,
			fmt.Sprintf("hybrid: %s and %s both qualified", productsReason, outletsReason))

	case retrievalScore >= retrievalThreshold:
		if productsScore >= outletsScore {
			return Decision{
				PrimaryAction: ActionSearchProducts,
				Confidence:    productsScore,
				Reasoning:     productsReason,
				Entities:      entities,
				Plan:          []PlanStep{{Tool: "product_index", Reason: productsReason}},
			}
		}
		return Decision{
			PrimaryAction: ActionSearchOutlets,
			Confidence:    outletsScore,
			Reasoning:     outletsReason,
			Entities:      entities,
			Plan:          []PlanStep{{Tool: "outlet_gate", Reason: outletsReason}},
		}

	case len(question) < clarifyLengthThreshold && entities.ReferencesPriorTurn && len(snapshot.Turns) > 0:
		return p.buildClarify(snapshot, entities)

	default:
		return Decision{
			PrimaryAction: ActionAnswerDirectly,
			Confidence:    1 - maxFloat(calcScore, maxFloat(productsScore, outletsScore)),
			Reasoning:     "no tool signal crossed threshold; answering from the language model's own knowledge",
			Entities:      entities,
			Plan:          []PlanStep{},
		}
	}
}

func (p *Planner) buildHybrid(question string, entities EntityFlags, calcScore, productsScore, outletsScore float64, reasoning string) Decision {
	plan := []PlanStep{}
	if productsScore > 0.5 {
		plan = append(plan, PlanStep{Tool: "product_index", Reason: "hybrid dispatch: products score qualified"})
	}
	if outletsScore > 0.5 {
		plan = append(plan, PlanStep{Tool: "outlet_gate", Reason: "hybrid dispatch: outlets score qualified"})
	}
	if calcScore >= calculateThreshold {
		plan = append(plan, PlanStep{Tool: "calculator", Reason: "hybrid dispatch: calculation also qualified"})
	}
	confidence := maxFloat(calcScore, maxFloat(productsScore, outletsScore)) * 0.9
	return Decision{
		PrimaryAction: ActionHybrid,
		Confidence:    confidence,
		Reasoning:     reasoning,
		Entities:      entities,
		Plan:          plan,
	}
}

func (p *Planner) buildClarify(snapshot Snapshot, entities EntityFlags) Decision {
	lastAction := snapshot.Metadata[MetaLastPrimaryAction]
	missing := []string{}
	var prompt string

	switch lastAction {
	case string(ActionSearchProducts):
		missing = append(missing, "missing:product_category")
		lastQuery := snapshot.Metadata[MetaLastProductQuery]
		if lastQuery != "" {
			prompt = fmt.Sprintf("Could you clarify what you'd like to know about %q, or name a different product?", lastQuery)
		} else {
			prompt = "Could you tell me which product you mean?"
		}
	case string(ActionSearchOutlets):
		missing = append(missing, "missing:location")
		lastQuery := snapshot.Metadata[MetaLastOutletQuery]
		if lastQuery != "" {
			prompt = fmt.Sprintf("Could you clarify what you'd like to know about %q, or name a different outlet or city?", lastQuery)
		} else {
			prompt = "Could you tell me which outlet or city you mean?"
		}
	default:
		missing = append(missing, "missing:context")
		prompt = "Could you say a bit more about what you're asking?"
	}

	return Decision{
		PrimaryAction:       ActionClarify,
		Confidence:          0.5,
		Reasoning:           "short question references a prior turn with no concrete antecedent in this session",
		Entities:            entities,
		MissingInfo:         missing,
		Plan:                []PlanStep{},
		ClarificationPrompt: prompt,
	}
}

// extractEntities computes the boolean entity flags from spec §4.5.
func (p *Planner) extractEntities(lower string, snapshot Snapshot) EntityFlags {
	hasNumbers := numberTokenRe.MatchString(lower)
	hasOperators := operatorTokenRe.MatchString(lower)
	hasMathExpression := mathExpressionSpanRe.MatchString(lower)

	productHit := containsAny(lower, productKeywords)
	outletHit := containsAny(lower, outletKeywords)
	locationMentioned := p.detectLocation(lower)
	referencesPrior := referencesPriorTurnWithoutAntecedent(lower)

	return EntityFlags{
		HasNumbers:          hasNumbers,
		HasOperators:        hasOperators,
		HasMathExpression:   hasMathExpression,
		ProductKeywordsHit:  productHit,
		OutletKeywordsHit:   outletHit,
		LocationMentioned:   locationMentioned,
		ReferencesPriorTurn: referencesPrior,
	}
}

func (p *Planner) detectLocation(lower string) bool {
	if postalCodeRe.MatchString(lower) {
		return true
	}
	for loc := range p.knownLocations {
		if strings.Contains(lower, loc) {
			return true
		}
	}
	return false
}

var postalCodeRe = regexp.MustCompile(`\b\d{5}\b`)

// referencesPriorTurnWithoutAntecedent is true when the question contains a
// bare reference pronoun and supplies no concrete noun of its own. A crude
// but deterministic heuristic: short utterances built almost entirely from a
// pronoun and stopwords, per spec §4.5's "it" scenario (#7).
func referencesPriorTurnWithoutAntecedent(lower string) bool {
	words := strings.Fields(stripPunctuation(lower))
	if len(words) == 0 {
		return false
	}
	hasPronoun := false
	for _, w := range words {
		for _, p := range referencePronouns {
			if w == p {
				hasPronoun = true
			}
		}
	}
	if !hasPronoun {
		return false
	}
	// A concrete antecedent is any product or outlet keyword appearing
	// alongside the pronoun in the same utterance.
	if containsAny(lower, productKeywords) || containsAny(lower, outletKeywords) {
		return false
	}
	return true
}

func stripPunctuation(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '?', '!', '.', ',', ';', ':':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func scoreCalculate(lower string, e EntityFlags) (float64, string) {
	if e.HasMathExpression {
		return 0.9, "a contiguous number-operator-number expression is present"
	}
	if containsAny(lower, calcTriggerWordsPlanner) && e.HasNumbers {
		return 0.7, "a calculation trigger word appears alongside a number"
	}
	if e.HasOperators && e.HasNumbers {
		return 0.6, "a standalone operator token appears alongside a number"
	}
	return 0.0, "no arithmetic signal detected"
}

func scoreProducts(lower string, e EntityFlags, snapshot Snapshot) (float64, string) {
	hits := countMatches(lower, productKeywords)
	sortKey := DetectSortKey(lower)
	if hits >= 2 || (hits >= 1 && sortKey != SortNone) {
		return 0.8, "multiple product keywords, or a product keyword plus a sort-key phrase"
	}
	if hits == 1 {
		return 0.6, "exactly one product keyword matched"
	}
	if e.ReferencesPriorTurn && snapshot.Metadata[MetaLastPrimaryAction] == string(ActionSearchProducts) {
		return 0.3, "pronoun reference with no antecedent, prior turn searched products"
	}
	return 0.0, "no product signal detected"
}

func scoreOutlets(lower string, e EntityFlags, snapshot Snapshot) (float64, string) {
	hits := countMatches(lower, outletKeywords)
	countIntent := containsAny(lower, countIntentWords)
	if hits >= 1 && (e.LocationMentioned || countIntent) {
		return 0.85, "an outlet keyword appears with a location or a count-intent phrase"
	}
	if hits >= 1 {
		return 0.65, "an outlet keyword matched with no location or count intent"
	}
	if e.ReferencesPriorTurn && snapshot.Metadata[MetaLastPrimaryAction] == string(ActionSearchOutlets) {
		return 0.3, "pronoun reference with no antecedent, prior turn searched outlets"
	}
	return 0.0, "no outlet signal detected"
}

func countMatches(haystack string, needles []string) int {
	n := 0
	for _, k := range needles {
		if strings.Contains(haystack, k) {
			n++
		}
	}
	return n
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
