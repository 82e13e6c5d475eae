package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-agent/internal/core"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// requestDeadline bounds the whole request (spec §5: 30s total).
const requestDeadline = 30 * time.Second

// OutletRowCounter exposes a row count for GET /api/stats without widening
// core.SQLExecutor's contract.
type OutletRowCounter interface {
	CountAll(ctx context.Context) (int, error)
}

// DatabasePinger reports outlet-store reachability for GET /health.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Orchestrator implements ApplicationService: it drives a single request
// through the Session Store, Planner, and whichever tools the Decision
// names (spec §4.6, C6).
type Orchestrator struct {
	planner   *core.Planner
	sessions  *core.SessionStore
	products  *core.ProductIndex
	outlets   *core.OutletGate
	completer core.Completer

	window         int
	catalogSize    func() int
	catalogBuiltAt func() time.Time
	rowCounter     OutletRowCounter
	pinger         DatabasePinger
}

// NewOrchestrator wires the C1–C5 components into a single request handler.
func NewOrchestrator(
	planner *core.Planner,
	sessions *core.SessionStore,
	products *core.ProductIndex,
	outlets *core.OutletGate,
	completer core.Completer,
	window int,
	rowCounter OutletRowCounter,
	pinger DatabasePinger,
) *Orchestrator {
	return &Orchestrator{
		planner:        planner,
		sessions:       sessions,
		products:       products,
		outlets:        outlets,
		completer:      completer,
		window:         window,
		catalogSize:    products.Size,
		catalogBuiltAt: products.BuiltAt,
		rowCounter:     rowCounter,
		pinger:         pinger,
	}
}

// Chat implements the request lifecycle in spec §4.6.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (*ResponseEnvelope, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, requestDeadline)
	defer cancel()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	o.sessions.GetOrCreate(sessionID)
	snapshot := o.sessions.Snapshot(sessionID)

	decision := o.planner.Plan(req.Question, snapshot)

	dispatch := o.dispatch(ctx, decision, req.Question)

	answer, err := o.composeAnswer(ctx, req.Question, decision, dispatch, snapshot)
	if err != nil {
		answer = dispatch.fallbackAnswer(decision)
	}

	if ctx.Err() != nil {
		// Client disconnected or the deadline fired; spec §5 forbids
		// appending a Turn for a cancelled request.
		return nil, ctx.Err()
	}

	o.sessions.AppendTurn(sessionID, core.Turn{
		UserUtterance:      req.Question,
		AssistantUtterance: answer,
		Decision:           decision,
		Timestamp:          time.Now(),
	})
	o.updateMetadata(sessionID, decision, req.Question)

	envelope := &ResponseEnvelope{
		Response:     answer,
		SessionID:    sessionID,
		PlanningInfo: decision,
	}
	if dispatch.calc != nil {
		envelope.CalculationResult = dispatch.calc
	}
	if dispatch.products != nil {
		envelope.ProductCount = len(dispatch.products)
	}
	if dispatch.outlets != nil {
		envelope.OutletCount = dispatch.outlets.Count
	}
	return envelope, nil
}

// dispatchResult carries whatever the tools invoked for this Decision
// produced, so composeAnswer and the ResponseEnvelope can both read it.
type dispatchResult struct {
	calc     *core.CalcResult
	products []core.ProductMatch
	outlets  *core.OutletAnswer
}

// fallbackAnswer is used when the final language-model call itself fails
// (spec §7: tool errors are captured; only the outermost LLM call failing
// degrades to a generic templated answer built from whatever was gathered).
func (d dispatchResult) fallbackAnswer(decision core.Decision) string {
	if decision.PrimaryAction == core.ActionClarify {
		return decision.ClarificationPrompt
	}
	var b strings.Builder
	b.WriteString("Here's what I found")
	if d.calc != nil && d.calc.Ok {
		fmt.Fprintf(&b, ": %s = %s", d.calc.Expression, d.calc.Formatted)
	}
	if len(d.products) > 0 {
		fmt.Fprintf(&b, ". %d matching product(s).", len(d.products))
	}
	if d.outlets != nil {
		fmt.Fprintf(&b, ". %s", d.outlets.FormattedText)
	}
	b.WriteString(" (the language model was unavailable to phrase a fuller answer.)")
	return b.String()
}

// dispatch runs Decision.primary_action's tools and returns their outputs.
// hybrid runs both retrieval tools in parallel (spec §4.6 step 4).
func (o *Orchestrator) dispatch(ctx context.Context, decision core.Decision, question string) dispatchResult {
	var result dispatchResult

	switch decision.PrimaryAction {
	case core.ActionCalculate:
		calc := core.ParseAndCalculate(question)
		result.calc = &calc

	case core.ActionSearchProducts:
		sortKey := core.DetectSortKey(question)
		result.products = o.products.SearchSorted(ctx, question, -1, sortKey)

	case core.ActionSearchOutlets:
		answer := o.outlets.Answer(ctx, question)
		result.outlets = &answer

	case core.ActionHybrid:
		wantProducts, wantOutlets, wantCalc := false, false, false
		for _, step := range decision.Plan {
			switch step.Tool {
			case "product_index":
				wantProducts = true
			case "outlet_gate":
				wantOutlets = true
			case "calculator":
				wantCalc = true
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		var products []core.ProductMatch
		var outlets core.OutletAnswer

		if wantProducts {
			g.Go(func() error {
				sortKey := core.DetectSortKey(question)
				products = o.products.SearchSorted(gctx, question, -1, sortKey)
				return nil
			})
		}
		if wantOutlets {
			g.Go(func() error {
				outlets = o.outlets.Answer(gctx, question)
				return nil
			})
		}
		_ = g.Wait() // both tools report failures in their own result shapes, never as an error here

		if wantProducts {
			result.products = products
		}
		if wantOutlets {
			result.outlets = &outlets
		}
		if wantCalc {
			calc := core.ParseAndCalculate(question)
			result.calc = &calc
		}

	case core.ActionClarify, core.ActionAnswerDirectly:
		// no tool dispatch
	}

	return result
}

// composeAnswer assembles the final language-model prompt from the system
// instructions, the Decision's retrieved context, and the last W turns, then
// calls the language model (spec §4.6 step 5). clarify never reaches the
// model: its prompt is the final answer.
func (o *Orchestrator) composeAnswer(ctx context.Context, question string, decision core.Decision, dispatch dispatchResult, snapshot core.Snapshot) (string, error) {
	if decision.PrimaryAction == core.ActionClarify {
		return decision.ClarificationPrompt, nil
	}

	system := "You are a helpful assistant for a drinkware catalog and retail outlet directory. " +
		"Answer using only the context provided below when it is present; otherwise answer from " +
		"your own general knowledge, but stay within the topic of drinkware products, outlets, and arithmetic."

	var ctxBlock strings.Builder
	if dispatch.calc != nil {
		if dispatch.calc.Ok {
			fmt.Fprintf(&ctxBlock, "Calculation result: %s = %s\n", dispatch.calc.Expression, dispatch.calc.Formatted)
		} else {
			fmt.Fprintf(&ctxBlock, "Calculation failed: %s (%s)\n", dispatch.calc.ErrorMessage, dispatch.calc.ErrorKind)
		}
	}
	if dispatch.products != nil {
		ctxBlock.WriteString("Matching products:\n")
		for _, m := range dispatch.products {
			fmt.Fprintf(&ctxBlock, "- %s ($%s)\n", m.Product.Name, m.Product.Price.StringFixed(2))
		}
	}
	if dispatch.outlets != nil {
		fmt.Fprintf(&ctxBlock, "Outlet lookup result:\n%s\n", dispatch.outlets.FormattedText)
	}

	var historyBlock strings.Builder
	for _, turn := range snapshot.Turns {
		fmt.Fprintf(&historyBlock, "User: %s\nAssistant: %s\n", turn.UserUtterance, turn.AssistantUtterance)
	}

	prompt := fmt.Sprintf("Conversation so far:\n%s\nRetrieved context:\n%s\nUser question: %s",
		historyBlock.String(), ctxBlock.String(), question)

	return o.completer.Complete(ctx, system, prompt)
}

func (o *Orchestrator) updateMetadata(sessionID string, decision core.Decision, question string) {
	_ = o.sessions.UpdateMetadata(sessionID, core.MetaLastPrimaryAction, string(decision.PrimaryAction))
	switch decision.PrimaryAction {
	case core.ActionSearchProducts:
		_ = o.sessions.UpdateMetadata(sessionID, core.MetaLastProductQuery, question)
	case core.ActionSearchOutlets:
		_ = o.sessions.UpdateMetadata(sessionID, core.MetaLastOutletQuery, question)
	case core.ActionHybrid:
		for _, step := range decision.Plan {
			if step.Tool == "product_index" {
				_ = o.sessions.UpdateMetadata(sessionID, core.MetaLastProductQuery, question)
			}
			if step.Tool == "outlet_gate" {
				_ = o.sessions.UpdateMetadata(sessionID, core.MetaLastOutletQuery, question)
			}
		}
	}
	if sortKey := core.DetectSortKey(question); sortKey != core.SortNone {
		_ = o.sessions.UpdateMetadata(sessionID, core.MetaPreferredSort, string(sortKey))
	}
}

// SearchProducts implements ApplicationService.SearchProducts for GET /products.
func (o *Orchestrator) SearchProducts(ctx context.Context, query string, k int) (*ProductSearchResult, error) {
	sortKey := core.DetectSortKey(query)
	matches := o.products.SearchSorted(ctx, query, k, sortKey)
	return &ProductSearchResult{Matches: matches, Count: len(matches)}, nil
}

// SearchOutlets implements ApplicationService.SearchOutlets for GET /outlets.
func (o *Orchestrator) SearchOutlets(ctx context.Context, query string) (*OutletSearchResult, error) {
	answer := o.outlets.Answer(ctx, query)
	return &OutletSearchResult{OutletAnswer: answer}, nil
}

// Calculate implements ApplicationService.Calculate for GET /calculate.
func (o *Orchestrator) Calculate(ctx context.Context, text string) (*CalcResultView, error) {
	result := core.ParseAndCalculate(text)
	return &CalcResultView{CalcResult: result}, nil
}

// Stats implements ApplicationService.Stats for GET /api/stats.
func (o *Orchestrator) Stats(ctx context.Context) (*StatsResult, error) {
	outletCount := 0
	if o.rowCounter != nil {
		if n, err := o.rowCounter.CountAll(ctx); err == nil {
			outletCount = n
		}
	}
	size := o.catalogSize()
	return &StatsResult{
		CatalogSize:    size,
		CatalogEmpty:   size == 0,
		CatalogBuiltAt: o.catalogBuiltAt(),
		OutletCount:    outletCount,
		SessionCount:   o.sessions.Count(),
	}, nil
}

// Health implements ApplicationService.Health for GET /health.
func (o *Orchestrator) Health(ctx context.Context) (*HealthResult, error) {
	dbUp := true
	if o.pinger != nil {
		dbUp = o.pinger.Ping(ctx) == nil
	}
	return &HealthResult{
		Status:       "online",
		CatalogEmpty: o.catalogSize() == 0,
		DatabaseUp:   dbUp,
	}, nil
}

var _ ApplicationService = (*Orchestrator)(nil)
