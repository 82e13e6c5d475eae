package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Completer is the abstract language-model capability the Outlet SQL Gate and
// the Orchestrator depend on. A production implementation talks to a remote
// service; a test implementation returns a scripted reply.
type Completer interface {
	// Complete returns a free-text completion for userPrompt under systemPrompt.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteStructured decodes the model's structured (JSON-schema-constrained)
	// output into out. schema is a JSON Schema document describing the shape.
	CompleteStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any, out any) error
}

// SQLExecutor runs a validated read-only SELECT against the outlet store.
// QueryRows expects a statement selecting the ten Outlet columns, in order;
// QueryCount expects a statement selecting a single column aliased "count".
type SQLExecutor interface {
	QueryRows(ctx context.Context, sql string) ([]Outlet, error)
	QueryCount(ctx context.Context, sql string) (int, error)
}

const outletQueryTimeout = 5 * time.Second
const outletListLimit = 20 // L in spec §4.3

// generatedQuery is the structured-output shape the language model must
// produce: a single SELECT statement plus the caller's intended result shape.
type generatedQuery struct {
	Kind string `json:"kind" jsonschema_description:"one of: list, count, single — the shape of the expected result"`
	SQL  string `json:"sql" jsonschema_description:"a single read-only SELECT statement against the outlets table"`
}

var countIntentRe = regexp.MustCompile(`(?i)\bhow many\b|\bcount\b|\bnumber of\b`)

var forbiddenKeywords = []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "GRANT"}

// forbiddenKeywordRes holds one word-boundary regexp per forbiddenKeywords
// entry, compiled once at init so validateOutletSQL never mutates shared
// state across concurrent callers (it's hit from the hybrid dispatch
// goroutine too).
var forbiddenKeywordRes = compileForbiddenKeywordRes()

func compileForbiddenKeywordRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(forbiddenKeywords))
	for i, kw := range forbiddenKeywords {
		res[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return res
}

var fromJoinTableRe = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)

const outletsSchema = `
Table: outlets
  id bigint primary key
  name text
  address text
  city text
  state text
  postal_code text
  maps_url text
  location_category text
  source text
  fetched_at timestamp
`

// OutletGate translates a natural-language outlet question into a single
// validated SELECT, executes it, and formats the rows. It never lets the
// language model run arbitrary SQL: every generated statement passes
// validateOutletSQL before execution.
type OutletGate struct {
	completer Completer
	executor  SQLExecutor
	schema    map[string]any
}

// defaultOutletQuerySchema is used when NewOutletGate is not given a
// reflected schema (e.g. in tests with a scripted Completer).
var defaultOutletQuerySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"kind", "sql"},
	"properties": map[string]any{
		"kind": map[string]any{"type": "string", "enum": []string{"list", "count", "single"}},
		"sql":  map[string]any{"type": "string"},
	},
}

// NewOutletGate constructs an OutletGate. schema is the JSON Schema document
// the language model must satisfy when generating a query; pass nil to use
// the built-in literal (production wiring passes a reflected schema from
// ai.GenerateSchema instead).
func NewOutletGate(completer Completer, executor SQLExecutor, schema map[string]any) *OutletGate {
	if schema == nil {
		schema = defaultOutletQuerySchema
	}
	return &OutletGate{completer: completer, executor: executor, schema: schema}
}

// Answer implements the algorithm in spec §4.3: generate, validate, execute,
// with at most one regeneration attempt on either a validation or execution
// failure.
func (g *OutletGate) Answer(ctx context.Context, question string) OutletAnswer {
	kindHint := "list"
	if countIntentRe.MatchString(question) {
		kindHint = "count"
	}

	sql, genKind, err := g.generateAndValidate(ctx, question, kindHint, "")
	regenerated := false
	if err != nil {
		regenerated = true
		sql, genKind, err = g.generateAndValidate(ctx, question, kindHint, err.Error())
		if err != nil {
			return OutletAnswer{
				Kind:          OutletKindError,
				FormattedText: "Sorry, I couldn't safely answer that outlet question. Please rephrase it.",
			}
		}
	}

	answer, execErr := g.execute(ctx, genKind, sql)
	if execErr != nil {
		if regenerated {
			return OutletAnswer{
				Kind:          OutletKindError,
				SQL:           sql,
				FormattedText: "Sorry, the outlet lookup failed. Please try again.",
			}
		}
		sql, genKind, err = g.generateAndValidate(ctx, question, kindHint, execErr.Error())
		if err != nil {
			return OutletAnswer{
				Kind:          OutletKindError,
				SQL:           sql,
				FormattedText: "Sorry, I couldn't safely answer that outlet question. Please rephrase it.",
			}
		}
		answer, execErr = g.execute(ctx, genKind, sql)
		if execErr != nil {
			return OutletAnswer{
				Kind:          OutletKindError,
				SQL:           sql,
				FormattedText: "Sorry, the outlet lookup failed. Please try again.",
			}
		}
	}

	return answer
}

// generateAndValidate calls the language model once and validates the result.
// errorContext, when non-empty, is appended to the prompt asking the model to
// fix whatever went wrong last time.
func (g *OutletGate) generateAndValidate(ctx context.Context, question, kindHint, errorContext string) (string, string, error) {
	prompt := fmt.Sprintf(`A user asked an outlet-locator question: %q

Generate a single read-only SELECT statement against the outlets table below
that answers it.

If the question asks "how many", "count", or "number of": return exactly one
column, aliased "count", e.g. SELECT COUNT(*) AS count FROM outlets WHERE ...
Set kind to "count".

Otherwise: return exactly these ten columns, in this exact order:
id, name, address, city, state, postal_code, maps_url, location_category,
source, fetched_at — and end the statement with LIMIT %d. Set kind to "list"
(or "single" if the question asks about one specific outlet by name).

%s`, question, outletListLimit, outletsSchema)

	if errorContext != "" {
		prompt += fmt.Sprintf("\n\nThe previous attempt failed: %s\nFix the statement and try again.", errorContext)
	}

	system := "You translate natural-language outlet questions into a single safe SELECT statement. Never emit destructive SQL."

	var gq generatedQuery
	if err := g.completer.CompleteStructured(ctx, system, prompt, "outlet_query", g.schema, &gq); err != nil {
		return "", "", fmt.Errorf("language model call failed: %w", err)
	}

	if err := validateOutletSQL(gq.SQL); err != nil {
		return gq.SQL, gq.Kind, err
	}

	return gq.SQL, gq.Kind, nil
}

// validateOutletSQL is the pure safety predicate from spec §4.3: the
// statement must start with SELECT, must be a single statement, must
// reference only the outlets table, and must not contain a destructive verb.
func validateOutletSQL(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty SQL statement")
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Errorf("statement must begin with SELECT")
	}

	body := strings.TrimSuffix(strings.TrimRight(trimmed, " \t\n"), ";")
	if strings.Contains(body, ";") {
		return fmt.Errorf("statement must be a single SELECT, not a multi-statement batch")
	}

	upper := strings.ToUpper(trimmed)
	for i, kw := range forbiddenKeywords {
		if forbiddenKeywordRes[i].MatchString(upper) {
			return fmt.Errorf("statement contains forbidden keyword %s", kw)
		}
	}

	for _, m := range fromJoinTableRe.FindAllStringSubmatch(trimmed, -1) {
		if !strings.EqualFold(m[1], "outlets") {
			return fmt.Errorf("statement references table %q, only outlets is allowed", m[1])
		}
	}

	return nil
}

// execute runs sql against the outlet store with a 5s timeout (spec §4.3
// step 3), dispatching to the scalar or row-returning path by genKind.
func (g *OutletGate) execute(ctx context.Context, genKind, sql string) (OutletAnswer, error) {
	ctx, cancel := context.WithTimeout(ctx, outletQueryTimeout)
	defer cancel()

	if genKind == "count" {
		count, err := g.executor.QueryCount(ctx, sql)
		if err != nil {
			return OutletAnswer{}, err
		}
		return OutletAnswer{
			Kind:          OutletKindCount,
			Count:         count,
			SQL:           sql,
			FormattedText: fmt.Sprintf("%d outlet(s) matched.", count),
		}, nil
	}

	rows, err := g.executor.QueryRows(ctx, sql)
	if err != nil {
		return OutletAnswer{}, err
	}
	return formatOutletAnswer(genKind, sql, rows), nil
}

// formatOutletAnswer renders rows into the OutletAnswer envelope for the
// list/single shapes (the count shape is built directly in execute).
func formatOutletAnswer(genKind, sql string, rows []Outlet) OutletAnswer {
	if len(rows) == 0 {
		return OutletAnswer{Kind: OutletKindEmpty, Count: 0, SQL: sql, FormattedText: "No matching outlets found."}
	}

	kind := OutletResultKind(OutletKindList)
	if len(rows) == 1 && genKind == "single" {
		kind = OutletKindSingle
	}

	var b strings.Builder
	for _, o := range rows {
		b.WriteString(o.Name)
		if o.Address != "" {
			b.WriteString(" — " + o.Address)
		}
		if o.MapsURL != "" {
			b.WriteString(" (" + o.MapsURL + ")")
		}
		b.WriteString("\n")
	}

	return OutletAnswer{
		Kind:          kind,
		Rows:          rows,
		Count:         len(rows),
		SQL:           sql,
		FormattedText: strings.TrimRight(b.String(), "\n"),
	}
}
