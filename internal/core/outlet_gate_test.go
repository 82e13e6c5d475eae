package core

import (
	"context"
	"errors"
	"testing"
)

// scriptedCompleter returns queued (kind, sql) pairs in order, one per call to
// CompleteStructured, regardless of the prompt it was given.
type scriptedCompleter struct {
	calls int
	kinds []string
	sqls  []string
	errs  []error
}

func (c *scriptedCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("not used")
}

func (c *scriptedCompleter) CompleteStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any, out any) error {
	i := c.calls
	c.calls++
	if i >= len(c.sqls) {
		return errors.New("scriptedCompleter: out of scripted responses")
	}
	if c.errs != nil && i < len(c.errs) && c.errs[i] != nil {
		return c.errs[i]
	}
	gq, ok := out.(*generatedQuery)
	if !ok {
		return errors.New("scriptedCompleter: unexpected output type")
	}
	gq.Kind = c.kinds[i]
	gq.SQL = c.sqls[i]
	return nil
}

type fakeSQLExecutor struct {
	rows     []Outlet
	count    int
	queryErr error
	countErr error
	rowCalls int
	countCalls int
}

func (f *fakeSQLExecutor) QueryRows(ctx context.Context, sql string) ([]Outlet, error) {
	f.rowCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeSQLExecutor) QueryCount(ctx context.Context, sql string) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func TestValidateOutletSQL(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"valid select", "SELECT id, name FROM outlets WHERE city = 'KL' LIMIT 20", false},
		{"not select", "DELETE FROM outlets", true},
		{"drop table", "SELECT * FROM outlets; DROP TABLE outlets", true},
		{"wrong table", "SELECT * FROM users", true},
		{"join other table", "SELECT * FROM outlets JOIN users ON 1=1", true},
		{"multi statement", "SELECT * FROM outlets; SELECT * FROM outlets", true},
		{"empty", "", true},
		{"insert disguised", "SELECT * FROM outlets WHERE name = 'INSERT'", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutletSQL(tt.sql)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOutletSQL(%q) err = %v, wantErr %v", tt.sql, err, tt.wantErr)
			}
		})
	}
}

func TestOutletGate_Answer_CountQuery(t *testing.T) {
	completer := &scriptedCompleter{
		kinds: []string{"count"},
		sqls:  []string{"SELECT COUNT(*) AS count FROM outlets WHERE state = 'Selangor'"},
	}
	executor := &fakeSQLExecutor{count: 7}
	gate := NewOutletGate(completer, executor, nil)

	answer := gate.Answer(context.Background(), "how many outlets are in Selangor")
	if answer.Kind != OutletKindCount {
		t.Fatalf("Kind = %v, want count", answer.Kind)
	}
	if answer.Count != 7 {
		t.Errorf("Count = %d, want 7", answer.Count)
	}
	if executor.countCalls != 1 || executor.rowCalls != 0 {
		t.Errorf("expected exactly one QueryCount call and no QueryRows calls, got %d/%d", executor.countCalls, executor.rowCalls)
	}
}

func TestOutletGate_Answer_ListQuery(t *testing.T) {
	completer := &scriptedCompleter{
		kinds: []string{"list"},
		sqls:  []string{"SELECT id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at FROM outlets WHERE city = 'Subang Jaya' LIMIT 20"},
	}
	executor := &fakeSQLExecutor{rows: []Outlet{
		{ID: 1, Name: "Subang Outlet", Address: "1 Jalan SS15", City: "Subang Jaya"},
	}}
	gate := NewOutletGate(completer, executor, nil)

	answer := gate.Answer(context.Background(), "outlets in Subang Jaya")
	if answer.Kind != OutletKindList {
		t.Fatalf("Kind = %v, want list", answer.Kind)
	}
	if answer.Count != 1 {
		t.Errorf("Count = %d, want 1", answer.Count)
	}
	if executor.rowCalls != 1 {
		t.Errorf("expected exactly one QueryRows call, got %d", executor.rowCalls)
	}
}

func TestOutletGate_Answer_EmptyResult(t *testing.T) {
	completer := &scriptedCompleter{
		kinds: []string{"list"},
		sqls:  []string{"SELECT id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at FROM outlets WHERE city = 'Nowhere' LIMIT 20"},
	}
	executor := &fakeSQLExecutor{rows: nil}
	gate := NewOutletGate(completer, executor, nil)

	answer := gate.Answer(context.Background(), "outlets in Nowhere")
	if answer.Kind != OutletKindEmpty {
		t.Fatalf("Kind = %v, want empty", answer.Kind)
	}
}

func TestOutletGate_Answer_RegeneratesOnInvalidSQLThenSucceeds(t *testing.T) {
	completer := &scriptedCompleter{
		kinds: []string{"list", "list"},
		sqls: []string{
			"DELETE FROM outlets",
			"SELECT id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at FROM outlets LIMIT 20",
		},
	}
	executor := &fakeSQLExecutor{rows: []Outlet{{ID: 1, Name: "A"}}}
	gate := NewOutletGate(completer, executor, nil)

	answer := gate.Answer(context.Background(), "list outlets")
	if answer.Kind != OutletKindList {
		t.Fatalf("Kind = %v, want list after regeneration, sql=%q", answer.Kind, answer.SQL)
	}
	if completer.calls != 2 {
		t.Errorf("expected exactly 2 generation attempts, got %d", completer.calls)
	}
}

func TestOutletGate_Answer_GivesUpAfterTwoInvalidAttempts(t *testing.T) {
	completer := &scriptedCompleter{
		kinds: []string{"list", "list"},
		sqls:  []string{"DELETE FROM outlets", "DROP TABLE outlets"},
	}
	executor := &fakeSQLExecutor{}
	gate := NewOutletGate(completer, executor, nil)

	answer := gate.Answer(context.Background(), "list outlets")
	if answer.Kind != OutletKindError {
		t.Fatalf("Kind = %v, want error", answer.Kind)
	}
	if executor.rowCalls != 0 || executor.countCalls != 0 {
		t.Errorf("expected no execution when validation never passes")
	}
}

func TestOutletGate_Answer_RegeneratesOnExecutionFailure(t *testing.T) {
	validSQL := "SELECT id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at FROM outlets LIMIT 20"
	completer := &scriptedCompleter{
		kinds: []string{"list", "list"},
		sqls:  []string{validSQL, validSQL},
	}
	executor := &fakeSQLExecutor{rows: []Outlet{{ID: 1, Name: "A"}}}

	gate := &OutletGate{completer: completer, executor: &failThenSucceedExecutor{fail: errors.New("connection reset"), succeed: executor}}

	answer := gate.Answer(context.Background(), "list outlets")
	if answer.Kind != OutletKindList {
		t.Fatalf("Kind = %v, want list after retry, text=%q", answer.Kind, answer.FormattedText)
	}
}

// failThenSucceedExecutor fails QueryRows once, then delegates to succeed.
type failThenSucceedExecutor struct {
	fail    error
	failed  bool
	succeed SQLExecutor
}

func (f *failThenSucceedExecutor) QueryRows(ctx context.Context, sql string) ([]Outlet, error) {
	if !f.failed {
		f.failed = true
		return nil, f.fail
	}
	return f.succeed.QueryRows(ctx, sql)
}

func (f *failThenSucceedExecutor) QueryCount(ctx context.Context, sql string) (int, error) {
	return f.succeed.QueryCount(ctx, sql)
}
