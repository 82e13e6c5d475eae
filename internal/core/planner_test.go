package core

import (
	"testing"
)

func testPlanner() *Planner {
	return NewPlanner([]string{"Selangor", "Kuala Lumpur", "Subang Jaya", "Penang"})
}

func TestPlanner_ConcreteScenarios(t *testing.T) {
	p := testPlanner()

	t.Run("scenario 1: simple calculation", func(t *testing.T) {
		d := p.Plan("what is 5 plus 3", Snapshot{})
		if d.PrimaryAction != ActionCalculate {
			t.Fatalf("primary_action = %v, want calculate", d.PrimaryAction)
		}
	})

	t.Run("scenario 2: division by zero still routes to calculate", func(t *testing.T) {
		d := p.Plan("what is 100 divided by 0", Snapshot{})
		if d.PrimaryAction != ActionCalculate {
			t.Fatalf("primary_action = %v, want calculate", d.PrimaryAction)
		}
	})

	t.Run("scenario 3: product search", func(t *testing.T) {
		d := p.Plan("show me tumblers", Snapshot{})
		if d.PrimaryAction != ActionSearchProducts {
			t.Fatalf("primary_action = %v, want search_products", d.PrimaryAction)
		}
	})

	t.Run("scenario 4: sort-key qualified product search", func(t *testing.T) {
		d := p.Plan("cheapest tumbler", Snapshot{})
		if d.PrimaryAction != ActionSearchProducts {
			t.Fatalf("primary_action = %v, want search_products", d.PrimaryAction)
		}
	})

	t.Run("scenario 5: outlet count", func(t *testing.T) {
		d := p.Plan("how many outlets in Selangor", Snapshot{})
		if d.PrimaryAction != ActionSearchOutlets {
			t.Fatalf("primary_action = %v, want search_outlets", d.PrimaryAction)
		}
	})

	t.Run("scenario 6: hybrid calculation plus product", func(t *testing.T) {
		d := p.Plan("I need a tumbler for 5 + 3 people", Snapshot{})
		if d.PrimaryAction != ActionHybrid {
			t.Fatalf("primary_action = %v, want hybrid", d.PrimaryAction)
		}
		foundCalc, foundProducts := false, false
		for _, step := range d.Plan {
			if step.Tool == "calculator" {
				foundCalc = true
			}
			if step.Tool == "product_index" {
				foundProducts = true
			}
		}
		if !foundCalc || !foundProducts {
			t.Errorf("expected both calculator and product_index in plan, got %+v", d.Plan)
		}
	})

	t.Run("scenario 7: bare pronoun clarifies", func(t *testing.T) {
		snapshot := Snapshot{
			Turns:    []Turn{{UserUtterance: "show me tumblers", AssistantUtterance: "here are some tumblers"}},
			Metadata: map[string]string{MetaLastPrimaryAction: string(ActionSearchProducts), MetaLastProductQuery: "tumblers"},
		}
		d := p.Plan("it", snapshot)
		if d.PrimaryAction != ActionClarify {
			t.Fatalf("primary_action = %v, want clarify", d.PrimaryAction)
		}
		if d.ClarificationPrompt == "" {
			t.Error("expected non-empty clarification_prompt")
		}
		if len(d.Plan) != 0 {
			t.Error("clarify must dispatch no tools")
		}
	})
}

func TestPlanner_Determinism(t *testing.T) {
	p := testPlanner()
	snapshot := Snapshot{Metadata: map[string]string{}}
	first := p.Plan("cheapest tumbler near Penang", snapshot)
	second := p.Plan("cheapest tumbler near Penang", snapshot)
	if first.PrimaryAction != second.PrimaryAction || first.Confidence != second.Confidence ||
		first.Reasoning != second.Reasoning || first.Entities != second.Entities ||
		len(first.Plan) != len(second.Plan) {
		t.Errorf("planner is not deterministic:\n%+v\n%+v", first, second)
	}
	for i := range first.Plan {
		if first.Plan[i] != second.Plan[i] {
			t.Errorf("plan step %d differs: %+v vs %+v", i, first.Plan[i], second.Plan[i])
		}
	}
}

func TestPlanner_AnswerDirectlyFallback(t *testing.T) {
	p := testPlanner()
	d := p.Plan("what's the weather like today", Snapshot{})
	if d.PrimaryAction != ActionAnswerDirectly {
		t.Fatalf("primary_action = %v, want answer_directly", d.PrimaryAction)
	}
	if len(d.Plan) != 0 {
		t.Error("answer_directly must dispatch no tools")
	}
}

func TestPlanner_NoClarifyWithoutPriorTurns(t *testing.T) {
	p := testPlanner()
	d := p.Plan("it", Snapshot{})
	if d.PrimaryAction == ActionClarify {
		t.Error("clarify requires prior turns in the session; a cold session must not clarify")
	}
}

func TestPlanner_ClarifyRequiresNonEmptyPrompt(t *testing.T) {
	p := testPlanner()
	snapshot := Snapshot{
		Turns:    []Turn{{UserUtterance: "outlets in Penang"}},
		Metadata: map[string]string{MetaLastPrimaryAction: string(ActionSearchOutlets), MetaLastOutletQuery: "Penang"},
	}
	d := p.Plan("that", snapshot)
	if d.PrimaryAction == ActionClarify && d.ClarificationPrompt == "" {
		t.Fatal("clarify decision must carry a non-empty clarification_prompt (invariant, spec §3/§8)")
	}
}

func TestPlanner_DivideByZeroEntitiesStillFlagMath(t *testing.T) {
	p := testPlanner()
	d := p.Plan("10 % 0", Snapshot{})
	if !d.Entities.HasMathExpression {
		t.Error("expected has_math_expression true for '10 % 0'")
	}
	if d.PrimaryAction != ActionCalculate {
		t.Errorf("primary_action = %v, want calculate", d.PrimaryAction)
	}
}

func TestPlanner_LocationMentionedByPostalCode(t *testing.T) {
	p := testPlanner()
	d := p.Plan("any outlet near 47500", Snapshot{})
	if !d.Entities.LocationMentioned {
		t.Error("expected location_mentioned true for a 5-digit postal code")
	}
}
