package performance

import (
	"encoding/json"
	"testing"
)

func sampleProblem() Problem {
	return Problem{
		Fingerprint:     "1-1006-abcdef",
		Op:              "db",
		Desc:            "SELECT * FROM widgets WHERE id = %s",
		Type:            GroupTypeNPlusOneDbQueries,
		ParentSpanIds:   []string{"aaa1"},
		CauseSpanIds:    []string{"bbb2"},
		OffenderSpanIds: []string{"ccc3", "ddd4"},
		EvidenceData:    map[string]any{"transaction_name": "/widgets"},
		EvidenceDisplay: []EvidenceItem{
			{Name: "Offending Spans", Value: "SELECT * FROM widgets", Important: true},
		},
	}
}

func TestProblemEqualIgnoresOffenderOrderAndDuplicates(t *testing.T) {
	a := sampleProblem()
	b := sampleProblem()
	b.OffenderSpanIds = []string{"ddd4", "ccc3", "ccc3"}
	b.Desc = "a different description"
	b.Op = "http"
	if !a.Equal(b) {
		t.Error("expected problems with the same identity triple to be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("expected equal problems to hash identically")
	}
}

func TestProblemNotEqual(t *testing.T) {
	a := sampleProblem()

	differentFingerprint := sampleProblem()
	differentFingerprint.Fingerprint = "1-1006-other"
	if a.Equal(differentFingerprint) {
		t.Error("expected a fingerprint change to break equality")
	}

	differentType := sampleProblem()
	differentType.Type = GroupTypeSlowDbQuery
	if a.Equal(differentType) {
		t.Error("expected a type change to break equality")
	}

	differentOffenders := sampleProblem()
	differentOffenders.OffenderSpanIds = []string{"ccc3"}
	if a.Equal(differentOffenders) {
		t.Error("expected an offender set change to break equality")
	}
	if a.Hash() == differentOffenders.Hash() {
		t.Error("expected different offender sets to hash differently")
	}
}

func TestProblemMapRoundTrip(t *testing.T) {
	original := sampleProblem()
	restored, err := FromMap(original.ToMap())
	if err != nil {
		t.Fatalf("failed to restore problem: %s", err)
	}
	if !original.Equal(restored) {
		t.Error("expected the restored problem to equal the original")
	}
	if restored.Op != original.Op || restored.Desc != original.Desc {
		t.Error("expected descriptive fields to survive the round trip")
	}
	if len(restored.EvidenceDisplay) != 1 || !restored.EvidenceDisplay[0].Important {
		t.Error("expected evidence display to survive the round trip")
	}
}

func TestProblemFromMapAfterJson(t *testing.T) {
	data, err := json.Marshal(sampleProblem().ToMap())
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}
	restored, err := FromMap(decoded)
	if err != nil {
		t.Fatalf("failed to restore problem from json payload: %s", err)
	}
	if !sampleProblem().Equal(restored) {
		t.Error("expected the problem to survive a json round trip")
	}
	if restored.Type.Id != GroupTypeNPlusOneDbQueries.Id {
		t.Errorf("expected type id %v, got %v", GroupTypeNPlusOneDbQueries.Id, restored.Type.Id)
	}
}

func TestProblemFromMapUnknownType(t *testing.T) {
	data := sampleProblem().ToMap()
	data["type"] = 999999
	if _, err := FromMap(data); err == nil {
		t.Error("expected an unknown group type id to be rejected")
	}
}

func TestProblemTitle(t *testing.T) {
	if title := sampleProblem().Title(); title != "N+1 Query" {
		t.Errorf("unexpected title: %s", title)
	}
}

func TestGroupTypeLookups(t *testing.T) {
	byId, ok := GroupTypeById(1006)
	if !ok || byId.Slug != "performance_n_plus_one_db_queries" {
		t.Errorf("unexpected lookup by id: %+v", byId)
	}
	bySlug, ok := GroupTypeBySlug("performance_slow_db_query")
	if !ok || bySlug.Id != 1001 {
		t.Errorf("unexpected lookup by slug: %+v", bySlug)
	}
	if _, ok := GroupTypeById(424242); ok {
		t.Error("expected unknown id lookup to fail")
	}
}
