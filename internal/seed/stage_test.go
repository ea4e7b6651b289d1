package seed

import "testing"

func TestNextStage_AdvancesInOrder(t *testing.T) {
	cases := []struct {
		from Stage
		want Stage
	}{
		{StageDocuments, StageConcepts},
		{StageConcepts, StageSummaries},
		{StageSummaries, StageCategories},
		{StageCategories, StageComplete},
	}
	for _, tc := range cases {
		if got := NextStage(tc.from); got != tc.want {
			t.Errorf("NextStage(%q) = %q, want %q", tc.from, got, tc.want)
		}
	}
}

func TestNextStage_CompleteStaysComplete(t *testing.T) {
	if got := NextStage(StageComplete); got != StageComplete {
		t.Errorf("NextStage(complete) = %q, want complete", got)
	}
}

func TestNextStage_UnrecognizedGoesToComplete(t *testing.T) {
	if got := NextStage(Stage("bogus")); got != StageComplete {
		t.Errorf("NextStage(bogus) = %q, want complete", got)
	}
}

func TestIsBefore(t *testing.T) {
	if !IsBefore(StageDocuments, StageConcepts) {
		t.Error("expected documents before concepts")
	}
	if IsBefore(StageConcepts, StageDocuments) {
		t.Error("expected concepts not before documents")
	}
	if IsBefore(StageComplete, StageDocuments) {
		t.Error("expected complete not before documents")
	}
}

func TestIsBefore_UnrecognizedStage(t *testing.T) {
	if IsBefore(Stage("bogus"), StageDocuments) {
		t.Error("unrecognized stage should never be before a known one")
	}
	if !IsBefore(StageDocuments, Stage("bogus")) {
		t.Error("a known stage should be before an unrecognized one")
	}
}
