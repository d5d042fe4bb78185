package idhash

import "testing"

func TestComputeAnalysisID_Deterministic(t *testing.T) {
	id1 := ComputeAnalysisID("So11111111111111111111111111111111111111112", 1700000000000)
	id2 := ComputeAnalysisID("So11111111111111111111111111111111111111112", 1700000000000)

	if id1 != id2 {
		t.Errorf("same input produced different ids: %s vs %s", id1, id2)
	}
	if len(id1) != 64 {
		t.Errorf("expected 64-char hex id, got %d chars", len(id1))
	}
}

func TestComputeAnalysisID_DifferentInputs(t *testing.T) {
	id1 := ComputeAnalysisID("mintA", 1700000000000)
	id2 := ComputeAnalysisID("mintA", 1700000000001)
	id3 := ComputeAnalysisID("mintB", 1700000000000)

	if id1 == id2 {
		t.Error("different timestamps produced identical ids")
	}
	if id1 == id3 {
		t.Error("different mints produced identical ids")
	}
}

func TestComputeSampleID_Deterministic(t *testing.T) {
	id1 := ComputeSampleID("PERFECT_CRIME", 42, 120)
	id2 := ComputeSampleID("PERFECT_CRIME", 42, 120)
	if id1 != id2 {
		t.Errorf("same input produced different ids: %s vs %s", id1, id2)
	}

	other := ComputeSampleID("WASH_LOOP", 42, 120)
	if id1 == other {
		t.Error("different patterns produced identical ids")
	}
}
