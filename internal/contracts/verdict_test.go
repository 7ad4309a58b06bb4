package contracts

import "testing"

func TestPassAndReject(t *testing.T) {
	attrs := NewAttributes()
	attrs.Set("adx", 27.5)

	pass := Pass(attrs)
	if !pass.Passed {
		t.Error("Pass() verdict should be passing")
	}
	if v, ok := pass.Attributes.Get("adx"); !ok || v != 27.5 {
		t.Errorf("Pass() attributes lost: got %v, %v", v, ok)
	}

	fail := Reject("trend_structure", "price below long-term average")
	if fail.Passed {
		t.Error("Reject() verdict should be failing")
	}
	if fail.Stage != "trend_structure" {
		t.Errorf("Stage = %q, want trend_structure", fail.Stage)
	}
	if fail.Reason != "price below long-term average" {
		t.Errorf("Reason = %q", fail.Reason)
	}
}

func TestAttributesFlags(t *testing.T) {
	attrs := NewAttributes()

	attrs.SetFlag("engulfing", true)
	attrs.SetFlag("consolidation", false)

	if !attrs.Flag("engulfing") {
		t.Error("Flag(engulfing) = false, want true")
	}
	if attrs.Flag("consolidation") {
		t.Error("Flag(consolidation) = true, want false")
	}
	if attrs.Flag("never_set") {
		t.Error("Flag(never_set) = true, want false")
	}
}

func TestAttributesMergeAndClone(t *testing.T) {
	a := NewAttributes()
	a.Set("rsi", 55)

	b := NewAttributes()
	b.Set("adx", 30)
	b.Set("rsi", 56) // later stage wins on collision

	a.Merge(b)
	if v, _ := a.Get("adx"); v != 30 {
		t.Errorf("Merge lost adx: %v", v)
	}
	if v, _ := a.Get("rsi"); v != 56 {
		t.Errorf("Merge should overwrite rsi: %v", v)
	}

	c := a.Clone()
	c.Set("rsi", 1)
	if v, _ := a.Get("rsi"); v != 56 {
		t.Error("Clone() shares storage with the original")
	}
}

func TestReportStageCounts(t *testing.T) {
	report := ScreenReport{
		Evaluated: 5,
		Rejections: []Rejection{
			{Symbol: "A", Stage: "trend_structure", Reason: "price below long-term average"},
			{Symbol: "B", Stage: "trend_structure", Reason: "short-term trend not aligned"},
			{Symbol: "C", Stage: "momentum_band", Reason: "momentum out of band"},
		},
	}

	report.BuildStageCounts()

	if report.StageCounts["trend_structure"] != 2 {
		t.Errorf("StageCounts[trend_structure] = %d, want 2", report.StageCounts["trend_structure"])
	}
	if report.StageCounts["momentum_band"] != 1 {
		t.Errorf("StageCounts[momentum_band] = %d, want 1", report.StageCounts["momentum_band"])
	}

	if report.Empty() {
		t.Error("Empty() = true for a report with evaluations")
	}

	none := ScreenReport{}
	if !none.Empty() {
		t.Error("Empty() = false for a report with no evaluations")
	}
}

func TestTopSymbols(t *testing.T) {
	report := ScreenReport{
		Candidates: []RankedCandidate{
			{Symbol: "RELIANCE", Rank: 1, Score: 84.2},
			{Symbol: "INFY", Rank: 2, Score: 81.4},
		},
	}

	got := report.TopSymbols()
	if len(got) != 2 || got[0] != "RELIANCE" || got[1] != "INFY" {
		t.Errorf("TopSymbols() = %v", got)
	}

	cand := report.Candidates[0]
	if !cand.IsTopRanked(1) {
		t.Error("IsTopRanked(1) = false for rank 1")
	}
	if report.Candidates[1].IsTopRanked(1) {
		t.Error("IsTopRanked(1) = true for rank 2")
	}
}
