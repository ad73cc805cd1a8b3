package ledger

import (
	"testing"

	"shizai/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testCatalog() []model.SupplyItemDefinition {
	return []model.SupplyItemDefinition{
		{ItemKey: "cup_m", ItemName: "Mカップ", UnitName: "個", DeductionKeys: []string{"coffee_m", "latte_m"}},
		{ItemKey: "bowl", ItemName: "丼容器", UnitName: "個", DeductionKeys: []string{"don_a"}},
	}
}

func TestReplay_Recurrence(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100")}
	dates := []string{"20260102", "20260103"}
	restock := DailySeries{
		"20260102": {"cup_m": d("20")},
	}
	deduction := DailySeries{
		"20260102": {"cup_m": d("30")},
		"20260103": {"cup_m": d("10")},
	}

	got := Replay(catalog, baseline, dates, restock, deduction)

	// 100+20-30=90, 90+0-10=80
	if !got["cup_m"].Equal(d("80")) {
		t.Fatalf("cup_m = %s, want 80", got["cup_m"])
	}
	if !got["bowl"].Equal(decimal.Zero) {
		t.Fatalf("bowl = %s, want 0", got["bowl"])
	}
}

func TestReplay_Idempotent(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100"), "bowl": d("42.5")}
	dates := []string{"20260102", "20260103", "20260104"}
	restock := DailySeries{
		"20260103": {"cup_m": d("12.5"), "bowl": d("3")},
	}
	deduction := DailySeries{
		"20260102": {"cup_m": d("7")},
		"20260104": {"bowl": d("0.5")},
	}

	first := Replay(catalog, baseline, dates, restock, deduction)
	second := Replay(catalog, baseline, dates, restock, deduction)

	for key, q := range first {
		if !second[key].Equal(q) {
			t.Fatalf("replay not idempotent for %s: %s vs %s", key, q, second[key])
		}
	}
}

func TestReplay_EmptyDates_ReturnsBaseline(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100")}

	got := Replay(catalog, baseline, nil, nil, nil)

	if !got["cup_m"].Equal(d("100")) {
		t.Fatalf("cup_m = %s, want baseline 100", got["cup_m"])
	}
	if !got["bowl"].Equal(decimal.Zero) {
		t.Fatalf("bowl = %s, want 0 (absent from baseline)", got["bowl"])
	}
}

func TestReplayTo_TargetBeforeBaseDate_Empty(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100")}

	got, err := ReplayTo(catalog, baseline, "20260110", "20260105", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty balance before base date, got %v", got)
	}
}

func TestReplayTo_TargetEqualsBaseDate_ReturnsBaseline(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100"), "bowl": d("7")}

	got, err := ReplayTo(catalog, baseline, "20260110", "20260110", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got["cup_m"].Equal(d("100")) || !got["bowl"].Equal(d("7")) {
		t.Fatalf("expected unchanged baseline, got %v", got)
	}
}

func TestReplay_ItemWithNoEvents_CarriesBaselineForward(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100"), "bowl": d("33.3")}
	dates, err := ChainDates("20260101", "20260131")
	if err != nil {
		t.Fatal(err)
	}
	restock := DailySeries{
		"20260115": {"cup_m": d("50")},
	}
	deduction := DailySeries{
		"20260120": {"cup_m": d("5")},
	}

	got := Replay(catalog, baseline, dates, restock, deduction)

	if !got["bowl"].Equal(d("33.3")) {
		t.Fatalf("bowl drifted to %s over an event-free range, want 33.3", got["bowl"])
	}
	if !got["cup_m"].Equal(d("145")) {
		t.Fatalf("cup_m = %s, want 145", got["cup_m"])
	}
}

func TestReplay_RetroactiveCorrectionPropagates(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("100")}
	dates := []string{"20260102", "20260103", "20260104", "20260105"}
	restock := DailySeries{
		"20260103": {"cup_m": d("10")},
	}
	deduction := DailySeries{
		"20260102": {"cup_m": d("5")},
		"20260104": {"cup_m": d("5")},
	}

	before := Replay(catalog, baseline, dates, restock, deduction)

	// D-3 (20260103) の入庫を 10 → 25 に遡及訂正
	restock["20260103"] = Balance{"cup_m": d("25")}
	after := Replay(catalog, baseline, dates, restock, deduction)

	delta := after["cup_m"].Sub(before["cup_m"])
	if !delta.Equal(d("15")) {
		t.Fatalf("correction delta = %s, want exactly 15", delta)
	}

	// 訂正日より前の残数は変わらない
	beforeCut := Replay(catalog, baseline, dates[:1], restock, deduction)
	if !beforeCut["cup_m"].Equal(d("95")) {
		t.Fatalf("balance before the corrected day changed: %s", beforeCut["cup_m"])
	}
}

func TestReplay_FractionalQuantitiesNoRounding(t *testing.T) {
	catalog := testCatalog()
	baseline := Balance{"cup_m": d("10.25")}
	dates := []string{"20260102"}
	restock := DailySeries{"20260102": {"cup_m": d("0.33")}}
	deduction := DailySeries{"20260102": {"cup_m": d("0.58")}}

	got := Replay(catalog, baseline, dates, restock, deduction)

	if !got["cup_m"].Equal(d("10")) {
		t.Fatalf("cup_m = %s, want exact 10 (10.25+0.33-0.58)", got["cup_m"])
	}
}

func TestDeductionForDay_ManyToMany(t *testing.T) {
	catalog := []model.SupplyItemDefinition{
		{ItemKey: "cup_m", DeductionKeys: []string{"coffee_m", "latte_m"}},
		{ItemKey: "lid_m", DeductionKeys: []string{"coffee_m", "latte_m"}},
		{ItemKey: "bowl", DeductionKeys: []string{"don_a"}},
	}
	consumption := map[string]decimal.Decimal{
		"coffee_m": d("12"),
		"latte_m":  d("8"),
		"don_a":    d("5"),
		"unmapped": d("99"),
	}

	got := DeductionForDay(catalog, consumption)

	if !got["cup_m"].Equal(d("20")) {
		t.Fatalf("cup_m deduction = %s, want 20", got["cup_m"])
	}
	// 同じ商品キーが複数品目を消費する
	if !got["lid_m"].Equal(d("20")) {
		t.Fatalf("lid_m deduction = %s, want 20", got["lid_m"])
	}
	if !got["bowl"].Equal(d("5")) {
		t.Fatalf("bowl deduction = %s, want 5", got["bowl"])
	}
}
