package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDraftQty(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", "0", true},
		{"  ", "0", true},
		{"15", "15", true},
		{"12.5", "12.5", true},
		{"-3", "-3", true},
		{"1,234.5", "1234.5", true},
		{"abc", "0", false},
		{"1.2.3", "0", false},
	}
	for _, tc := range cases {
		got, ok := ParseDraftQty(tc.in)
		if ok != tc.wantOK {
			t.Fatalf("ParseDraftQty(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
		}
		if !got.Equal(d(tc.want)) {
			t.Fatalf("ParseDraftQty(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestLiveRemaining(t *testing.T) {
	catalog := testCatalog()
	yesterday := Balance{"cup_m": d("80")}
	drafts := map[string]decimal.Decimal{"cup_m": d("15")}
	todayDeduction := Balance{"cup_m": d("5")}

	got := LiveRemaining(catalog, yesterday, drafts, todayDeduction)

	// 80 + 15 - 5 = 90
	if !got["cup_m"].Equal(d("90")) {
		t.Fatalf("cup_m = %s, want 90", got["cup_m"])
	}
	// ドラフト未入力の品目は 昨日残 - 本日払出
	if !got["bowl"].Equal(decimal.Zero) {
		t.Fatalf("bowl = %s, want 0", got["bowl"])
	}
}

func TestLiveRemaining_InvalidDraftCoercedToZero(t *testing.T) {
	catalog := testCatalog()
	yesterday := Balance{"cup_m": d("80")}

	draft, ok := ParseDraftQty("abc")
	if ok {
		t.Fatal("expected parse failure for \"abc\"")
	}
	drafts := map[string]decimal.Decimal{"cup_m": draft}

	got := LiveRemaining(catalog, yesterday, drafts, Balance{"cup_m": d("5")})
	if !got["cup_m"].Equal(d("75")) {
		t.Fatalf("cup_m = %s, want 75 (invalid draft treated as 0)", got["cup_m"])
	}
}
