package ledger

import (
	"fmt"
	"math/rand"
	"testing"

	"shizai/model"

	"github.com/shopspring/decimal"
)

func TestSumBalances_TwoZones(t *testing.T) {
	catalog := testCatalog()
	dates := []string{"20260102", "20260103"}

	kitchen := Replay(catalog, Balance{"cup_m": d("100")}, dates,
		DailySeries{"20260102": {"cup_m": d("20")}},
		DailySeries{"20260103": {"cup_m": d("15")}})
	floor := Replay(catalog, Balance{"cup_m": d("50")}, dates,
		DailySeries{"20260103": {"cup_m": d("5")}},
		DailySeries{"20260102": {"cup_m": d("10")}})

	merged := SumBalances(kitchen, floor)

	// (100+20-15) + (50+5-10) = 105 + 45 = 150
	if !merged["cup_m"].Equal(d("150")) {
		t.Fatalf("merged cup_m = %s, want 150", merged["cup_m"])
	}
}

func TestSumBalances_EmptyZoneContributesZero(t *testing.T) {
	catalog := testCatalog()
	dates := []string{"20260102"}

	kitchen := Replay(catalog, Balance{"cup_m": d("30")}, dates, nil, nil)
	empty := Replay(catalog, Balance{}, dates, nil, nil)

	merged := SumBalances(kitchen, empty)
	if !merged["cup_m"].Equal(d("30")) {
		t.Fatalf("merged cup_m = %s, want 30", merged["cup_m"])
	}
}

// randomSeries は乱数から日次系列を生成します。小数・ゼロ日・欠損日を混ぜます。
func randomSeries(rng *rand.Rand, catalog []model.SupplyItemDefinition, dates []string) DailySeries {
	series := make(DailySeries)
	for _, date := range dates {
		if rng.Intn(4) == 0 {
			continue // イベントの無い日
		}
		day := make(Balance)
		for _, item := range catalog {
			if rng.Intn(3) == 0 {
				continue // イベントの無い品目
			}
			day[item.ItemKey] = decimal.NewFromInt(int64(rng.Intn(400))).Div(decimal.NewFromInt(10))
		}
		series[date] = day
	}
	return series
}

// chain-then-sum と sum-then-chain の同値性。漸化式が線形であることに
// 依存しているので、実装を変えた場合もこのプロパティは守ること。
func TestMergedView_SumChainEquivalence(t *testing.T) {
	catalog := testCatalog()
	rng := rand.New(rand.NewSource(20260901))

	for trial := 0; trial < 50; trial++ {
		t.Run(fmt.Sprintf("trial_%02d", trial), func(t *testing.T) {
			dates, err := ChainDates("20260101", "20260120")
			if err != nil {
				t.Fatal(err)
			}

			baseA := Balance{"cup_m": d("100"), "bowl": decimal.NewFromInt(int64(rng.Intn(100)))}
			baseB := Balance{"cup_m": d("50")}
			restockA := randomSeries(rng, catalog, dates)
			restockB := randomSeries(rng, catalog, dates)
			deductA := randomSeries(rng, catalog, dates)
			deductB := randomSeries(rng, catalog, dates)

			// 戦略1: 区画ごとに再生してから合算
			chainThenSum := SumBalances(
				Replay(catalog, baseA, dates, restockA, deductA),
				Replay(catalog, baseB, dates, restockB, deductB),
			)

			// 戦略2: 入力系列を合算してから1本のチェーンを再生
			sumThenChain := Replay(catalog,
				SumBalances(baseA, baseB),
				dates,
				MergeSeries(restockA, restockB),
				MergeSeries(deductA, deductB),
			)

			for _, item := range catalog {
				a := chainThenSum[item.ItemKey]
				b := sumThenChain[item.ItemKey]
				if !a.Equal(b) {
					t.Fatalf("strategies disagree for %s: chain-then-sum=%s sum-then-chain=%s",
						item.ItemKey, a, b)
				}
			}
		})
	}
}

// 同値性は範囲内のすべての日付で成立する (最終日だけではない)。
func TestMergedView_EquivalenceEveryDate(t *testing.T) {
	catalog := testCatalog()
	rng := rand.New(rand.NewSource(42))

	dates, err := ChainDates("20260101", "20260110")
	if err != nil {
		t.Fatal(err)
	}
	baseA := Balance{"cup_m": d("10")}
	baseB := Balance{"cup_m": d("20"), "bowl": d("5")}
	restockA := randomSeries(rng, catalog, dates)
	restockB := randomSeries(rng, catalog, dates)
	deductA := randomSeries(rng, catalog, dates)
	deductB := randomSeries(rng, catalog, dates)

	for i := range dates {
		prefix := dates[:i+1]
		chainThenSum := SumBalances(
			Replay(catalog, baseA, prefix, restockA, deductA),
			Replay(catalog, baseB, prefix, restockB, deductB),
		)
		sumThenChain := Replay(catalog,
			SumBalances(baseA, baseB), prefix,
			MergeSeries(restockA, restockB),
			MergeSeries(deductA, deductB),
		)
		for _, item := range catalog {
			if !chainThenSum[item.ItemKey].Equal(sumThenChain[item.ItemKey]) {
				t.Fatalf("strategies disagree for %s on %s", item.ItemKey, dates[i])
			}
		}
	}
}
