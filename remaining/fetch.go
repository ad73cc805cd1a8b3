package remaining

import (
	"fmt"
	"sync"

	"shizai/database"
	"shizai/ledger"
	"shizai/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// zoneData は1区画分の再構築入力一式です。
type zoneData struct {
	zone             string
	baseline         map[string]decimal.Decimal
	restock          map[string]map[string]decimal.Decimal
	consumption      map[string]map[string]decimal.Decimal
	todayConsumption map[string]decimal.Decimal
	todayRestock     map[string]decimal.Decimal
}

// fetchZoneData は1区画分の読み込みを並行して行います。
// どれか1本でも失敗したら全体を失敗として返します。欠けた読み込みで
// 中途半端なチェーンを組むことは許されません。
func fetchZoneData(db *sqlx.DB, storeID, zone, baseDate, yesterday, today string) (zoneData, error) {
	data := zoneData{zone: zone}

	chainStart, err := nextDay(baseDate)
	if err != nil {
		return zoneData{}, err
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)

	wg.Add(5)
	go func() {
		defer wg.Done()
		data.baseline, errs[0] = database.GetBaselineMap(db, storeID, zone, baseDate)
	}()
	go func() {
		defer wg.Done()
		data.restock, errs[1] = database.GetRestockByRange(db, storeID, zone, chainStart, yesterday)
	}()
	go func() {
		defer wg.Done()
		data.consumption, errs[2] = database.GetConsumptionByRange(db, storeID, zone, chainStart, yesterday)
	}()
	go func() {
		defer wg.Done()
		data.todayConsumption, errs[3] = database.GetConsumptionForDate(db, storeID, zone, today)
	}()
	go func() {
		defer wg.Done()
		data.todayRestock, errs[4] = database.GetRestockForDate(db, storeID, zone, today)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return zoneData{}, fmt.Errorf("zone %q load failed: %w", zone, err)
		}
	}
	return data, nil
}

// fetchAllZones は対象区画をすべて並行して読み込みます。
func fetchAllZones(db *sqlx.DB, storeID string, zones []string, baseDate, yesterday, today string) ([]zoneData, error) {
	results := make([]zoneData, len(zones))
	errs := make([]error, len(zones))

	var wg sync.WaitGroup
	for i, zone := range zones {
		wg.Add(1)
		go func(i int, zone string) {
			defer wg.Done()
			results[i], errs[i] = fetchZoneData(db, storeID, zone, baseDate, yesterday, today)
		}(i, zone)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// computeYesterday は読み込んだ区画データ群から昨日時点の残数を計算します。
// 複数区画は「区画ごとに再生してから合算」(chain-then-sum) です。
func computeYesterday(catalog []model.SupplyItemDefinition, data []zoneData, baseDate, yesterday string) (ledger.Balance, error) {
	perZone := make([]ledger.Balance, 0, len(data))
	for _, zd := range data {
		balance, err := ledger.ReplayTo(
			catalog,
			ledger.Balance(zd.baseline),
			baseDate,
			yesterday,
			ledger.SeriesFrom(zd.restock),
			ledger.DeductionByDate(catalog, zd.consumption),
		)
		if err != nil {
			return nil, err
		}
		perZone = append(perZone, balance)
	}
	return ledger.SumBalances(perZone...), nil
}

// computeTodayDeduction は本日分の払出合計を区画横断で計算します。
func computeTodayDeduction(catalog []model.SupplyItemDefinition, data []zoneData) ledger.Balance {
	perZone := make([]ledger.Balance, 0, len(data))
	for _, zd := range data {
		perZone = append(perZone, ledger.DeductionForDay(catalog, zd.todayConsumption))
	}
	return ledger.SumBalances(perZone...)
}

// mergeTodayRestock は本日の保存済み入庫数を区画横断で合算します。
// 統合ビューの初期ドラフト表示に使います。
func mergeTodayRestock(data []zoneData) map[string]decimal.Decimal {
	merged := make(map[string]decimal.Decimal)
	for _, zd := range data {
		for key, q := range zd.todayRestock {
			merged[key] = merged[key].Add(q)
		}
	}
	return merged
}
