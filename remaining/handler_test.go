package remaining

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"shizai/calendar"
	"shizai/config"
	"shizai/mappers"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	// :memory: はコネクションごとに別DBになるため1本に固定する
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schemaBytes, err := os.ReadFile("../schema.sql")
	if err != nil {
		t.Fatalf("failed to read schema.sql: %v", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

func mustExec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

// 基準日翌日に入庫20・払出30、以降イベントなし、本日の払出5。
func seedSingleZoneStore(t *testing.T, db *sqlx.DB) {
	t.Helper()
	baseDate := config.DefaultBaseDate
	day1, err := calendar.AddDays(baseDate, 1)
	if err != nil {
		t.Fatal(err)
	}

	mustExec(t, db, `INSERT INTO stores (store_id, store_name) VALUES ('S001', 'テスト店')`)
	mustExec(t, db, `INSERT INTO supply_items (item_key, item_name, unit_name, sort_order) VALUES ('cup_m', 'Mカップ', '個', 1)`)
	mustExec(t, db, `INSERT INTO supply_deduction_keys (item_key, deduction_key) VALUES ('cup_m', 'coffee_m')`)

	mustExec(t, db, `INSERT INTO baseline_snapshots (store_id, base_date, zone, item_key, quantity) VALUES ('S001', ?, '', 'cup_m', 100)`, baseDate)
	mustExec(t, db, `INSERT INTO restock_events (store_id, entry_date, zone, item_key, restock_qty) VALUES ('S001', ?, '', 'cup_m', 20)`, day1)
	mustExec(t, db, `INSERT INTO consumption_events (store_id, sales_date, zone, product_key, quantity) VALUES ('S001', ?, '', 'coffee_m', 30)`, day1)
	mustExec(t, db, `INSERT INTO consumption_events (store_id, sales_date, zone, product_key, quantity) VALUES ('S001', ?, '', 'coffee_m', 5)`, calendar.Today())
}

func getView(t *testing.T, db *sqlx.DB, url string) mappers.RemainingView {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	GetRemainingDataHandler(db)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, body = %s", url, rec.Code, rec.Body.String())
	}
	var view mappers.RemainingView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	return view
}

func TestGetRemainingData_SingleStore(t *testing.T) {
	db := newTestDB(t)
	seedSingleZoneStore(t, db)

	view := getView(t, db, "/api/remaining/data?storeId=S001")

	if view.Incomplete {
		t.Fatal("view unexpectedly incomplete")
	}
	if view.Merged {
		t.Fatal("store without zones must not be a merged view")
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}

	item := view.Items[0]
	// 100 + 20 - 30 = 90 (基準日翌日以降イベントなしで持ち越し)
	if !item.YesterdayRemaining.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("yesterdayRemaining = %s, want 90", item.YesterdayRemaining)
	}
	if !item.TodayDeduction.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("todayDeduction = %s, want 5", item.TodayDeduction)
	}
	// ドラフト未保存: remaining = 90 + 0 - 5
	if !item.Remaining.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("remaining = %s, want 85", item.Remaining)
	}
}

func TestSaveRemaining_PersistsAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedSingleZoneStore(t, db)

	payload := `{"storeId":"S001","zone":"","entries":[{"itemKey":"cup_m","restockDraft":"15"}]}`

	for i := 0; i < 2; i++ { // 同じ保存を2回
		req := httptest.NewRequest(http.MethodPost, "/api/remaining/save", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		SaveRemainingHandler(db)(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("save attempt %d status = %d, body = %s", i+1, rec.Code, rec.Body.String())
		}
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM restock_events WHERE entry_date = ?`, calendar.Today()); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row for today after replayed save, got %d", count)
	}

	var row struct {
		RestockQty   decimal.Decimal     `db:"restock_qty"`
		RemainingQty decimal.NullDecimal `db:"remaining_qty"`
	}
	err := db.Get(&row, `SELECT restock_qty, remaining_qty FROM restock_events WHERE entry_date = ?`, calendar.Today())
	if err != nil {
		t.Fatal(err)
	}
	if !row.RestockQty.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("restock_qty = %s, want 15", row.RestockQty)
	}
	// 90 + 15 - 5 = 100 (小数1桁丸めで保存)
	if !row.RemainingQty.Valid || !row.RemainingQty.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("remaining_qty = %v, want 100", row.RemainingQty)
	}

	// 保存後の画面はドラフトとして保存値を返す
	view := getView(t, db, "/api/remaining/data?storeId=S001")
	if view.Items[0].RestockDraft != "15" {
		t.Fatalf("restockDraft = %q, want \"15\"", view.Items[0].RestockDraft)
	}
	if !view.Items[0].Remaining.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("remaining = %s, want 100", view.Items[0].Remaining)
	}
}

func TestSaveRemaining_InvalidDraftCoercedToZero(t *testing.T) {
	db := newTestDB(t)
	seedSingleZoneStore(t, db)

	payload := `{"storeId":"S001","zone":"","entries":[{"itemKey":"cup_m","restockDraft":"abc"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/remaining/save", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	SaveRemainingHandler(db)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var qty decimal.Decimal
	err := db.Get(&qty, `SELECT restock_qty FROM restock_events WHERE entry_date = ?`, calendar.Today())
	if err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.Zero) {
		t.Fatalf("restock_qty = %s, want 0 for invalid draft", qty)
	}
}

// 過去日の参考残数を壊しても画面の再構築値は変わらない。
// 再生は restock_qty と消費イベントしか読まない。
func TestGetRemainingData_IgnoresStoredRemaining(t *testing.T) {
	db := newTestDB(t)
	seedSingleZoneStore(t, db)

	before := getView(t, db, "/api/remaining/data?storeId=S001")

	mustExec(t, db, `UPDATE restock_events SET remaining_qty = -9999`)

	after := getView(t, db, "/api/remaining/data?storeId=S001")
	if !after.Items[0].YesterdayRemaining.Equal(before.Items[0].YesterdayRemaining) {
		t.Fatalf("stored remaining_qty contaminated the replay: %s vs %s",
			before.Items[0].YesterdayRemaining, after.Items[0].YesterdayRemaining)
	}
}

func seedTwoZoneStore(t *testing.T, db *sqlx.DB) {
	t.Helper()
	baseDate := config.DefaultBaseDate
	day1, err := calendar.AddDays(baseDate, 1)
	if err != nil {
		t.Fatal(err)
	}

	mustExec(t, db, `INSERT INTO stores (store_id, store_name) VALUES ('S002', '2区画店')`)
	mustExec(t, db, `INSERT INTO store_zones (store_id, zone_code, zone_name) VALUES ('S002', 'kitchen', 'キッチン'), ('S002', 'floor', 'フロア')`)
	mustExec(t, db, `INSERT INTO supply_items (item_key, item_name, unit_name, sort_order) VALUES ('cup_m', 'Mカップ', '個', 1)`)
	mustExec(t, db, `INSERT INTO supply_deduction_keys (item_key, deduction_key) VALUES ('cup_m', 'coffee_m')`)

	mustExec(t, db, `INSERT INTO baseline_snapshots (store_id, base_date, zone, item_key, quantity) VALUES ('S002', ?, 'kitchen', 'cup_m', 100)`, baseDate)
	mustExec(t, db, `INSERT INTO baseline_snapshots (store_id, base_date, zone, item_key, quantity) VALUES ('S002', ?, 'floor', 'cup_m', 50)`, baseDate)
	mustExec(t, db, `INSERT INTO restock_events (store_id, entry_date, zone, item_key, restock_qty) VALUES ('S002', ?, 'kitchen', 'cup_m', 20)`, day1)
	mustExec(t, db, `INSERT INTO consumption_events (store_id, sales_date, zone, product_key, quantity) VALUES ('S002', ?, 'floor', 'coffee_m', 10)`, day1)
}

func TestGetRemainingData_MergedView(t *testing.T) {
	db := newTestDB(t)
	seedTwoZoneStore(t, db)

	view := getView(t, db, "/api/remaining/data?storeId=S002")
	if !view.Merged {
		t.Fatal("expected merged view for two-zone store with no zone selected")
	}
	// (100+20) + (50-10) = 160
	if !view.Items[0].YesterdayRemaining.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("merged yesterdayRemaining = %s, want 160", view.Items[0].YesterdayRemaining)
	}

	// 区画を選べば単独ビュー
	single := getView(t, db, "/api/remaining/data?storeId=S002&zone=kitchen")
	if single.Merged {
		t.Fatal("zone-selected view must not be merged")
	}
	if !single.Items[0].YesterdayRemaining.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("kitchen yesterdayRemaining = %s, want 120", single.Items[0].YesterdayRemaining)
	}
}

func TestSaveRemaining_MergedViewRejected(t *testing.T) {
	db := newTestDB(t)
	seedTwoZoneStore(t, db)

	payload := `{"storeId":"S002","zone":"","entries":[{"itemKey":"cup_m","restockDraft":"5"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/remaining/save", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	SaveRemainingHandler(db)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("merged-view save status = %d, want 400", rec.Code)
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM restock_events WHERE entry_date = ?`, calendar.Today()); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("merged-view save must not write, found %d rows", count)
	}
}
