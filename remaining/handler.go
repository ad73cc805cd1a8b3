package remaining

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"shizai/calendar"
	"shizai/config"
	"shizai/database"
	"shizai/ledger"
	"shizai/mappers"
	"shizai/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	log.Println("Error response:", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func nextDay(date string) (string, error) {
	return calendar.AddDays(date, 1)
}

// resolveTargetZones は対象区画と統合ビューかどうかを決めます。
//   - 区画指定あり → その区画のみ (保存可)
//   - 区画なし・店舗に区画が2つ以上 → 全区画の統合ビュー (読み取り専用)
//   - 区画なし・店舗に区画が1つ → その区画 (保存可)
//   - 区画なし・店舗に区画なし → 店舗全体 zone="" (保存可)
func resolveTargetZones(zones []model.Zone, selected string) (targets []string, merged bool) {
	if selected != "" {
		return []string{selected}, false
	}
	switch len(zones) {
	case 0:
		return []string{""}, false
	case 1:
		return []string{zones[0].ZoneCode}, false
	default:
		targets = make([]string, len(zones))
		for i, z := range zones {
			targets[i] = z.ZoneCode
		}
		return targets, true
	}
}

// GetRemainingDataHandler は残数入力画面の表示データを返します。
// 基準日から昨日までのチェーンを毎回ゼロから再生します。保存済みの
// 参考残数は一切信用しません (過去日の訂正を自動で反映するため)。
func GetRemainingDataHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		storeID := q.Get("storeId")
		if storeID == "" {
			http.Error(w, "storeId is a required parameter", http.StatusBadRequest)
			return
		}
		selectedZone := q.Get("zone")

		cfg, err := config.LoadConfig()
		if err != nil {
			respondJSONError(w, "設定ファイルの読み込みに失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}

		catalog, err := database.GetSupplyCatalog(db)
		if err != nil {
			respondJSONError(w, "資材カタログの取得に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}
		zones, err := database.GetZonesByStore(db, storeID)
		if err != nil {
			respondJSONError(w, "区画一覧の取得に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}

		targets, merged := resolveTargetZones(zones, selectedZone)
		today := calendar.Today()
		yesterday := calendar.Yesterday()

		view := mappers.RemainingView{
			StoreID: storeID,
			Date:    today,
			Zone:    selectedZone,
			Merged:  merged,
			Zones:   zones,
		}

		data, err := fetchAllZones(db, storeID, targets, cfg.BaseDate, yesterday, today)
		if err != nil {
			// 欠けた読み込みから中途半端なチェーンを計算してはいけない。
			// ゼロ埋めの参考表示に落とし、保存は不可にする。
			log.Printf("WARN: partial fetch failure for store %s: %v", storeID, err)
			view.Incomplete = true
			view.Items = mappers.ZeroItems(catalog)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(view)
			return
		}

		yesterdayBalance, err := computeYesterday(catalog, data, cfg.BaseDate, yesterday)
		if err != nil {
			respondJSONError(w, "残数の再構築に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}
		todayDeduction := computeTodayDeduction(catalog, data)
		drafts := mergeTodayRestock(data)
		remaining := ledger.LiveRemaining(catalog, yesterdayBalance, drafts, todayDeduction)

		view.Items = mappers.ToRemainingItems(catalog, yesterdayBalance, drafts, todayDeduction, remaining)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
	}
}

// SaveEntryInput は保存リクエストの1品目分です。ドラフトは文字列のまま
// 受け取り、サーバー側で数量へ変換します。
type SaveEntryInput struct {
	ItemKey      string `json:"itemKey"`
	RestockDraft string `json:"restockDraft"`
}

// SavePayload は残数入力画面の保存リクエストです。
type SavePayload struct {
	StoreID string           `json:"storeId"`
	Zone    string           `json:"zone"`
	Entries []SaveEntryInput `json:"entries"`
}

// SaveRemainingHandler は本日の入庫数と参考残数を保存します。
// 参考残数はサーバー側でチェーンを再生して計算し直します。クライアントの
// 表示値は信用しません。統合ビューへの保存はできません。
func SaveRemainingHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload SavePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondJSONError(w, "リクエストが不正です。", http.StatusBadRequest)
			return
		}
		if payload.StoreID == "" {
			respondJSONError(w, "storeId is required", http.StatusBadRequest)
			return
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			respondJSONError(w, "設定ファイルの読み込みに失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}

		catalog, err := database.GetSupplyCatalog(db)
		if err != nil {
			respondJSONError(w, "資材カタログの取得に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}
		zones, err := database.GetZonesByStore(db, payload.StoreID)
		if err != nil {
			respondJSONError(w, "区画一覧の取得に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}

		targets, merged := resolveTargetZones(zones, payload.Zone)
		if merged {
			respondJSONError(w, "統合ビューは読み取り専用です。保存する区画を選択してください。", http.StatusBadRequest)
			return
		}
		targetZone := targets[0]

		today := calendar.Today()
		yesterday := calendar.Yesterday()

		// 保存前にサーバー側で再構築する。読み込みに失敗したら保存しない。
		data, err := fetchZoneData(db, payload.StoreID, targetZone, cfg.BaseDate, yesterday, today)
		if err != nil {
			respondJSONError(w, "データの読み込みに失敗したため保存できません。再読込してください: "+err.Error(), http.StatusConflict)
			return
		}

		yesterdayBalance, err := computeYesterday(catalog, []zoneData{data}, cfg.BaseDate, yesterday)
		if err != nil {
			respondJSONError(w, "残数の再構築に失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}
		todayDeduction := ledger.DeductionForDay(catalog, data.todayConsumption)

		drafts := make(map[string]decimal.Decimal, len(payload.Entries))
		for _, entry := range payload.Entries {
			qty, ok := ledger.ParseDraftQty(entry.RestockDraft)
			if !ok {
				log.Printf("WARN: invalid restock draft %q for %s, treating as 0", entry.RestockDraft, entry.ItemKey)
			}
			drafts[entry.ItemKey] = qty
		}

		remaining := ledger.LiveRemaining(catalog, yesterdayBalance, drafts, todayDeduction)

		tx, err := db.Beginx()
		if err != nil {
			respondJSONError(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		// 品目カタログ全体を1行ずつ upsert する。ドラフト未入力は 0。
		// 参考残数は小数1桁に丸めて保存する (丸めは永続化境界のみ)。
		for _, item := range catalog {
			draft := decimal.Zero
			if d, ok := drafts[item.ItemKey]; ok {
				draft = d
			}
			rec := model.RestockRecord{
				StoreID:    payload.StoreID,
				EntryDate:  today,
				Zone:       targetZone,
				ItemKey:    item.ItemKey,
				RestockQty: draft,
				RemainingQty: decimal.NullDecimal{
					Decimal: remaining.Get(item.ItemKey).Round(1),
					Valid:   true,
				},
			}
			if err := database.UpsertRestockWithRemainingInTx(tx, rec); err != nil {
				respondJSONError(w, "保存に失敗しました: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			respondJSONError(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":         fmt.Sprintf("%d品目を保存しました。", len(catalog)),
			"savedCount":      len(catalog),
			"remainingValues": remaining,
		})
	}
}
