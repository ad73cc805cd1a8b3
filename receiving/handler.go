package receiving

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"shizai/calendar"
	"shizai/database"
	"shizai/ledger"

	"github.com/jmoiron/sqlx"
)

// SaveRecordInput は納品伝票の1行です。
type SaveRecordInput struct {
	ItemKey  string `json:"itemKey"`
	Quantity string `json:"quantity"`
}

// SavePayload は納品伝票の保存リクエストです。
// EntryDate は過去日でも構いません。過去日への訂正は以後の残数再構築に
// 自動で反映されます (移行処理は不要)。
type SavePayload struct {
	StoreID   string            `json:"storeId"`
	EntryDate string            `json:"entryDate"`
	Zone      string            `json:"zone"`
	Records   []SaveRecordInput `json:"records"`
}

// SaveReceivingHandler は納品伝票を入庫イベントとして保存します。
// 同じ (店舗, 日付, 区画, 品目) への再保存は上書きです (累積しない)。
func SaveReceivingHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload SavePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.StoreID == "" {
			http.Error(w, "storeId is required", http.StatusBadRequest)
			return
		}

		entryDate := payload.EntryDate
		if entryDate == "" {
			entryDate = calendar.Today()
		}
		if _, err := calendar.Parse(entryDate); err != nil {
			http.Error(w, "entryDate must be YYYYMMDD", http.StatusBadRequest)
			return
		}
		if entryDate > calendar.Today() {
			http.Error(w, "未来日の納品は登録できません。", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		saved := 0
		for _, rec := range payload.Records {
			if rec.ItemKey == "" {
				continue
			}
			qty, ok := ledger.ParseDraftQty(rec.Quantity)
			if !ok {
				http.Error(w, fmt.Sprintf("数量が不正です (品目: %s): %q", rec.ItemKey, rec.Quantity), http.StatusBadRequest)
				return
			}
			if err := database.UpsertRestockQtyInTx(tx, payload.StoreID, entryDate, payload.Zone, rec.ItemKey, qty); err != nil {
				log.Printf("Error saving receiving record: %v", err)
				http.Error(w, "納品伝票の保存に失敗しました。", http.StatusInternalServerError)
				return
			}
			saved++
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		log.Printf("Receiving slip saved: store=%s date=%s zone=%q items=%d", payload.StoreID, entryDate, payload.Zone, saved)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":    fmt.Sprintf("%d品目の納品を登録しました。", saved),
			"savedCount": saved,
		})
	}
}
