package stocktake

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"shizai/config"
	"shizai/database"
	"shizai/model"
	"shizai/parsers"

	"github.com/jmoiron/sqlx"
)

// ImportStocktakeCSVHandler は実地棚卸CSVを基準スナップショットとして
// 取り込みます。登録先の基準日は設定の BaseDate です。残数の再構築は
// 常にこのスナップショットを起点に行われます。
//
// 棚卸をやり直す場合は、先に設定画面で基準日を更新してから取り込みます
// (取り直しの頻度はチェーン長、ひいては画面表示の計算量を決めます)。
func ImportStocktakeCSVHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			http.Error(w, "設定ファイルの読み込みに失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			http.Error(w, "ファイルが指定されていません。", http.StatusBadRequest)
			return
		}

		file, err := files[0].Open()
		if err != nil {
			http.Error(w, "ファイルを開けませんでした: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		records, err := parsers.ParseStocktakeCSV(file)
		if err != nil {
			http.Error(w, "棚卸CSVの解析に失敗: "+err.Error(), http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		for _, rec := range records {
			snap := model.BaselineSnapshot{
				StoreID:  rec.StoreID,
				BaseDate: cfg.BaseDate,
				Zone:     rec.Zone,
				ItemKey:  rec.ItemKey,
				Quantity: rec.Quantity,
			}
			if err := database.UpsertBaselineInTx(tx, snap); err != nil {
				log.Printf("Error upserting baseline: %v", err)
				http.Error(w, "棚卸スナップショットの登録に失敗しました。", http.StatusInternalServerError)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		log.Printf("Stocktake imported: %d rows at base date %s", len(records), cfg.BaseDate)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":    fmt.Sprintf("%d行の棚卸を基準日 %s で登録しました。", len(records), cfg.BaseDate),
			"baseDate":   cfg.BaseDate,
			"savedCount": len(records),
		})
	}
}
