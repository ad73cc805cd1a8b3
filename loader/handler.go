package loader

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
)

// ReloadMastersHandler はマスターCSV (SOUフォルダ) を再取込します。
// 品目カタログや店舗構成を差し替えたあと、再起動せずに反映するための
// エンドポイントです。
func ReloadMastersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		log.Println("Reloading master CSVs...")
		if err := LoadSupplyCatalogCSV(db, supplyCatalogPath); err != nil {
			log.Printf("Error reloading supply catalog: %v", err)
			http.Error(w, "資材マスターの再取込に失敗しました: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := LoadStoreMasterCSV(db, storeMasterPath); err != nil {
			log.Printf("Error reloading store master: %v", err)
			http.Error(w, "店舗マスターの再取込に失敗しました: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "マスターを再取込しました。"})
	}
}
