package automation

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"shizai/config"
	"shizai/salesimport"

	"github.com/jmoiron/sqlx"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// DownloadSalesHandler はPOSポータルから売上CSVを自動受信し、
// そのまま消費イベントとして取り込みます。
func DownloadSalesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			writeJSONError(w, "設定の読み込みに失敗しました: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if cfg.PortalUserID == "" || cfg.PortalPassword == "" {
			writeJSONError(w, "POSポータルのIDまたはパスワードが設定されていません。設定画面で入力してください。", http.StatusBadRequest)
			return
		}

		saveDir := cfg.SalesFolderPath
		if saveDir == "" {
			saveDir = os.TempDir()
			log.Printf("売上保存先設定がないため、一時フォルダを使用します: %s", saveDir)
		}

		log.Println("Starting POS portal automation...")
		filePath, err := DownloadSalesCSV(cfg.PortalUserID, cfg.PortalPassword, saveDir)

		if err != nil {
			log.Printf("Automation Error: %v", err)
			writeJSONError(w, "自動受信エラー: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if filePath == "NO_DATA" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "no_data",
				"message": "未受信のデータはありませんでした。",
			})
			return
		}

		log.Printf("Importing downloaded file via salesimport.ProcessSalesFile: %s", filePath)
		file, err := os.Open(filePath)
		if err != nil {
			writeJSONError(w, "ダウンロードファイルのオープンに失敗: "+err.Error(), http.StatusInternalServerError)
			return
		}
		defer file.Close()

		inserted, err := salesimport.ProcessSalesFile(db, file)
		if err != nil {
			writeJSONError(w, "売上取込処理でエラー: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "success",
			"message":  fmt.Sprintf("ダウンロード＆登録完了: %d件", inserted),
			"filePath": filePath,
			"records":  inserted,
		})
	}
}
