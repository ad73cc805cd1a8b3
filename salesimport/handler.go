package salesimport

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"shizai/config"
	"shizai/database"
	"shizai/model"
	"shizai/parsers"

	"github.com/jmoiron/sqlx"
)

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	log.Println("Error response:", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"results": []interface{}{},
	})
}

// UploadSalesHandler はPOS売上CSVを取り込み、消費イベントとして登録します。
// multipart/form-data なら手動アップロード (複数ファイル対応)、
// それ以外は設定フォルダからの自動取込です。
func UploadSalesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var allResults []map[string]interface{}
		totalInserted := 0

		if strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			log.Println("Processing manual sales file upload...")
			err := r.ParseMultipartForm(32 << 20) // 32MB
			if err != nil {
				respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
				return
			}
			defer r.MultipartForm.RemoveAll()

			for _, fileHeader := range r.MultipartForm.File["file"] {
				log.Printf("Processing file: %s", fileHeader.Filename)
				fileResult := map[string]interface{}{"filename": fileHeader.Filename}

				file, openErr := fileHeader.Open()
				if openErr != nil {
					log.Printf("Failed to open uploaded file %s: %v", fileHeader.Filename, openErr)
					fileResult["error"] = fmt.Sprintf("Failed to open file: %v", openErr)
					allResults = append(allResults, fileResult)
					continue
				}

				inserted, procErr := ProcessSalesFile(db, file)
				file.Close()

				if procErr != nil {
					log.Printf("Failed to process sales file %s: %v", fileHeader.Filename, procErr)
					fileResult["error"] = procErr.Error()
					allResults = append(allResults, fileResult)
					continue
				}

				fileResult["success"] = true
				fileResult["records_inserted"] = inserted
				allResults = append(allResults, fileResult)
				totalInserted += inserted
			}

		} else {
			log.Println("Processing automatic sales file import...")
			cfg, cfgErr := config.LoadConfig()
			if cfgErr != nil {
				respondJSONError(w, "設定ファイルの読み込みに失敗: "+cfgErr.Error(), http.StatusInternalServerError)
				return
			}
			if cfg.SalesFolderPath == "" {
				respondJSONError(w, "売上取込フォルダパス(salesFolderPath)が設定されていません。", http.StatusBadRequest)
				return
			}

			files, globErr := filepath.Glob(filepath.Join(cfg.SalesFolderPath, "*.csv"))
			if globErr != nil {
				respondJSONError(w, "売上フォルダの走査に失敗: "+globErr.Error(), http.StatusInternalServerError)
				return
			}
			if len(files) == 0 {
				respondJSONError(w, "売上フォルダにCSVファイルがありません: "+cfg.SalesFolderPath, http.StatusBadRequest)
				return
			}

			for _, path := range files {
				log.Printf("Importing sales file: %s", path)
				fileResult := map[string]interface{}{"filename": path}

				f, fErr := os.Open(path)
				if fErr != nil {
					fileResult["error"] = fmt.Sprintf("ファイルを開けませんでした: %v", fErr)
					allResults = append(allResults, fileResult)
					continue
				}
				inserted, procErr := ProcessSalesFile(db, f)
				f.Close()

				if procErr != nil {
					fileResult["error"] = procErr.Error()
					allResults = append(allResults, fileResult)
					continue
				}
				fileResult["success"] = true
				fileResult["records_inserted"] = inserted
				allResults = append(allResults, fileResult)
				totalInserted += inserted
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":          fmt.Sprintf("%d件の消費イベントを登録しました。", totalInserted),
			"records_inserted": totalInserted,
			"results":          allResults,
		})
	}
}

// ProcessSalesFile は売上CSVを1ファイル分取り込みます。
// 同一自然キー (店舗, 営業日, 区画, 商品キー) の既存行は最新値で
// 上書きします。同じ日のデータを再取込しても二重計上になりません。
func ProcessSalesFile(db *sqlx.DB, file io.Reader) (int, error) {
	parsed, err := parsers.ParseSalesCSV(file)
	if err != nil {
		return 0, fmt.Errorf("売上CSVの解析に失敗しました: %w", err)
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("トランザクションの開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range parsed {
		event := model.ConsumptionRecord{
			StoreID:    rec.StoreID,
			SalesDate:  rec.SalesDate,
			Zone:       rec.Zone,
			ProductKey: rec.ProductKey,
			Quantity:   rec.Quantity,
		}
		if err := database.UpsertConsumptionInTx(tx, event); err != nil {
			return 0, fmt.Errorf("消費イベントの登録に失敗 (商品: %s): %w", rec.ProductKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return len(parsed), nil
}
