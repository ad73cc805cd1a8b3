package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedSalesRecord はPOS売上CSVの1行です。Quantity は店内数量と
// デリバリー数量を合算した値で、台帳にはこの1本の数値だけが渡ります。
type ParsedSalesRecord struct {
	SalesDate  string
	StoreID    string
	Zone       string
	ProductKey string
	Quantity   decimal.Decimal
}

// ParseSalesCSV はShift-JISのPOS売上CSVを解析します。
// 必須列: 営業日, 店舗コード, 商品キー, 店内数量, デリバリー数量。
// ゾーン列は任意で、無い行は店舗全体 ("") として扱います。
// 壊れた行は警告ログを出してスキップします (ファイル全体は落とさない)。
func ParseSalesCSV(r io.Reader) ([]ParsedSalesRecord, error) {
	reader := csv.NewReader(SkipBOM(ShiftJISReader(r)))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSVファイルが空です")
	}
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダーの読み取りに失敗: %w", err)
	}

	requiredHeaders := []string{"営業日", "店舗コード", "商品キー", "店内数量", "デリバリー数量"}
	colIndex, err := getColIndex(header, requiredHeaders)
	if err != nil {
		return nil, err
	}
	idxZone, hasZone := colIndex["ゾーン"]

	var records []ParsedSalesRecord
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: CSV %d行目の読み取りエラー (スキップ): %v", line, err)
			continue
		}

		date, err := normalizeDate(rec[colIndex["営業日"]])
		if err != nil {
			log.Printf("WARN: CSV %d行目: %v (スキップ)", line, err)
			continue
		}

		storeID := strings.TrimSpace(rec[colIndex["店舗コード"]])
		productKey := strings.TrimSpace(rec[colIndex["商品キー"]])
		if storeID == "" || productKey == "" {
			log.Printf("WARN: CSV %d行目: 店舗コードまたは商品キーが空 (スキップ)", line)
			continue
		}

		eatIn, err := parseQty(rec[colIndex["店内数量"]])
		if err != nil {
			log.Printf("WARN: CSV %d行目: 店内数量が不正: %v (スキップ)", line, err)
			continue
		}
		delivery, err := parseQty(rec[colIndex["デリバリー数量"]])
		if err != nil {
			log.Printf("WARN: CSV %d行目: デリバリー数量が不正: %v (スキップ)", line, err)
			continue
		}

		zone := ""
		if hasZone && idxZone < len(rec) {
			zone = strings.TrimSpace(rec[idxZone])
		}

		records = append(records, ParsedSalesRecord{
			SalesDate:  date,
			StoreID:    storeID,
			Zone:       zone,
			ProductKey: productKey,
			Quantity:   eatIn.Add(delivery),
		})
	}
	return records, nil
}

func parseQty(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
