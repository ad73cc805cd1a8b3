package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedStocktakeRecord は実地棚卸CSVの1行です。
type ParsedStocktakeRecord struct {
	StoreID  string
	Zone     string
	ItemKey  string
	Quantity decimal.Decimal
}

// ParseStocktakeCSV は実地棚卸CSV (UTF-8, BOM許容) を解析します。
// 必須列: 店舗コード, 品目キー, 数量。任意列: ゾーン。
// Excelからの書き出しを想定しているためShift-JIS変換は行いません。
func ParseStocktakeCSV(r io.Reader) ([]ParsedStocktakeRecord, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSVファイルが空です")
	}
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダーの読み取りに失敗: %w", err)
	}

	colIndex, err := getColIndex(header, []string{"店舗コード", "品目キー", "数量"})
	if err != nil {
		return nil, err
	}
	idxZone, hasZone := colIndex["ゾーン"]

	var records []ParsedStocktakeRecord
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

		storeID := strings.TrimSpace(rec[colIndex["店舗コード"]])
		itemKey := strings.TrimSpace(rec[colIndex["品目キー"]])
		if storeID == "" || itemKey == "" {
			continue
		}

		qty, err := parseQty(rec[colIndex["数量"]])
		if err != nil {
			log.Printf("WARN: CSV %d行目: 数量が不正: %v (スキップ)", line, err)
			continue
		}

		record := ParsedStocktakeRecord{
			StoreID:  storeID,
			ItemKey:  itemKey,
			Quantity: qty,
		}
		if hasZone && idxZone < len(rec) {
			record.Zone = strings.TrimSpace(rec[idxZone])
		}
		records = append(records, record)
	}
	return records, nil
}
