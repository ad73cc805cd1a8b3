package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"shizai/model"
)

// ParseSupplyCatalogCSV は資材品目マスターCSV (Shift-JIS) を解析します。
// 必須列: 品目キー, 品目名。任意列: 単位, 表示順, 払出キー。
// 払出キー列は ";" 区切りで複数指定できます。
func ParseSupplyCatalogCSV(r io.Reader) ([]model.SupplyItemDefinition, error) {
	reader := csv.NewReader(SkipBOM(ShiftJISReader(r)))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSVファイルが空です")
	}
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダーの読み取りに失敗: %w", err)
	}

	colIndex, err := getColIndex(header, []string{"品目キー", "品目名"})
	if err != nil {
		return nil, err
	}
	idxUnit, hasUnit := colIndex["単位"]
	idxOrder, hasOrder := colIndex["表示順"]
	idxKeys, hasKeys := colIndex["払出キー"]

	var items []model.SupplyItemDefinition
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

		itemKey := strings.TrimSpace(rec[colIndex["品目キー"]])
		if itemKey == "" {
			continue
		}

		item := model.SupplyItemDefinition{
			ItemKey:  itemKey,
			ItemName: strings.TrimSpace(rec[colIndex["品目名"]]),
		}
		if hasUnit && idxUnit < len(rec) {
			item.UnitName = strings.TrimSpace(rec[idxUnit])
		}
		if hasOrder && idxOrder < len(rec) {
			if n, err := strconv.Atoi(strings.TrimSpace(rec[idxOrder])); err == nil {
				item.SortOrder = n
			}
		}
		if hasKeys && idxKeys < len(rec) {
			for _, key := range strings.Split(rec[idxKeys], ";") {
				key = strings.TrimSpace(key)
				if key != "" {
					item.DeductionKeys = append(item.DeductionKeys, key)
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// ParseStoreMasterCSV は店舗・区画マスターCSV (Shift-JIS) を解析します。
// 必須列: 店舗コード, 店舗名。任意列: ゾーンコード, ゾーン名。
// 同じ店舗コードの行が区画ごとに繰り返されます。ゾーンコードが空の行は
// 区画なし店舗の定義です。
func ParseStoreMasterCSV(r io.Reader) ([]model.Store, []model.Zone, error) {
	reader := csv.NewReader(SkipBOM(ShiftJISReader(r)))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("CSVファイルが空です")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("CSVヘッダーの読み取りに失敗: %w", err)
	}

	colIndex, err := getColIndex(header, []string{"店舗コード", "店舗名"})
	if err != nil {
		return nil, nil, err
	}
	idxZoneCode, hasZoneCode := colIndex["ゾーンコード"]
	idxZoneName, hasZoneName := colIndex["ゾーン名"]

	seenStores := make(map[string]bool)
	var stores []model.Store
	var zones []model.Zone
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
		if storeID == "" {
			continue
		}
		if !seenStores[storeID] {
			seenStores[storeID] = true
			stores = append(stores, model.Store{
				StoreID:   storeID,
				StoreName: strings.TrimSpace(rec[colIndex["店舗名"]]),
			})
		}

		if hasZoneCode && idxZoneCode < len(rec) {
			zoneCode := strings.TrimSpace(rec[idxZoneCode])
			if zoneCode != "" {
				zone := model.Zone{StoreID: storeID, ZoneCode: zoneCode}
				if hasZoneName && idxZoneName < len(rec) {
					zone.ZoneName = strings.TrimSpace(rec[idxZoneName])
				}
				zones = append(zones, zone)
			}
		}
	}
	return stores, zones, nil
}
