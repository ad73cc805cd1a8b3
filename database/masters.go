package database

import (
	"fmt"

	"shizai/model"

	"github.com/jmoiron/sqlx"
)

// GetSupplyCatalog は資材品目カタログを表示順で返します。
// 各品目の払出キーもまとめて引きます。
func GetSupplyCatalog(dbtx DBTX) ([]model.SupplyItemDefinition, error) {
	var items []model.SupplyItemDefinition
	const q = `
		SELECT item_key, item_name, unit_name, sort_order
		FROM supply_items
		ORDER BY sort_order, item_key`
	if err := dbtx.Select(&items, q); err != nil {
		return nil, fmt.Errorf("failed to get supply items: %w", err)
	}

	var mappings []struct {
		ItemKey      string `db:"item_key"`
		DeductionKey string `db:"deduction_key"`
	}
	const qKeys = `
		SELECT item_key, deduction_key
		FROM supply_deduction_keys
		ORDER BY item_key, deduction_key`
	if err := dbtx.Select(&mappings, qKeys); err != nil {
		return nil, fmt.Errorf("failed to get deduction keys: %w", err)
	}

	keysByItem := make(map[string][]string)
	for _, m := range mappings {
		keysByItem[m.ItemKey] = append(keysByItem[m.ItemKey], m.DeductionKey)
	}
	for i := range items {
		items[i].DeductionKeys = keysByItem[items[i].ItemKey]
	}
	return items, nil
}

// GetAllStores は店舗マスターを返します。
func GetAllStores(dbtx DBTX) ([]model.Store, error) {
	var stores []model.Store
	const q = `SELECT store_id, store_name FROM stores ORDER BY store_id`
	if err := dbtx.Select(&stores, q); err != nil {
		return nil, fmt.Errorf("failed to get stores: %w", err)
	}
	return stores, nil
}

// GetZonesByStore は店舗の区画一覧を返します。区画の無い店舗は空列です。
func GetZonesByStore(dbtx DBTX, storeID string) ([]model.Zone, error) {
	var zones []model.Zone
	const q = `
		SELECT store_id, zone_code, zone_name
		FROM store_zones
		WHERE store_id = ?
		ORDER BY zone_code`
	if err := dbtx.Select(&zones, q, storeID); err != nil {
		return nil, fmt.Errorf("failed to get zones for store %s: %w", storeID, err)
	}
	return zones, nil
}

// UpsertSupplyItemInTx は資材品目と払出キーを登録・上書きします。
// 払出キーは品目単位で全置換します。
func UpsertSupplyItemInTx(tx *sqlx.Tx, item model.SupplyItemDefinition) error {
	const q = `
		INSERT INTO supply_items (item_key, item_name, unit_name, sort_order)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_key) DO UPDATE SET
			item_name = excluded.item_name,
			unit_name = excluded.unit_name,
			sort_order = excluded.sort_order`
	if _, err := tx.Exec(q, item.ItemKey, item.ItemName, item.UnitName, item.SortOrder); err != nil {
		return fmt.Errorf("failed to upsert supply item %s: %w", item.ItemKey, err)
	}

	if _, err := tx.Exec(`DELETE FROM supply_deduction_keys WHERE item_key = ?`, item.ItemKey); err != nil {
		return fmt.Errorf("failed to clear deduction keys for %s: %w", item.ItemKey, err)
	}
	for _, key := range item.DeductionKeys {
		if _, err := tx.Exec(`INSERT INTO supply_deduction_keys (item_key, deduction_key) VALUES (?, ?)`, item.ItemKey, key); err != nil {
			return fmt.Errorf("failed to insert deduction key %s/%s: %w", item.ItemKey, key, err)
		}
	}
	return nil
}

// UpsertStoreInTx は店舗マスター1行を登録・上書きします。
func UpsertStoreInTx(tx *sqlx.Tx, store model.Store) error {
	const q = `
		INSERT INTO stores (store_id, store_name)
		VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET store_name = excluded.store_name`
	if _, err := tx.Exec(q, store.StoreID, store.StoreName); err != nil {
		return fmt.Errorf("failed to upsert store %s: %w", store.StoreID, err)
	}
	return nil
}

// UpsertZoneInTx は区画マスター1行を登録・上書きします。
func UpsertZoneInTx(tx *sqlx.Tx, zone model.Zone) error {
	const q = `
		INSERT INTO store_zones (store_id, zone_code, zone_name)
		VALUES (?, ?, ?)
		ON CONFLICT(store_id, zone_code) DO UPDATE SET zone_name = excluded.zone_name`
	if _, err := tx.Exec(q, zone.StoreID, zone.ZoneCode, zone.ZoneName); err != nil {
		return fmt.Errorf("failed to upsert zone %s/%s: %w", zone.StoreID, zone.ZoneCode, err)
	}
	return nil
}
