package model

// Store は店舗マスターの1行です。
type Store struct {
	StoreID   string `db:"store_id" json:"storeId"`
	StoreName string `db:"store_name" json:"storeName"`
}

// Zone は店舗内の区画 (フロア・キッチン等) です。
// 区画を持たない店舗は zone="" (店舗全体) として扱います。
type Zone struct {
	StoreID  string `db:"store_id" json:"storeId"`
	ZoneCode string `db:"zone_code" json:"zoneCode"`
	ZoneName string `db:"zone_name" json:"zoneName"`
}

// SupplyItemDefinition は残数管理対象の資材品目です。
// DeductionKeys には、この資材を1個消費する売上商品キーを列挙します。
// 1つの商品キーが複数の資材を消費することも、複数の商品キーが
// 同じ資材を消費することもあります (多対多)。
type SupplyItemDefinition struct {
	ItemKey       string   `db:"item_key" json:"itemKey"`
	ItemName      string   `db:"item_name" json:"itemName"`
	UnitName      string   `db:"unit_name" json:"unitName"`
	SortOrder     int      `db:"sort_order" json:"sortOrder"`
	DeductionKeys []string `json:"deductionKeys"`
}
