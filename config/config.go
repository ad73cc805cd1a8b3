package config

import (
	"encoding/json"
	"os"
	"sync"
)

// Config はアプリ全体の設定です。JSONファイルで永続化します。
type Config struct {
	// BaseDate は実地棚卸の基準日 (YYYYMMDD)。この日より前の残数は
	// 再構築しません。棚卸をやり直したら更新します。
	BaseDate string `json:"baseDate"`
	// SalesFolderPath はPOS売上CSVの自動取込フォルダです。
	SalesFolderPath string `json:"salesFolderPath"`
	// PortalUserID / PortalPassword はPOSポータル自動受信用の認証情報です。
	PortalUserID   string `json:"portalUserID"`
	PortalPassword string `json:"portalPassword"`
	// DefaultStoreID は画面初期表示の店舗です。
	DefaultStoreID string `json:"defaultStoreID"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./shizai_config.json"

// DefaultBaseDate は設定ファイルが無い・基準日未設定のときの既定値です。
const DefaultBaseDate = "20260101"

func applyDefaults(c *Config) {
	if c.BaseDate == "" {
		c.BaseDate = DefaultBaseDate
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			c := Config{}
			applyDefaults(&c)
			cfg = c
			return c, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	c := cfg
	applyDefaults(&c)
	return c
}
