package main

import (
	"encoding/json"
	"log"
	"net/http"

	"shizai/automation"
	"shizai/database"
	"shizai/loader"
	"shizai/receiving"
	"shizai/remaining"
	"shizai/salesimport"
	"shizai/stocktake"

	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {

	mux.HandleFunc("/api/remaining/data", remaining.GetRemainingDataHandler(dbConn))
	mux.HandleFunc("/api/remaining/save", remaining.SaveRemainingHandler(dbConn))

	mux.HandleFunc("/api/receiving/save", receiving.SaveReceivingHandler(dbConn))

	mux.HandleFunc("/api/sales/upload", salesimport.UploadSalesHandler(dbConn))
	mux.HandleFunc("/api/stocktake/import", stocktake.ImportStocktakeCSVHandler(dbConn))

	mux.HandleFunc("/api/stores", func(w http.ResponseWriter, r *http.Request) {
		stores, err := database.GetAllStores(dbConn)
		if err != nil {
			log.Printf("Error retrieving stores: %v", err)
			http.Error(w, "Failed to get stores", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stores)
	})

	mux.HandleFunc("/api/zones", func(w http.ResponseWriter, r *http.Request) {
		storeID := r.URL.Query().Get("storeId")
		if storeID == "" {
			http.Error(w, "storeId is required", http.StatusBadRequest)
			return
		}
		zones, err := database.GetZonesByStore(dbConn, storeID)
		if err != nil {
			log.Printf("Error retrieving zones for store %s: %v", storeID, err)
			http.Error(w, "Failed to get zones", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(zones)
	})

	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		catalog, err := database.GetSupplyCatalog(dbConn)
		if err != nil {
			log.Printf("Error retrieving supply catalog: %v", err)
			http.Error(w, "Failed to get supply catalog", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(catalog)
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/masters/reload", loader.ReloadMastersHandler(dbConn))

	mux.HandleFunc("/api/automation/sales/download", automation.DownloadSalesHandler(dbConn))
}
