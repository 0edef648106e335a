package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shophabesha/shophabesha/pkg/inventory"
	"github.com/shophabesha/shophabesha/pkg/ledger"
	"github.com/shophabesha/shophabesha/pkg/messaging"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shophabesha/shophabesha/pkg/report"
	"github.com/shophabesha/shophabesha/pkg/store"
	"github.com/shopspring/decimal"
)

// defaultShopID matches the anonymous-auth fallback the mobile client
// uses before an owner signs in.
const defaultShopID = "demo-shop"

// Server holds the service instances behind the HTTP surface.
type Server struct {
	ledger    *ledger.Service
	inventory *inventory.Service
	storage   store.Storage
	iosSMS    bool // use the iOS sms: body separator in generated links
}

// NewServer wires the services over one Storage implementation.
func NewServer(s store.Storage, notifier ledger.Notifier, iosSMS bool) *Server {
	return &Server{
		ledger:    ledger.NewService(s, notifier),
		inventory: inventory.NewService(s),
		storage:   s,
		iosSMS:    iosSMS,
	}
}

// router builds the full route table. Shared with the tests.
func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")

	r.HandleFunc("/sales", s.listSalesHandler).Methods("GET")
	r.HandleFunc("/sales", s.createSaleHandler).Methods("POST")
	r.HandleFunc("/sales/{id}", s.deleteSaleHandler).Methods("DELETE")
	r.HandleFunc("/sales/{id}/payments", s.recordPaymentHandler).Methods("POST")

	r.HandleFunc("/credits", s.creditsHandler).Methods("GET")
	r.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")

	r.HandleFunc("/reports", s.reportsHandler).Methods("GET")
	r.HandleFunc("/reports/export", s.exportReportHandler).Methods("GET")

	r.HandleFunc("/products", s.listProductsHandler).Methods("GET")
	r.HandleFunc("/products", s.createProductHandler).Methods("POST")
	r.HandleFunc("/products/{id}", s.updateProductHandler).Methods("PUT")
	r.HandleFunc("/products/{id}", s.deleteProductHandler).Methods("DELETE")
	r.HandleFunc("/products/{id}/stock", s.adjustStockHandler).Methods("POST")

	r.HandleFunc("/settings", s.getSettingsHandler).Methods("GET")
	r.HandleFunc("/settings", s.putSettingsHandler).Methods("PUT")

	r.HandleFunc("/reminders/{name}", s.reminderHandler).Methods("GET")

	return r
}

func shopID(r *http.Request) string {
	if id := r.Header.Get("X-Shop-ID"); id != "" {
		return id
	}
	return defaultShopID
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// notFound reports whether an error is one of the store's "not found"
// sentinels.
func notFound(err error) bool {
	return err != nil && strings.HasSuffix(err.Error(), "not found")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSalesHandler(w http.ResponseWriter, r *http.Request) {
	sales, err := s.ledger.Sales(shopID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sales == nil {
		sales = []*models.SaleRecord{}
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) createSaleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string          `json:"customer_name"`
		Phone        string          `json:"phone"`
		Amount       decimal.Decimal `json:"amount"`
		IsCredit     bool            `json:"is_credit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sale, err := s.ledger.RecordSale(shopID(r), req.CustomerName, req.Phone, req.Amount, req.IsCredit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) deleteSaleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}

	if err := s.ledger.DeleteSale(id); err != nil {
		if notFound(err) {
			http.Error(w, "Sale not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid sale ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}

	sale, err := s.ledger.RecordPayment(id, req.Amount)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Sale not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) creditsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.Credits(shopID(r), time.Now(), r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*ledger.CustomerLedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.ledger.Dashboard(shopID(r), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = report.Range30d
	}
	shop := shopID(r)

	records, err := s.ledger.Sales(shop)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	filtered := report.FilterRange(records, rangeName, now)
	stats := report.ComputeStats(filtered)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"range":         rangeName,
		"stats":         stats,
		"payment_mix":   report.PaymentMix(stats),
		"top_customers": report.TopCustomers(filtered, 5),
		"daily":         report.DailySales(filtered, shop, rangeName, now),
	})
}

func (s *Server) exportReportHandler(w http.ResponseWriter, r *http.Request) {
	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = report.Range30d
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	records, err := s.ledger.Sales(shopID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	filtered := report.FilterRange(records, rangeName, now)
	filename := report.ExportFilename(now)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		if err := report.WriteCSV(w, filtered); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		if err := report.WriteXLSX(w, filtered); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, "Unknown export format", http.StatusBadRequest)
	}
}

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	shop := shopID(r)
	products, err := s.inventory.Search(shop, r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	summary, err := s.inventory.Summarize(shop)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"summary":  summary,
	})
}

func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product.ShopID = shopID(r)

	created, err := s.inventory.AddProduct(&product)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product.ID = id
	product.ShopID = shopID(r)

	if err := s.inventory.UpdateProduct(&product); err != nil {
		if notFound(err) {
			http.Error(w, "Product not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	if err := s.inventory.DeleteProduct(id); err != nil {
		if notFound(err) {
			http.Error(w, "Product not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adjustStockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Op       string `json:"op"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := s.inventory.AdjustStock(id, req.Op, req.Quantity)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Product not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.storage.GetSettings(shopID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) putSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings models.ShopSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	settings.ShopID = shopID(r)

	if err := s.storage.SaveSettings(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// reminderHandler renders a payment-reminder message plus every handoff
// deep link for one debtor, looked up by ledger name.
func (s *Server) reminderHandler(w http.ResponseWriter, r *http.Request) {
	shop := shopID(r)
	name := mux.Vars(r)["name"]

	entries, err := s.ledger.Credits(shop, time.Now(), ledger.SortName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var entry *ledger.CustomerLedgerEntry
	for _, e := range entries {
		if e.Name == name {
			entry = e
			break
		}
	}
	if entry == nil {
		http.Error(w, "Debtor not found", http.StatusNotFound)
		return
	}

	settings, err := s.storage.GetSettings(shop)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	msgType := r.URL.Query().Get("type")
	if msgType == "" {
		msgType = messaging.TypeReminder
		if entry.IsOverdue {
			msgType = messaging.TypeOverdue
		}
	}

	message := messaging.Render(messaging.Template{
		Type:         msgType,
		CustomerName: entry.Name,
		Amount:       entry.Remaining,
		DaysOverdue:  entry.DaysOverdue,
		Settings:     settings,
	})

	resp := map[string]interface{}{
		"customer":     entry.Name,
		"amount":       entry.Remaining,
		"days_overdue": entry.DaysOverdue,
		"message":      message,
	}
	if messaging.IsValidPhone(entry.Phone) {
		resp["phone"] = messaging.NormalizePhone(entry.Phone)
		resp["links"] = messaging.BuildLinks(entry.Phone, message, s.iosSMS)
	}
	writeJSON(w, http.StatusOK, resp)
}
