package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shophabesha/shophabesha/pkg/ledger"
	"github.com/shophabesha/shophabesha/pkg/store"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// logNotifier routes ledger notifications to the structured log. It is
// the server-side stand-in for the client's toast popups.
type logNotifier struct {
	log *logrus.Logger
}

func (n *logNotifier) Notify(kind, message string) {
	entry := n.log.WithField("kind", kind)
	switch kind {
	case ledger.NotifyError:
		entry.Error(message)
	case ledger.NotifyWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// scanAllShops runs the overdue scan for every shop with sales on record.
func scanAllShops(s store.Storage, svc *ledger.Service) {
	shopIDs, err := s.GetShopIDs()
	if err != nil {
		log.WithError(err).Error("failed to list shops for overdue scan")
		return
	}
	now := time.Now()
	for _, shopID := range shopIDs {
		if err := svc.ScanOverdue(shopID, now); err != nil {
			log.WithError(err).WithField("shop_id", shopID).Error("overdue scan failed")
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment as-is")
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	sqliteStore, err := store.NewSQLiteStore(envOr("SHOPHABESHA_DB", "shophabesha.db"))
	if err != nil {
		log.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()
	log.Info("Database connection established and schema initialized")

	iosSMS := envOr("SHOPHABESHA_SMS_IOS", "false") == "true"
	server := NewServer(sqliteStore, &logNotifier{log}, iosSMS)
	router := server.router()

	// Every mutation republishes the shop's full snapshot; log it so a
	// stuck feed is visible in operation.
	server.ledger.Feed().Subscribe(func(snap ledger.Snapshot) {
		log.WithFields(logrus.Fields{
			"shop_id": snap.ShopID,
			"records": len(snap.Records),
		}).Debug("sales snapshot published")
	})

	// Periodic overdue scan, in place of the client recomputing on every
	// screen visit.
	scanInterval, err := time.ParseDuration(envOr("SHOPHABESHA_SCAN_INTERVAL", "1h"))
	if err != nil {
		log.Fatalf("Invalid SHOPHABESHA_SCAN_INTERVAL: %v", err)
	}
	go func() {
		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()
		for range ticker.C {
			log.Debug("Running overdue scan...")
			scanAllShops(sqliteStore, server.ledger)
		}
	}()

	addr := envOr("SHOPHABESHA_ADDR", ":8080")
	log.Infof("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
