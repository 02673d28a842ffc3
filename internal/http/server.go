// Package http is the view-facing surface of the cash register: a JSON API
// mapping one-to-one onto the ledger operations, plus the CSV report
// download. All input validation lives here; the ledger trusts its callers.
package http

import (
	"net/http"
	"sync"
	"time"

	"caja/internal/core"
	"caja/internal/ledger"
	"caja/internal/middleware/security"
	"caja/internal/middleware/trace"
)

type Server struct {
	http.Server
	service *ledger.Service

	// Cached filtered-report results, purged on any transaction change
	reportCache      *lruCache[[]core.Transaction]
	unsubscribeCache func()
	shutdownOnce     sync.Once
}

func NewServer(addr string, service *ledger.Service) *Server {
	s := &Server{
		service:     service,
		reportCache: newLRUCache[[]core.Transaction](50, 30*time.Second),
	}

	s.unsubscribeCache = service.Notifier().Subscribe(func(ledger.Change) {
		s.reportCache.Purge()
	}, ledger.KeyTransactions)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/active", s.handleActiveSession)
	mux.HandleFunc("/api/sessions/close", s.handleCloseSession)
	mux.HandleFunc("/api/sessions/closed", s.handleClosedSessions)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/reports/transactions", s.handleTransactionReport)

	mux.HandleFunc("/api/bills", s.handleBills)
	mux.HandleFunc("/api/bills/", s.handleBillByID)

	mux.HandleFunc("/api/categories", s.handleCategories)

	handler := trace.Middleware(security.Middleware(security.DefaultHeadersConfig())(mux))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Close releases the cache subscription in addition to the listener.
func (s *Server) Close() error {
	s.shutdownOnce.Do(func() {
		if s.unsubscribeCache != nil {
			s.unsubscribeCache()
		}
	})
	return s.Server.Close()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
