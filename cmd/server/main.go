package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/maildeck/server/internal/api"
	"github.com/maildeck/server/internal/config"
	"github.com/maildeck/server/internal/seed"
	"github.com/maildeck/server/internal/simulator"
	"github.com/maildeck/server/internal/snapshot"
	"github.com/maildeck/server/internal/store"
	ws "github.com/maildeck/server/internal/websocket"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := snapshot.NewPool(ctx, cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	log.Printf("Successfully connected to database")

	repo := snapshot.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare database schema: %v", err)
	}

	mailboxStore := store.New(repo)
	if err := mailboxStore.Initialize(ctx, seed.Generate()); err != nil {
		log.Fatalf("Failed to initialize mailbox store: %v", err)
	}

	wsHub := ws.NewHub(10)
	sim := simulator.New(mailboxStore, simulator.WithNotify(wsHub.Broadcast))
	sim.Start(cfg.SimInterval)
	defer sim.Stop()

	server := NewServer(mailboxStore, sim, wsHub)

	address := ":" + cfg.Port
	log.Printf("Maildeck server starting on %s (environment: %s)", address, cfg.Environment)

	if err := http.ListenAndServe(address, server); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// NewServer creates and returns the HTTP handler for the Maildeck API.
func NewServer(mailboxStore *store.Store, sim *simulator.Simulator, wsHub *ws.Hub) http.Handler {
	accountsHandler := api.NewAccountsHandler(mailboxStore)
	foldersHandler := api.NewFoldersHandler(mailboxStore)
	threadsHandler := api.NewThreadsHandler(mailboxStore)
	threadHandler := api.NewThreadHandler(mailboxStore)
	searchHandler := api.NewSearchHandler(mailboxStore)
	syncHandler := api.NewSyncHandler(mailboxStore, sim)
	wsHandler := api.NewWebSocketHandler(wsHub)

	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)

	mux.Handle("/api/v1/accounts", http.HandlerFunc(accountsHandler.GetAccounts))
	mux.Handle("/api/v1/accounts/reauth", http.HandlerFunc(accountsHandler.PostReauth))
	mux.Handle("/api/v1/folders", http.HandlerFunc(foldersHandler.GetFolders))
	mux.Handle("/api/v1/threads", http.HandlerFunc(threadsHandler.GetThreads))
	mux.Handle("/api/v1/threads/unified", http.HandlerFunc(threadsHandler.GetUnified))
	mux.Handle("/api/v1/search", http.HandlerFunc(searchHandler.Search))
	mux.Handle("/api/v1/sync", http.HandlerFunc(syncHandler.GetStatuses))
	mux.Handle("/api/v1/sync/run", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		syncHandler.RunOnce(w, r)
	}))
	mux.Handle("/api/v1/ws", http.HandlerFunc(wsHandler.Handle))

	// Handle /api/v1/thread/{thread_id}[/{action}] pattern
	mux.Handle("/api/v1/thread/", http.HandlerFunc(threadHandler.Handle))

	return mux
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Maildeck API is running")
}
