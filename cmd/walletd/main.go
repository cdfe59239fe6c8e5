// Package main runs the wallet daemon: the HTTP API for triggering
// synchronization passes and reading the mirrored portfolio, plus the
// optional WebSocket account watcher that refreshes the mirror on change.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solana-wallet-hub/internal/config"
	"solana-wallet-hub/internal/contentstore"
	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/nft"
	"solana-wallet-hub/internal/observability"
	"solana-wallet-hub/internal/solana"
	"solana-wallet-hub/internal/storage"
	chstore "solana-wallet-hub/internal/storage/clickhouse"
	"solana-wallet-hub/internal/storage/memory"
	"solana-wallet-hub/internal/storage/migrations"
	pgstore "solana-wallet-hub/internal/storage/postgres"
	walletsync "solana-wallet-hub/internal/sync"
	"solana-wallet-hub/internal/token"
	"solana-wallet-hub/internal/watch"
)

// server holds the wired components behind the HTTP API.
type server struct {
	cfg          config.Config
	owner        solana.Pubkey
	orchestrator *walletsync.Orchestrator
	tokenMirror  storage.TokenMirrorStore
	nftMirror    storage.NFTMirrorStore
	history      storage.BalanceHistoryStore
	logger       *zap.Logger

	started time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("daemon failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	owner, err := solana.TryPubkeyFromBase58(cfg.WalletAddress)
	if err != nil {
		return fmt.Errorf("wallet address: %w", err)
	}

	tokenMirror, nftMirror, history, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	content := contentstore.NewHTTPStore(cfg.ContentEndpoint)

	tokenSvc := token.NewService(rpc, owner, logger.Named("token"))
	nftSvc := nft.NewService(rpc, content, nftMirror, owner, logger.Named("nft"))

	orch := walletsync.New(walletsync.Options{
		Tokens:      tokenSvc,
		Assets:      nftSvc,
		TokenMirror: tokenMirror,
		NFTMirror:   nftMirror,
		History:     history,
		Logger:      logger.Named("sync"),
	})

	srv := &server{
		cfg:          cfg,
		owner:        owner,
		orchestrator: orch,
		tokenMirror:  tokenMirror,
		nftMirror:    nftMirror,
		history:      history,
		logger:       logger,
		started:      time.Now(),
	}

	errCh := make(chan error, 2)

	if cfg.WSEndpoint != "" {
		go func() {
			if err := runWatcher(ctx, cfg, orch, owner, logger); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("account watcher: %w", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("http api listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", zap.Error(serr))
	}

	if err != nil {
		return err
	}
	return ctx.Err()
}

// createStores wires the mirror and history stores. Both DSNs empty means
// fully in-memory; the two backends can also be mixed.
func createStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (
	storage.TokenMirrorStore, storage.NFTMirrorStore, storage.BalanceHistoryStore, func(), error,
) {
	var (
		tokenMirror storage.TokenMirrorStore
		nftMirror   storage.NFTMirrorStore
		history     storage.BalanceHistoryStore
		closers     []func()
	)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}

		tokenMirror = pgstore.NewTokenMirrorStore(pool)
		nftMirror = pgstore.NewNFTMirrorStore(pool)
		logger.Info("mirror storage: postgres")
	} else {
		tokenMirror = memory.NewTokenMirrorStore()
		nftMirror = memory.NewNFTMirrorStore()
		logger.Info("mirror storage: memory")
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })

		history = chstore.NewBalanceHistoryStore(conn)
		logger.Info("balance history: clickhouse")
	} else {
		history = memory.NewBalanceHistoryStore()
		logger.Info("balance history: memory")
	}

	return tokenMirror, nftMirror, history, cleanup, nil
}

func runWatcher(ctx context.Context, cfg config.Config, orch *walletsync.Orchestrator, owner solana.Pubkey, logger *zap.Logger) error {
	ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	watcher, err := watch.New(watch.Options{
		Subscriber: ws,
		Syncer:     orch,
		Logger:     logger.Named("watch"),
	})
	if err != nil {
		return err
	}

	return watcher.Watch(ctx, cfg.UserID, owner)
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/v1/sync", s.handleSync)
	mux.HandleFunc("/v1/sync/state", s.handleSyncState)
	mux.HandleFunc("/v1/portfolio", s.handlePortfolio)
	mux.HandleFunc("/v1/history", s.handleHistory)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// syncResponse summarizes a completed pass.
type syncResponse struct {
	Tokens      []*domain.TokenAccount `json:"tokens"`
	NFTs        []*domain.NFT          `json:"nfts"`
	Collections []*domain.Collection   `json:"collections"`
	Skipped     int                    `json:"skipped"`
	Persisted   bool                   `json:"persisted"`
	PersistErr  string                 `json:"persist_error,omitempty"`
	CompletedAt time.Time              `json:"completed_at"`
}

func (s *server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.orchestrator.Run(r.Context(), s.cfg.UserID, s.owner)
	if err != nil {
		s.logger.Error("sync request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if result == nil {
		// A pass is in flight and none has completed yet.
		writeJSON(w, http.StatusAccepted, map[string]string{
			"state": string(s.orchestrator.State(s.cfg.UserID)),
		})
		return
	}

	resp := syncResponse{
		Tokens:      result.Tokens,
		NFTs:        result.NFTs,
		Collections: result.Collections,
		Skipped:     result.Skipped,
		Persisted:   result.PersistErr == nil,
		CompletedAt: result.CompletedAt,
	}
	if result.PersistErr != nil {
		resp.PersistErr = result.PersistErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSyncState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"state": string(s.orchestrator.State(s.cfg.UserID)),
	})
}

// handlePortfolio serves the mirrored view without touching the ledger.
func (s *server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.tokenMirror.GetByUser(r.Context(), s.cfg.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	nfts, err := s.nftMirror.GetByUser(r.Context(), s.cfg.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": tokens,
		"nfts":   nfts,
	})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	mint := r.URL.Query().Get("mint")
	if mint == "" {
		http.Error(w, "mint query parameter is required", http.StatusBadRequest)
		return
	}

	points, err := s.history.GetByUserMint(r.Context(), s.cfg.UserID, mint)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
