package watch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-wallet-hub/internal/solana"
	walletsync "solana-wallet-hub/internal/sync"
)

// Subscriber provides account change notifications. *solana.WSClient
// satisfies it.
type Subscriber interface {
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan solana.AccountNotification, error)
}

// Syncer runs a synchronization pass. *sync.Orchestrator satisfies it.
type Syncer interface {
	Run(ctx context.Context, userID string, owner solana.Pubkey) (*walletsync.Result, error)
}

// AccountWatcher subscribes to a wallet's account and triggers a sync pass
// whenever the account changes. Bursts of notifications within the debounce
// window collapse into a single pass.
type AccountWatcher struct {
	subscriber Subscriber
	syncer     Syncer
	debounce   time.Duration
	logger     *zap.Logger
}

// Options configures an AccountWatcher.
type Options struct {
	Subscriber Subscriber
	Syncer     Syncer
	// Debounce is how long to wait after a notification before running a
	// pass. Further notifications inside the window restart the timer.
	Debounce time.Duration
	Logger   *zap.Logger
}

const defaultDebounce = 2 * time.Second

// New creates an AccountWatcher.
func New(opts Options) (*AccountWatcher, error) {
	if opts.Subscriber == nil {
		return nil, fmt.Errorf("subscriber is required")
	}
	if opts.Syncer == nil {
		return nil, fmt.Errorf("syncer is required")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AccountWatcher{
		subscriber: opts.Subscriber,
		syncer:     opts.Syncer,
		debounce:   debounce,
		logger:     logger,
	}, nil
}

// Watch subscribes to the owner account and runs sync passes on change until
// ctx is cancelled or the notification channel closes.
func (w *AccountWatcher) Watch(ctx context.Context, userID string, owner solana.Pubkey) error {
	ch, err := w.subscriber.SubscribeAccount(ctx, owner.String())
	if err != nil {
		return fmt.Errorf("subscribe account %s: %w", owner, err)
	}

	w.logger.Info("watching account",
		zap.String("user_id", userID),
		zap.String("owner", owner.String()))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case notif, ok := <-ch:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return fmt.Errorf("subscription closed for %s", owner)
			}
			w.logger.Debug("account changed",
				zap.String("pubkey", notif.Pubkey),
				zap.Int64("slot", notif.Slot))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.runPass(ctx, userID, owner)
		}
	}
}

func (w *AccountWatcher) runPass(ctx context.Context, userID string, owner solana.Pubkey) {
	start := time.Now()
	result, err := w.syncer.Run(ctx, userID, owner)
	if err != nil {
		w.logger.Error("sync pass failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	if result == nil {
		return
	}

	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.Int("tokens", result.TokensMirrored),
		zap.Int("nfts", result.NFTsMirrored),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	}
	if result.PersistErr != nil {
		fields = append(fields, zap.NamedError("persist_error", result.PersistErr))
		w.logger.Warn("sync pass persisted partially", fields...)
		return
	}
	w.logger.Info("sync pass complete", fields...)
}
