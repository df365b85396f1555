package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// ProductID is the subscription product offered for purchase.
const ProductID = "weight_tracker_monthly_subscription"

// purchaseTimeout bounds a single purchase attempt.
const purchaseTimeout = 60 * time.Second

var (
	// ErrPurchaseInProgress indicates another purchase attempt is
	// already pending. The second call is rejected, not queued.
	ErrPurchaseInProgress = errors.New("a purchase is already in progress")
	// ErrProductUnavailable indicates the store does not offer the
	// subscription product right now.
	ErrProductUnavailable = errors.New("subscription product is unavailable")
	// ErrPurchaseNetwork indicates a connectivity failure during the
	// purchase.
	ErrPurchaseNetwork = errors.New("network error during purchase")
	// ErrPurchaseFailed is the generic purchase failure.
	ErrPurchaseFailed = errors.New("purchase failed")
)

// PurchaseOutcome is the settled result of a purchase attempt. A user
// cancellation is a distinct, silent outcome, not an error.
type PurchaseOutcome string

const (
	OutcomeCompleted PurchaseOutcome = "completed"
	OutcomeCancelled PurchaseOutcome = "cancelled"
)

// BillingService tracks the subscription state. The purchase gateway
// is the source of truth when reachable; the store caches the flag for
// offline reads.
type BillingService struct {
	gateway domain.PurchaseGateway
	store   domain.Store
	log     *zap.Logger
	timeout time.Duration

	mu          sync.Mutex
	subscribed  bool
	loaded      bool
	initialized bool
	purchasing  bool
}

// NewBillingService creates a BillingService over the given gateway
// and cache store.
func NewBillingService(gateway domain.PurchaseGateway, store domain.Store, log *zap.Logger) *BillingService {
	return &BillingService{gateway: gateway, store: store, log: log, timeout: purchaseTimeout}
}

// Subscribed returns the current subscription flag, reading the cached
// value on first use.
func (s *BillingService) Subscribed(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCached(ctx)
	return s.subscribed
}

// Refresh queries the gateway for active purchases and updates the
// cache. When the gateway is unreachable the cached flag stands in.
func (s *BillingService) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCached(ctx)

	active, err := s.activeWithReinit(ctx)
	if err != nil {
		s.log.Warn("subscription refresh failed, using cached status", zap.Error(err))
		return s.subscribed
	}
	s.setSubscribed(ctx, hasProduct(active, ProductID))
	return s.subscribed
}

// Restore re-checks past purchases, reactivating the subscription if
// one exists. Same query as Refresh but surfaces the gateway error.
func (s *BillingService) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCached(ctx)

	active, err := s.activeWithReinit(ctx)
	if err != nil {
		return s.subscribed, fmt.Errorf("restore purchases: %w", err)
	}
	s.setSubscribed(ctx, hasProduct(active, ProductID))
	return s.subscribed, nil
}

// Purchase runs one purchase attempt for the subscription product.
// Only one attempt may be in flight; a concurrent call fails with
// ErrPurchaseInProgress immediately. The attempt is abandoned and
// treated as failed after the timeout.
func (s *BillingService) Purchase(ctx context.Context) (PurchaseOutcome, error) {
	s.mu.Lock()
	if s.purchasing {
		s.mu.Unlock()
		return "", ErrPurchaseInProgress
	}
	s.purchasing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.purchasing = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.gateway.Purchase(ctx, ProductID)
	if domain.PurchaseCode(err) == domain.PurchaseCodeNotInitialized {
		// One lazy re-initialization before failing the operation.
		if initErr := s.lockedInit(ctx); initErr != nil {
			return "", fmt.Errorf("%w: %v", ErrPurchaseFailed, initErr)
		}
		err = s.gateway.Purchase(ctx, ProductID)
	}
	if err != nil {
		switch domain.PurchaseCode(err) {
		case domain.PurchaseCodeCancelled:
			return OutcomeCancelled, nil
		case domain.PurchaseCodeItemUnavailable:
			return "", ErrProductUnavailable
		case domain.PurchaseCodeNetwork:
			return "", ErrPurchaseNetwork
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out", ErrPurchaseFailed)
		}
		return "", fmt.Errorf("%w: %v", ErrPurchaseFailed, err)
	}

	s.mu.Lock()
	s.setSubscribed(ctx, true)
	s.mu.Unlock()
	return OutcomeCompleted, nil
}

// loadCached reads the stored flag once. Callers hold s.mu.
func (s *BillingService) loadCached(ctx context.Context) {
	if s.loaded {
		return
	}
	v, ok, err := s.store.Get(ctx, domain.KeySubscriptionStatus)
	if err != nil {
		s.log.Warn("reading cached subscription status failed", zap.Error(err))
	}
	s.subscribed = ok && v == "true"
	s.loaded = true
}

// setSubscribed updates the in-memory flag and the cache. Callers hold
// s.mu.
func (s *BillingService) setSubscribed(ctx context.Context, v bool) {
	s.subscribed = v
	s.loaded = true
	value := "false"
	if v {
		value = "true"
	}
	if err := s.store.Set(ctx, domain.KeySubscriptionStatus, value); err != nil {
		s.log.Warn("caching subscription status failed", zap.Error(err))
	}
}

// activeWithReinit queries active purchases, initializing the gateway
// first and retrying once after a lazy re-init. Callers hold s.mu.
func (s *BillingService) activeWithReinit(ctx context.Context) ([]string, error) {
	if !s.initialized {
		if err := s.init(ctx); err != nil {
			return nil, err
		}
	}
	active, err := s.gateway.ActiveProductIDs(ctx)
	if domain.PurchaseCode(err) == domain.PurchaseCodeNotInitialized {
		if err := s.init(ctx); err != nil {
			return nil, err
		}
		active, err = s.gateway.ActiveProductIDs(ctx)
	}
	return active, err
}

func (s *BillingService) lockedInit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init(ctx)
}

// init connects the gateway. Callers hold s.mu.
func (s *BillingService) init(ctx context.Context) error {
	if err := s.gateway.Init(ctx); err != nil {
		s.initialized = false
		return err
	}
	s.initialized = true
	return nil
}

func hasProduct(ids []string, productID string) bool {
	for _, id := range ids {
		if id == productID {
			return true
		}
	}
	return false
}
