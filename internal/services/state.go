package service

import (
	"github.com/aaravmahajanofficial/shared-cart-service/internal/cache"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/ledger"
)

// CoreState is the process-wide state shared by the reconciler, the checkout
// orchestrator and the facade. It is built once at startup and lives for the whole
// process: the ledger starts empty and the item cache starts with an empty memory tier
// that is hydrated lazily from its durable store.
type CoreState struct {
	Items  *cache.ItemCache
	Ledger *ledger.Ledger
}

func NewCoreState(items *cache.ItemCache, l *ledger.Ledger) *CoreState {
	return &CoreState{Items: items, Ledger: l}
}
