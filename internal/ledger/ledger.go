// Package ledger tracks invitations that were sent by raw identifier (email or username)
// but have not yet shown up as participants in a shared cart's roster.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/metrics"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
)

type entry struct {
	identifier string
	resolvedID *int64
}

// Ledger is a process-wide store of pending invitations keyed by cart id.
// Entries are ordered by the time they were first recorded.
type Ledger struct {
	mu    sync.Mutex
	carts map[int64][]*entry
}

func New() *Ledger {
	return &Ledger{carts: make(map[int64][]*entry)}
}

func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Ledger) find(cartID int64, key string) *entry {
	for _, e := range l.carts[cartID] {
		if normalize(e.identifier) == key {
			return e
		}
	}

	return nil
}

// RecordInvites adds every identifier not yet pending for the cart with an unknown
// resolved user id. Recording the same identifier twice is a no-op.
func (l *Ledger) RecordInvites(cartID int64, identifiers []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, identifier := range identifiers {
		key := normalize(identifier)
		if key == "" || l.find(cartID, key) != nil {
			continue
		}

		l.carts[cartID] = append(l.carts[cartID], &entry{identifier: strings.TrimSpace(identifier)})
	}
}

// Resolve stores a user id the backend returned for an identifier at invite time.
// Unknown identifiers are ignored.
func (l *Ledger) Resolve(cartID int64, identifier string, userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e := l.find(cartID, normalize(identifier)); e != nil {
		id := userID
		e.resolvedID = &id
	}
}

// Reconcile drops every pending entry whose invitee is now in the roster.
//
// An entry with a known resolved id is matched by id. Otherwise the identifier is
// compared case-insensitively with each participant's email and username; this is a
// heuristic join and is logged as such. An entry whose resolved id is known but absent
// from the roster stays pending until membership propagates.
func (l *Ledger) Reconcile(ctx context.Context, cartID int64, participants []models.Participant) {
	logger := middleware.LoggerFromContext(ctx)

	members := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		members[p.UserID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pending := l.carts[cartID]
	if len(pending) == 0 {
		return
	}

	kept := pending[:0]

	for _, e := range pending {
		if e.resolvedID != nil {
			if _, ok := members[*e.resolvedID]; ok {
				metrics.InvitationResolved("user_id")
				continue
			}

			kept = append(kept, e)
			continue
		}

		if p, ok := matchParticipant(e.identifier, participants); ok {
			logger.Debug("Pending invitation matched by identifier",
				slog.Int64("cartId", cartID),
				slog.String("identifier", e.identifier),
				slog.Int64("userId", p.UserID))
			metrics.InvitationResolved("identifier")
			continue
		}

		kept = append(kept, e)
	}

	if len(kept) == 0 {
		delete(l.carts, cartID)
		return
	}

	l.carts[cartID] = kept
}

func matchParticipant(identifier string, participants []models.Participant) (models.Participant, bool) {
	for _, p := range participants {
		if (p.Email != "" && strings.EqualFold(p.Email, identifier)) ||
			(p.Username != "" && strings.EqualFold(p.Username, identifier)) {
			return p, true
		}
	}

	return models.Participant{}, false
}

// Purge drops every entry of a cart. Called when the cart is closed or cancelled.
func (l *Ledger) Purge(cartID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.carts, cartID)
}

// Snapshot returns the pending invitations of a cart for display.
func (l *Ledger) Snapshot(cartID int64) []models.PendingInvitation {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.PendingInvitation, 0, len(l.carts[cartID]))

	for _, e := range l.carts[cartID] {
		inv := models.PendingInvitation{Identifier: e.identifier}
		if e.resolvedID != nil {
			id := *e.resolvedID
			inv.ResolvedUserID = &id
		}

		out = append(out, inv)
	}

	return out
}
