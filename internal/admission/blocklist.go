package admission

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/charmbracelet/log"

	"gatehouse/internal/domain"
)

const DefaultBlockReason = "No reason provided"

// BlockStore is the persistence capability for block-list administration.
type BlockStore interface {
	CreateBlockedIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, bool, error)
	DeleteBlockedIP(ctx context.Context, ip string) (bool, error)
}

type BlockOutcome int

const (
	BlockCreated BlockOutcome = iota
	BlockAlreadyExists
)

type BlockResult struct {
	Outcome BlockOutcome
	Entry   *domain.BlockedIP
}

// Blocklist performs out-of-band block administration and keeps the shared
// admission cache coherent with it.
type Blocklist struct {
	store BlockStore
	cache *Cache
}

func NewBlocklist(store BlockStore, cache *Cache) *Blocklist {
	return &Blocklist{store: store, cache: cache}
}

// Block adds the IP to the block list. The call is idempotent: blocking an
// already-blocked IP reports BlockAlreadyExists without error. On creation
// the cached verdict for the IP is invalidated synchronously so the next
// request re-checks the block list.
func (b *Blocklist) Block(ctx context.Context, ip, reason string) (BlockResult, error) {
	if _, err := netip.ParseAddr(ip); err != nil {
		return BlockResult{}, fmt.Errorf("admission: invalid IP address %q: %w", ip, err)
	}
	if reason == "" {
		reason = DefaultBlockReason
	}

	entry, created, err := b.store.CreateBlockedIP(ctx, ip, reason)
	if err != nil {
		return BlockResult{}, fmt.Errorf("admission: block %s: %w", ip, err)
	}

	if !created {
		return BlockResult{Outcome: BlockAlreadyExists, Entry: entry}, nil
	}

	if b.cache != nil {
		b.cache.InvalidateBlockStatus(ip)
	}

	log.Info("Blocked IP", "ip", ip, "reason", reason, "id", entry.ID)
	return BlockResult{Outcome: BlockCreated, Entry: entry}, nil
}

// Unblock removes the IP from the block list. Returns false when the IP was
// not blocked.
func (b *Blocklist) Unblock(ctx context.Context, ip string) (bool, error) {
	if _, err := netip.ParseAddr(ip); err != nil {
		return false, fmt.Errorf("admission: invalid IP address %q: %w", ip, err)
	}

	removed, err := b.store.DeleteBlockedIP(ctx, ip)
	if err != nil {
		return false, fmt.Errorf("admission: unblock %s: %w", ip, err)
	}

	if removed {
		if b.cache != nil {
			b.cache.InvalidateBlockStatus(ip)
		}
		log.Info("Unblocked IP", "ip", ip)
	}

	return removed, nil
}
