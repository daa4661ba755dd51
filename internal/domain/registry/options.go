package registry

import "time"

// Option configures a Hub at construction time.
type Option func(*Hub)

// WithEvictionInterval configures how often the janitor process runs to
// reclaim memory from inactive subjects.
func WithEvictionInterval(d time.Duration) Option {
	return func(h *Hub) { h.config.evictionInterval = d }
}

// WithIdleTimeout sets the quiet period after which a subject cell with no
// attached sessions becomes eligible for eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(h *Hub) { h.config.idleTimeout = d }
}

// WithMailboxSize sets the per-cell actor mailbox capacity.
func WithMailboxSize(size int) Option {
	return func(h *Hub) { h.config.mailboxSize = size }
}
