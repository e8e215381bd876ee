package router

// Stats counts router activity since creation.
type Stats struct {
	Notifications uint64 `json:"notifications"`
	DerivedOnly   uint64 `json:"derivedOnly"`
	Ignored       uint64 `json:"ignored"`
	Coalesced     uint64 `json:"coalesced"`
	Recomputed    uint64 `json:"recomputed"`
	Failed        uint64 `json:"failed"`
	Seeded        uint64 `json:"seeded"`
	Pending       int    `json:"pending"`
}

// Stats returns a snapshot of the counters.
func (r *Router) Stats() Stats {
	return Stats{
		Notifications: r.notifications.Load(),
		DerivedOnly:   r.derivedOnly.Load(),
		Ignored:       r.ignored.Load(),
		Coalesced:     r.coalesced.Load(),
		Recomputed:    r.recomputed.Load(),
		Failed:        r.failed.Load(),
		Seeded:        r.seeded.Load(),
		Pending:       r.Pending(),
	}
}
