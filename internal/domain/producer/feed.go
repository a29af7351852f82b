package producer

import "time"

// Feed tracks the fetch cursor. It is not safe for concurrent use; the
// owner of the match state drives it.
type Feed struct {
	policy       Policy
	fetchedUpTo  int
	inFlight     bool
	backoffUntil time.Time
}

// NewFeed creates a feed at minute zero.
func NewFeed(p Policy) *Feed {
	return &Feed{policy: p}
}

// Policy returns the feed's policy.
func (f *Feed) Policy() Policy { return f.policy }

// FetchedUpTo returns the last minute requested so far.
func (f *Feed) FetchedUpTo() int { return f.fetchedUpTo }

// InFlight reports whether a request is outstanding.
func (f *Feed) InFlight() bool { return f.inFlight }

// BackoffUntil returns the end of the current cooldown.
func (f *Feed) BackoffUntil() time.Time { return f.backoffUntil }

// Conditions fills in the cursor fields of c.
func (f *Feed) Conditions(c Conditions) Conditions {
	c.FetchedUpTo = f.fetchedUpTo
	c.InFlight = f.inFlight
	c.BackoffUntil = f.backoffUntil
	return c
}

// Begin starts the next batch when the policy allows it. At most one batch
// is in flight at a time.
func (f *Feed) Begin(c Conditions) (Batch, bool) {
	if !f.policy.ShouldFetch(f.Conditions(c)) {
		return Batch{}, false
	}
	b, ok := f.policy.NextBatch(f.fetchedUpTo)
	if !ok {
		return Batch{}, false
	}
	f.inFlight = true
	return b, true
}

// Succeed records a completed batch.
func (f *Feed) Succeed(b Batch) {
	f.advance(b)
}

// Fail records a failed batch. The cursor moves exactly as on success
// because fillers stand in for the missing minutes. A rate-limit failure
// also pauses fetching.
func (f *Feed) Fail(b Batch, now time.Time, rateLimited bool) {
	f.advance(b)
	if rateLimited {
		f.backoffUntil = now.Add(f.policy.Backoff)
	}
}

func (f *Feed) advance(b Batch) {
	f.fetchedUpTo = min(f.fetchedUpTo+b.Duration, f.policy.Horizon)
	f.inFlight = false
}
