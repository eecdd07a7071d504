// Package approval implements the pending-request / approval-resolution
// layer. Consent-requiring calls are registered here and their callers
// suspended until an out-of-band user decision arrives through the approval
// channel, or a deadline expires - whichever comes first. Exactly one
// settlement ever reaches a given waiter.
package approval
