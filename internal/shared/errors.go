package shared

import "errors"

var (
	// ErrPartyBusy indicates another posting for the same party is in flight.
	ErrPartyBusy = errors.New("party ledger busy")
)
