package monopolis

// Auction state. Like trades, the channel shape is published for clients
// but the bidding flow is not wired up; every auction event reports
// NOT_SUPPORTED and declining a property simply passes.

type AuctionPlayerState struct {
	HasWithdrawn bool `json:"hasWithdrawn"`
}

type AuctionBidEntry struct {
	PID    int `json:"pID"`
	Amount int `json:"amount"`
}

type AuctionState struct {
	CurrentBid     int                         `json:"current_bid"`
	CurrentBidder  int                         `json:"current_bidder"`
	CurrentOwner   int                         `json:"current_owner"`
	PlayerStates   map[int]*AuctionPlayerState `json:"playerStates"`
	HistoricalBids []AuctionBidEntry           `json:"historical_bids"`
}

// RequestAuction would put the declined property under the hammer.
func (g *Game) RequestAuction(pID int) error {
	return ErrNotImplemented
}

// AuctionBid would raise the standing bid.
func (g *Game) AuctionBid(pID, amount int) error {
	return ErrNotImplemented
}

// AuctionWithdraw would drop the player out of the running.
func (g *Game) AuctionWithdraw(pID int) error {
	return ErrNotImplemented
}
