package monopolis

// Trade negotiation state. The channel shape ships so clients can render
// the trade window, but the negotiation flow itself is not wired up yet;
// every trade event reports NOT_SUPPORTED.

const (
	TradeModify       = 0
	TradeConfirmation = 1
)

// TradeOffer is one line item: a property changing hands or money moving
// between two teams.
type TradeOffer struct {
	Type     string `json:"type"`
	Property string `json:"property,omitempty"`
	Money    int    `json:"money,omitempty"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

type TradeState struct {
	Initiator     int          `json:"initiator"`
	Participants  []int        `json:"participants"`
	Offers        []TradeOffer `json:"offers"`
	Confirmations map[int]bool `json:"confirmations"`
	Status        int          `json:"status"`
}

// RequestTrade would open the trade window.
func (g *Game) RequestTrade(pID int, participants []int) error {
	return ErrNotImplemented
}

// ApplyTrade would settle a fully confirmed trade.
func (g *Game) ApplyTrade(pID int) error {
	return ErrNotImplemented
}
