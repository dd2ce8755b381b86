package monopolis

import "encoding/json"

// Snapshot is the full serializable game state. Turn is stored in its
// tagged wire form so the same codec covers persistence and the channel
// protocol.
type Snapshot struct {
	Lobby     LobbyData                     `json:"lobby"`
	Players   map[int]*PlayerState          `json:"players"`
	Teams     map[int]*TeamState            `json:"teams"`
	Ownership map[string]*PropertyOwnership `json:"ownership"`
	RollOrder []int                         `json:"rollOrder"`
	Turn      json.RawMessage               `json:"turn"`
	Market    HousingMarket                 `json:"market"`
	UI        UIState                       `json:"ui"`
	Decks     *DeckSet                      `json:"decks"`
}

func (g *Game) Snapshot() (Snapshot, error) {
	turn, err := json.Marshal(g.Turn)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Lobby:     g.Lobby,
		Players:   g.Players,
		Teams:     g.Teams,
		Ownership: g.Ownership,
		RollOrder: g.RollOrder,
		Turn:      turn,
		Market:    g.Market,
		UI:        g.UI,
		Decks:     g.Decks,
	}, nil
}

// RestoreGame rebuilds a live game from a snapshot. The caller supplies a
// fresh publisher; nothing is published during restore, clients receive
// state through replay-on-subscribe instead.
func RestoreGame(snap Snapshot, publish Publisher, opts ...Option) (*Game, error) {
	turn, err := DecodeTurnState(snap.Turn)
	if err != nil {
		return nil, err
	}
	g := NewGame(publish, opts...)
	g.Lobby = snap.Lobby
	if g.Lobby.Players == nil {
		g.Lobby.Players = []LobbyPlayer{}
	}
	if g.Lobby.Teams == nil {
		g.Lobby.Teams = []LobbyTeam{}
	}
	if snap.Players != nil {
		g.Players = snap.Players
	}
	if snap.Teams != nil {
		g.Teams = snap.Teams
	}
	if snap.Ownership != nil {
		g.Ownership = snap.Ownership
	}
	g.RollOrder = snap.RollOrder
	g.Turn = turn
	g.Market = snap.Market
	g.UI = snap.UI
	if snap.Decks != nil {
		g.Decks = snap.Decks
	}
	return g, nil
}

// ReplayState returns the current value of every channel this game has
// published, keyed by unscoped channel name. The server replays these to a
// freshly subscribed connection.
func (g *Game) ReplayState() map[string]any {
	state := map[string]any{
		ChannelCurrentTurn:   g.Turn,
		ChannelHousingMarket: g.Market,
		ChannelUIState:       g.UI,
		ChannelLobbyData:     g.Lobby,
	}
	if g.RollOrder != nil {
		state[ChannelRollOrder] = g.RollOrder
	}
	if g.Trade != nil {
		state[ChannelTrade] = g.Trade
	}
	if g.Auction != nil {
		state[ChannelAuction] = g.Auction
	}
	for pID, player := range g.Players {
		state[PlayerChannel(pID)] = player
	}
	for tID, team := range g.Teams {
		state[TeamChannel(tID)] = team
	}
	for tileID, ownership := range g.Ownership {
		state[PropertyChannel(tileID)] = ownership
	}
	return state
}
