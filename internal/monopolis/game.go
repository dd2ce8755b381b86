package monopolis

import (
	"errors"
	"math/rand"
	"time"
)

// Engine error taxonomy. Out-of-turn, illegal-state and insufficient-funds
// results are dropped as no-ops by the dispatch layer (logged server-side,
// nothing sent to the client); NOT_SUPPORTED is surfaced to the caller.
var (
	ErrOutOfTurn         = errors.New("OUT_OF_TURN: event actor does not match the expected player")
	ErrIllegalState      = errors.New("ILLEGAL_STATE: event not valid in the current turn state")
	ErrInsufficientFunds = errors.New("INSUFFICIENT_FUNDS: team cannot cover this payment")
	ErrNotImplemented    = errors.New("NOT_SUPPORTED: this operation is not implemented")
	ErrInvalidRequest    = errors.New("INVALID_REQUEST: request payload fails validation")
	ErrUnknownTurnState  = errors.New("INVARIANT: unknown turn state tag")
	ErrMissingRollOrder  = errors.New("INVARIANT: current player missing from roll order")
)

// Lobby and team caps.
const (
	MaxPlayers = 25
	MaxTeams   = 8
)

const startingMoney = 1500

// Housing market pool sizes.
const (
	TotalHouses = 32
	TotalHotels = 12
)

type PlayerState struct {
	PID      int    `json:"pID"`
	Name     string `json:"name"`
	Colour   int    `json:"colour"`
	Location int    `json:"location"`
	Jailed   int    `json:"jailed"`
	Team     int    `json:"team"`
}

type TeamState struct {
	TID   int    `json:"tID"`
	Name  string `json:"name"`
	Money int    `json:"money"`
	Alive bool   `json:"alive"`
}

// PropertyOwnership tracks one purchasable tile. Owner -1 means the bank.
// HouseCount -1 means mortgaged, 0 unimproved, 1-4 houses, 5 a hotel.
type PropertyOwnership struct {
	HouseCount int `json:"houseCount"`
	Owner      int `json:"owner"`
}

type HousingMarket struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

// LobbyPlayer is one roster entry before and during a game. Team -1 means
// unassigned; Configured flips once the player has picked a colour.
type LobbyPlayer struct {
	Name       string `json:"name"`
	LocalID    string `json:"localId"`
	Colour     int    `json:"colour"`
	Team       int    `json:"team"`
	Configured bool   `json:"configured"`
}

type LobbyTeam struct {
	Name string `json:"name"`
}

type LobbyData struct {
	Players []LobbyPlayer `json:"players"`
	Teams   []LobbyTeam   `json:"teams"`
	Started bool          `json:"started"`
}

// Publisher receives every authoritative state change as a channel name and
// the new value. The server scopes channel names per lobby and fans out to
// subscribed connections.
type Publisher func(channel string, value any)

// Game is one lobby's authoritative state. All mutation happens through the
// event methods in moves.go and friends; callers must serialize events for
// the same Game (the server holds one lock per lobby).
type Game struct {
	Lobby     LobbyData
	Players   map[int]*PlayerState
	Teams     map[int]*TeamState
	Ownership map[string]*PropertyOwnership
	RollOrder []int
	Turn      TurnState
	Market    HousingMarket
	UI        UIState
	Trade     *TradeState
	Auction   *AuctionState
	Decks     *DeckSet

	publish   Publisher
	stepDelay time.Duration
	rollDie   func() int
}

type Option func(*Game)

// WithStepDelay sets the pause between tile-by-tile movement steps. The
// default is zero; the server configures the animation pace from env.
func WithStepDelay(d time.Duration) Option {
	return func(g *Game) { g.stepDelay = d }
}

// WithDice overrides the die roller, used by tests for deterministic rolls.
// The func returns a single die value in [1,6].
func WithDice(roll func() int) Option {
	return func(g *Game) { g.rollDie = roll }
}

func NewGame(publish Publisher, opts ...Option) *Game {
	g := &Game{
		Lobby:     LobbyData{Players: []LobbyPlayer{}, Teams: []LobbyTeam{}},
		Players:   make(map[int]*PlayerState),
		Teams:     make(map[int]*TeamState),
		Ownership: make(map[string]*PropertyOwnership),
		Turn:      LobbyTurn{},
		Market:    HousingMarket{Houses: TotalHouses, Hotels: TotalHotels},
		UI:        UIState{Type: UINone},
		Decks:     NewDeckSet(),
		publish:   publish,
		rollDie:   func() int { return rand.Intn(6) + 1 },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Status reports the lobby lifecycle phase: forming, in progress, or over.
func (g *Game) Status() string {
	if _, over := g.Turn.(GameEndTurn); over {
		return "over"
	}
	if g.Lobby.Started {
		return "inprogress"
	}
	return "lobby"
}

func (g *Game) dispatch(channel string, value any) {
	if g.publish != nil {
		g.publish(channel, value)
	}
}

func (g *Game) setTurn(ts TurnState) {
	g.Turn = ts
	g.dispatch(ChannelCurrentTurn, ts)
}

func (g *Game) setUI(kind string) {
	g.UI = UIState{Type: kind}
	g.dispatch(ChannelUIState, g.UI)
}

func (g *Game) publishPlayer(pID int) {
	g.dispatch(PlayerChannel(pID), g.Players[pID])
}

func (g *Game) publishTeam(tID int) {
	g.dispatch(TeamChannel(tID), g.Teams[tID])
}

func (g *Game) publishOwnership(tileID string) {
	g.dispatch(PropertyChannel(tileID), g.Ownership[tileID])
}

func (g *Game) publishMarket() {
	g.dispatch(ChannelHousingMarket, g.Market)
}

func (g *Game) publishLobby() {
	g.dispatch(ChannelLobbyData, g.Lobby)
}

// AddTeam registers a new team while the lobby is forming.
func (g *Game) AddTeam(name string) error {
	if _, ok := g.Turn.(LobbyTurn); !ok || g.Lobby.Started {
		return ErrIllegalState
	}
	if len(g.Lobby.Teams) == MaxTeams {
		return ErrInvalidRequest
	}
	g.Lobby.Teams = append(g.Lobby.Teams, LobbyTeam{Name: name})
	g.publishLobby()
	return nil
}

// ConfigurePlayer records a roster member's chosen name and colour. Colours
// are unique within a lobby.
func (g *Game) ConfigurePlayer(localID, name string, colour int) error {
	if _, ok := g.Turn.(LobbyTurn); !ok || g.Lobby.Started {
		return ErrIllegalState
	}
	for i := range g.Lobby.Players {
		other := &g.Lobby.Players[i]
		if other.Configured && other.Colour == colour && other.LocalID != localID {
			return ErrInvalidRequest
		}
	}
	for i := range g.Lobby.Players {
		player := &g.Lobby.Players[i]
		if player.LocalID == localID {
			player.Name = name
			player.Colour = colour
			player.Configured = true
			g.publishLobby()
			return nil
		}
	}
	return ErrInvalidRequest
}

// AddRosterPlayer appends an unconfigured roster entry when an identity
// joins the lobby.
func (g *Game) AddRosterPlayer(localID string) error {
	if g.Lobby.Started {
		return ErrIllegalState
	}
	if len(g.Lobby.Players) == MaxPlayers {
		return ErrInvalidRequest
	}
	for _, player := range g.Lobby.Players {
		if player.LocalID == localID {
			return ErrInvalidRequest
		}
	}
	g.Lobby.Players = append(g.Lobby.Players, LobbyPlayer{
		LocalID: localID,
		Team:    -1,
	})
	g.publishLobby()
	return nil
}

// JoinTeam assigns a roster player to a team. Assignment is final for the
// lobby phase (team -1 is the only state it moves from).
func (g *Game) JoinTeam(localID string, teamID int) error {
	if _, ok := g.Turn.(LobbyTurn); !ok || g.Lobby.Started {
		return ErrIllegalState
	}
	if teamID < 0 || teamID >= len(g.Lobby.Teams) {
		return ErrInvalidRequest
	}
	for i := range g.Lobby.Players {
		player := &g.Lobby.Players[i]
		if player.LocalID == localID {
			if player.Team != -1 {
				return ErrInvalidRequest
			}
			player.Team = teamID
			g.publishLobby()
			return nil
		}
	}
	return ErrInvalidRequest
}

// RemoveRosterPlayer drops an identity from a still-forming lobby.
func (g *Game) RemoveRosterPlayer(localID string) error {
	if g.Lobby.Started {
		return ErrIllegalState
	}
	for i, player := range g.Lobby.Players {
		if player.LocalID == localID {
			g.Lobby.Players = append(g.Lobby.Players[:i], g.Lobby.Players[i+1:]...)
			g.publishLobby()
			return nil
		}
	}
	return ErrInvalidRequest
}

// PlayerIDForLocal resolves a durable identity to its seat in this game, or
// -1. The dispatch layer uses this to re-derive the acting player for every
// request instead of trusting the payload.
func (g *Game) PlayerIDForLocal(localID string) int {
	for i, player := range g.Lobby.Players {
		if player.LocalID == localID {
			return i
		}
	}
	return -1
}

// Start locks the roster and deals out the initial game state: one
// PlayerState per roster entry, one TeamState per team (funded with 1500,
// alive only if populated), every purchasable tile reset to the bank, and
// the housing market refilled. Player 0 takes the first turn.
func (g *Game) Start() error {
	if _, ok := g.Turn.(LobbyTurn); !ok || g.Lobby.Started {
		return ErrIllegalState
	}
	if len(g.Lobby.Players) == 0 || len(g.Lobby.Teams) == 0 {
		return ErrInvalidRequest
	}
	for _, player := range g.Lobby.Players {
		if !player.Configured || player.Team == -1 {
			return ErrInvalidRequest
		}
	}

	g.Lobby.Started = true
	g.Market = HousingMarket{Houses: TotalHouses, Hotels: TotalHotels}
	g.publishMarket()
	g.setUI(UINone)
	g.Decks = NewDeckSet()

	for _, tile := range TileDB {
		if tile.IsPurchasable() {
			g.Ownership[tile.ID] = &PropertyOwnership{HouseCount: 0, Owner: -1}
			g.publishOwnership(tile.ID)
		}
	}

	rollOrder := make([]int, 0, len(g.Lobby.Players))
	for i, player := range g.Lobby.Players {
		rollOrder = append(rollOrder, i)
		g.Players[i] = &PlayerState{
			PID:    i,
			Name:   player.Name,
			Colour: player.Colour,
			Team:   player.Team,
		}
		g.publishPlayer(i)
	}
	for i, team := range g.Lobby.Teams {
		populated := false
		for _, player := range g.Lobby.Players {
			if player.Team == i {
				populated = true
				break
			}
		}
		g.Teams[i] = &TeamState{
			TID:   i,
			Name:  team.Name,
			Money: startingMoney,
			Alive: populated,
		}
		g.publishTeam(i)
	}
	g.RollOrder = rollOrder
	g.dispatch(ChannelRollOrder, g.RollOrder)
	g.publishLobby()

	g.setTurn(TransitionTurn{PID: 0, Rolls: []Roll{}})
	g.startTurn(false)
	return nil
}

func (g *Game) playerTeam(pID int) *TeamState {
	player := g.Players[pID]
	if player == nil {
		return nil
	}
	return g.Teams[player.Team]
}

// requireActor enforces the anti-cheat gate: the requesting player must be
// the one the turn state expects.
func (g *Game) requireActor(pID int) error {
	expected, ok := actorOf(g.Turn)
	if !ok {
		return ErrIllegalState
	}
	if expected != pID {
		return ErrOutOfTurn
	}
	return nil
}
