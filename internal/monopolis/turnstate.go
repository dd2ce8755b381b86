package monopolis

import "encoding/json"

// Roll is one pair of dice.
type Roll struct {
	Dice1 int `json:"dice1"`
	Dice2 int `json:"dice2"`
}

func (r Roll) IsDouble() bool { return r.Dice1 == r.Dice2 }

// TurnState is the single authoritative "whose turn, doing what" value.
// Exactly one variant exists per game at any time and every transition
// replaces it wholesale. The interface is sealed so the variant set is
// closed; handlers type-switch over it.
type TurnState interface {
	isTurnState()
}

type LobbyTurn struct{}

type TransitionTurn struct {
	PID   int    `json:"pID"`
	Rolls []Roll `json:"rolls"`
}

type StartTurn struct {
	PID        int            `json:"pID"`
	Rolls      []Roll         `json:"rolls"`
	Indicators map[string]int `json:"indicators"`
}

type JailedTurn struct {
	PID               int            `json:"pID"`
	Rolls             []Roll         `json:"rolls"`
	Indicators        map[string]int `json:"indicators"`
	PreRolled         bool           `json:"preRolled"`
	PotentialBankrupt int            `json:"potentialBankrupt"`
}

type DiceRollTurn struct {
	PID   int    `json:"pID"`
	Rolls []Roll `json:"rolls"`
	Dice1 int    `json:"dice1"`
	Dice2 int    `json:"dice2"`
}

type PayRentTurn struct {
	PID               int    `json:"pID"`
	Rolls             []Roll `json:"rolls"`
	Property          string `json:"property"`
	Price             int    `json:"price"`
	PotentialBankrupt int    `json:"potentialBankrupt"`
}

type UnownedTurn struct {
	PID      int    `json:"pID"`
	Rolls    []Roll `json:"rolls"`
	Property string `json:"property"`
}

type AuctionTurn struct {
	PID      int    `json:"pID"`
	Rolls    []Roll `json:"rolls"`
	Property string `json:"property"`
}

type CardPromptTurn struct {
	PID   int    `json:"pID"`
	Rolls []Roll `json:"rolls"`
	Deck  Deck   `json:"deck"`
}

type CardResultTurn struct {
	PID               int    `json:"pID"`
	Rolls             []Roll `json:"rolls"`
	Card              Card   `json:"card"`
	PotentialBankrupt int    `json:"potentialBankrupt"`
}

type AuxRollPromptTurn struct {
	PID   int    `json:"pID"`
	Rolls []Roll `json:"rolls"`
	Card  Card   `json:"card"`
}

type AuxRollResultTurn struct {
	PID               int    `json:"pID"`
	Rolls             []Roll `json:"rolls"`
	Card              Card   `json:"card"`
	Dice1             int    `json:"dice1"`
	Dice2             int    `json:"dice2"`
	Value             int    `json:"value"`
	PotentialBankrupt int    `json:"potentialBankrupt"`
}

type EndTurn struct {
	PID   int    `json:"pID"`
	Rolls []Roll `json:"rolls"`
}

type GameEndTurn struct {
	Winner int `json:"winner"`
}

func (LobbyTurn) isTurnState()         {}
func (TransitionTurn) isTurnState()    {}
func (StartTurn) isTurnState()         {}
func (JailedTurn) isTurnState()        {}
func (DiceRollTurn) isTurnState()      {}
func (PayRentTurn) isTurnState()       {}
func (UnownedTurn) isTurnState()       {}
func (AuctionTurn) isTurnState()       {}
func (CardPromptTurn) isTurnState()    {}
func (CardResultTurn) isTurnState()    {}
func (AuxRollPromptTurn) isTurnState() {}
func (AuxRollResultTurn) isTurnState() {}
func (EndTurn) isTurnState()           {}
func (GameEndTurn) isTurnState()       {}

// The wire format is a tagged union: each variant marshals with its type tag
// injected, matching the channel protocol clients consume.

func tagged(tag string, v any) ([]byte, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(inner) == "{}" {
		return json.Marshal(map[string]string{"type": tag})
	}
	out := append([]byte(`{"type":"`+tag+`",`), inner[1:]...)
	return out, nil
}

func (t LobbyTurn) MarshalJSON() ([]byte, error) {
	type alias LobbyTurn
	return tagged("lobby", alias(t))
}

func (t TransitionTurn) MarshalJSON() ([]byte, error) {
	type alias TransitionTurn
	return tagged("transition", alias(t))
}

func (t StartTurn) MarshalJSON() ([]byte, error) {
	type alias StartTurn
	return tagged("start", alias(t))
}

func (t JailedTurn) MarshalJSON() ([]byte, error) {
	type alias JailedTurn
	return tagged("jailed", alias(t))
}

func (t DiceRollTurn) MarshalJSON() ([]byte, error) {
	type alias DiceRollTurn
	return tagged("diceroll", alias(t))
}

func (t PayRentTurn) MarshalJSON() ([]byte, error) {
	type alias PayRentTurn
	return tagged("payrent", alias(t))
}

func (t UnownedTurn) MarshalJSON() ([]byte, error) {
	type alias UnownedTurn
	return tagged("unowned", alias(t))
}

func (t AuctionTurn) MarshalJSON() ([]byte, error) {
	type alias AuctionTurn
	return tagged("auction", alias(t))
}

func (t CardPromptTurn) MarshalJSON() ([]byte, error) {
	type alias CardPromptTurn
	return tagged("card_prompt", alias(t))
}

func (t CardResultTurn) MarshalJSON() ([]byte, error) {
	type alias CardResultTurn
	return tagged("card_result", alias(t))
}

func (t AuxRollPromptTurn) MarshalJSON() ([]byte, error) {
	type alias AuxRollPromptTurn
	return tagged("auxroll_prompt", alias(t))
}

func (t AuxRollResultTurn) MarshalJSON() ([]byte, error) {
	type alias AuxRollResultTurn
	return tagged("auxroll_result", alias(t))
}

func (t EndTurn) MarshalJSON() ([]byte, error) {
	type alias EndTurn
	return tagged("endturn", alias(t))
}

func (t GameEndTurn) MarshalJSON() ([]byte, error) {
	type alias GameEndTurn
	return tagged("gameend", alias(t))
}

// actorOf returns the player expected to act in the given state. The second
// return is false for states with no acting player (lobby, gameend).
func actorOf(ts TurnState) (int, bool) {
	switch t := ts.(type) {
	case TransitionTurn:
		return t.PID, true
	case StartTurn:
		return t.PID, true
	case JailedTurn:
		return t.PID, true
	case DiceRollTurn:
		return t.PID, true
	case PayRentTurn:
		return t.PID, true
	case UnownedTurn:
		return t.PID, true
	case AuctionTurn:
		return t.PID, true
	case CardPromptTurn:
		return t.PID, true
	case CardResultTurn:
		return t.PID, true
	case AuxRollPromptTurn:
		return t.PID, true
	case AuxRollResultTurn:
		return t.PID, true
	case EndTurn:
		return t.PID, true
	}
	return -1, false
}

// DecodeTurnState rebuilds a TurnState value from its tagged wire form.
// Used when restoring persisted lobby snapshots.
func DecodeTurnState(data []byte) (TurnState, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "lobby":
		return LobbyTurn{}, nil
	case "transition":
		var t TransitionTurn
		return t, json.Unmarshal(data, &t)
	case "start":
		var t StartTurn
		return t, json.Unmarshal(data, &t)
	case "jailed":
		var t JailedTurn
		return t, json.Unmarshal(data, &t)
	case "diceroll":
		var t DiceRollTurn
		return t, json.Unmarshal(data, &t)
	case "payrent":
		var t PayRentTurn
		return t, json.Unmarshal(data, &t)
	case "unowned":
		var t UnownedTurn
		return t, json.Unmarshal(data, &t)
	case "auction":
		var t AuctionTurn
		return t, json.Unmarshal(data, &t)
	case "card_prompt":
		var t CardPromptTurn
		return t, json.Unmarshal(data, &t)
	case "card_result":
		var t CardResultTurn
		return t, json.Unmarshal(data, &t)
	case "auxroll_prompt":
		var t AuxRollPromptTurn
		return t, json.Unmarshal(data, &t)
	case "auxroll_result":
		var t AuxRollResultTurn
		return t, json.Unmarshal(data, &t)
	case "endturn":
		var t EndTurn
		return t, json.Unmarshal(data, &t)
	case "gameend":
		var t GameEndTurn
		return t, json.Unmarshal(data, &t)
	}
	return nil, ErrUnknownTurnState
}

// UIState is the per-lobby modal indicator (none, bankruptcy confirmation,
// trade window).
type UIState struct {
	Type string `json:"type"`
}

const (
	UINone            = "n/a"
	UIBankruptConfirm = "bankrupt_confirm"
	UITrade           = "trade"
)
