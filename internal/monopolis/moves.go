package monopolis

import (
	"errors"
	"time"
)

var (
	ErrNoStoredRoll = errors.New("INVARIANT: pre-rolled jail state carries no stored roll")
	ErrEmptyDeck    = errors.New("INVARIANT: card deck is empty")
)

// indicators maps each reachable tile id to the distance that lands on it.
// While a player still has jail attempts beyond this turn, only doubles can
// move them, so odd distances are omitted.
func (g *Game) indicators(player *PlayerState) map[string]int {
	ind := make(map[string]int)
	for distance := 1; distance <= 12; distance++ {
		if player.Jailed > 1 && distance%2 == 1 {
			continue
		}
		tile := TileDB[(player.Location+distance)%BoardSize]
		ind[tile.ID] = distance
	}
	return ind
}

// startTurn converts a transition (or a drained jailed state) into the
// turn-opening state for its player: jailed if they still owe jail time or
// have a forced pre-rolled release pending, start otherwise.
func (g *Game) startTurn(preRolled bool) {
	var pID int
	var rolls []Roll
	switch turn := g.Turn.(type) {
	case TransitionTurn:
		pID, rolls = turn.PID, turn.Rolls
	case JailedTurn:
		pID, rolls = turn.PID, turn.Rolls
	default:
		return
	}
	player := g.Players[pID]
	if preRolled || player.Jailed > 0 {
		g.setTurn(JailedTurn{
			PID:               pID,
			Rolls:             rolls,
			Indicators:        g.indicators(player),
			PreRolled:         preRolled,
			PotentialBankrupt: -1,
		})
		return
	}
	g.setTurn(StartTurn{PID: pID, Rolls: rolls, Indicators: g.indicators(player)})
}

// RequestDiceRoll handles the roll event in every state that accepts one:
// a normal turn opening, a jail escape attempt, and the auxiliary utility
// roll a card visit demands.
func (g *Game) RequestDiceRoll(pID int) error {
	switch turn := g.Turn.(type) {
	case StartTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		return g.rollAndMove(pID, turn.Rolls)

	case JailedTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		if turn.PreRolled {
			// attempts exhausted; only the fine releases now
			return ErrIllegalState
		}
		return g.jailRoll(pID, turn.Rolls)

	case AuxRollPromptTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		player := g.Players[pID]
		tile := TileDB[player.Location]
		ownership := g.Ownership[tile.ID]
		dice1, dice2 := g.rollDie(), g.rollDie()
		g.setTurn(AuxRollResultTurn{
			PID:               pID,
			Rolls:             turn.Rolls,
			Card:              turn.Card,
			Dice1:             dice1,
			Dice2:             dice2,
			Value:             10 * (dice1 + dice2),
			PotentialBankrupt: ownership.Owner,
		})
		return nil
	}
	return ErrIllegalState
}

func (g *Game) rollAndMove(pID int, rolls []Roll) error {
	dice1, dice2 := g.rollDie(), g.rollDie()
	roll := Roll{Dice1: dice1, Dice2: dice2}
	rolls = append(rolls, roll)

	// third consecutive double is speeding
	if roll.IsDouble() && len(rolls) >= 3 {
		g.sendToJail(pID, rolls)
		return nil
	}

	player := g.Players[pID]
	g.setTurn(DiceRollTurn{PID: pID, Rolls: rolls, Dice1: dice1, Dice2: dice2})
	g.moveForwardTo((player.Location + dice1 + dice2) % BoardSize)
	return nil
}

func (g *Game) jailRoll(pID int, rolls []Roll) error {
	dice1, dice2 := g.rollDie(), g.rollDie()
	roll := Roll{Dice1: dice1, Dice2: dice2}
	rolls = append(rolls, roll)
	player := g.Players[pID]

	if !roll.IsDouble() {
		player.Jailed--
		g.publishPlayer(pID)
		if player.Jailed == 0 {
			// last attempt failed; the roll is stored and replays once
			// the fine is paid
			g.setTurn(JailedTurn{
				PID:               pID,
				Rolls:             rolls,
				Indicators:        g.indicators(player),
				PreRolled:         true,
				PotentialBankrupt: -1,
			})
			return nil
		}
		g.setTurn(EndTurn{PID: pID, Rolls: rolls})
		return nil
	}

	// doubles walk free immediately. The escape roll does not earn a
	// re-roll, so a non-double sentinel is appended behind it.
	player.Jailed = 0
	g.publishPlayer(pID)
	rolls = append(rolls, Roll{Dice1: 1, Dice2: -1})
	g.setTurn(DiceRollTurn{PID: pID, Rolls: rolls, Dice1: dice1, Dice2: dice2})
	g.moveForwardTo((player.Location + dice1 + dice2) % BoardSize)
	return nil
}

// moveForwardTo walks the current player tile by tile to target, paying the
// GO bonus on wrap. Movement is only legal from a diceroll or card_result
// state; landing resolution runs when the walk finishes.
func (g *Game) moveForwardTo(target int) {
	g.move(target, false)
}

// moveBackwardTo walks tile by tile in reverse; no GO bonus is paid.
func (g *Game) moveBackwardTo(target int) {
	for target < 0 {
		target += BoardSize
	}
	g.move(target%BoardSize, true)
}

func (g *Game) move(target int, backwards bool) {
	var pID int
	switch turn := g.Turn.(type) {
	case DiceRollTurn:
		pID = turn.PID
	case CardResultTurn:
		pID = turn.PID
	default:
		return
	}
	player := g.Players[pID]
	team := g.Teams[player.Team]
	for player.Location != target {
		if backwards {
			player.Location--
			if player.Location < 0 {
				player.Location = BoardSize - 1
			}
		} else {
			player.Location++
			if player.Location >= BoardSize {
				player.Location = 0
				team.Money += GoBonus
				g.publishTeam(team.TID)
			}
		}
		g.publishPlayer(pID)
		if player.Location != target && g.stepDelay > 0 {
			time.Sleep(g.stepDelay)
		}
	}
	g.onTileLanded()
}

// onTileLanded resolves the tile under the player once movement stops.
func (g *Game) onTileLanded() {
	var pID int
	var rolls []Roll
	switch turn := g.Turn.(type) {
	case DiceRollTurn:
		pID, rolls = turn.PID, turn.Rolls
	case CardResultTurn:
		pID, rolls = turn.PID, turn.Rolls
	default:
		return
	}
	player := g.Players[pID]
	tile := TileDB[player.Location]

	switch {
	case tile.IsPurchasable():
		ownership := g.Ownership[tile.ID]
		switch {
		case ownership.Owner == -1:
			g.setTurn(UnownedTurn{PID: pID, Rolls: rolls, Property: tile.ID})
		case ownership.Owner != player.Team && ownership.HouseCount != -1:
			price, err := g.rentFor(tile, ownership)
			if errors.Is(err, errAuxRollRequired) {
				card := g.Turn.(CardResultTurn).Card
				g.setTurn(AuxRollPromptTurn{PID: pID, Rolls: rolls, Card: card})
				return
			}
			g.setTurn(PayRentTurn{
				PID:               pID,
				Rolls:             rolls,
				Property:          tile.ID,
				Price:             price,
				PotentialBankrupt: ownership.Owner,
			})
		default:
			// own property or a mortgaged one; nothing owed
			g.setTurn(EndTurn{PID: pID, Rolls: rolls})
		}

	case tile.Type == SpaceTax:
		g.setTurn(PayRentTurn{
			PID:               pID,
			Rolls:             rolls,
			Property:          tile.ID,
			Price:             tile.Cost,
			PotentialBankrupt: -1,
		})

	case tile.Type == SpaceCardDraw:
		g.setTurn(CardPromptTurn{PID: pID, Rolls: rolls, Deck: Deck(tile.Category)})

	case tile.Type == SpaceGotoJail:
		g.sendToJail(pID, rolls)

	default:
		g.setTurn(EndTurn{PID: pID, Rolls: rolls})
	}
}

// sendToJail teleports the player to jail with three escape attempts and
// ends the movement phase of their turn.
func (g *Game) sendToJail(pID int, rolls []Roll) {
	player := g.Players[pID]
	player.Location = JailIndex
	player.Jailed = 3
	g.publishPlayer(pID)
	g.setTurn(EndTurn{PID: pID, Rolls: rolls})
}

// RequestPayRent settles the pending payment: rent or tax in a payrent
// state, the jail fine in a jailed state. Paying the fine after a forced
// pre-roll replays the stored dice.
func (g *Game) RequestPayRent(pID int) error {
	switch turn := g.Turn.(type) {
	case PayRentTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		team := g.playerTeam(pID)
		if team.Money < turn.Price {
			return ErrInsufficientFunds
		}
		tile, ok := TileByID(turn.Property)
		if !ok {
			return ErrInvalidRequest
		}
		if tile.IsPurchasable() {
			owner := g.Teams[g.Ownership[tile.ID].Owner]
			owner.Money += turn.Price
			g.publishTeam(owner.TID)
		}
		team.Money -= turn.Price
		g.publishTeam(team.TID)
		g.setTurn(EndTurn{PID: pID, Rolls: turn.Rolls})
		return nil

	case JailedTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		team := g.playerTeam(pID)
		if team.Money < JailFine {
			return ErrInsufficientFunds
		}
		team.Money -= JailFine
		g.publishTeam(team.TID)
		player := g.Players[pID]
		player.Jailed = 0
		g.publishPlayer(pID)

		if turn.PreRolled {
			if len(turn.Rolls) == 0 {
				return ErrNoStoredRoll
			}
			stored := turn.Rolls[len(turn.Rolls)-1]
			g.setTurn(DiceRollTurn{
				PID:   pID,
				Rolls: turn.Rolls,
				Dice1: stored.Dice1,
				Dice2: stored.Dice2,
			})
			g.moveForwardTo((player.Location + stored.Dice1 + stored.Dice2) % BoardSize)
			return nil
		}
		g.setTurn(TransitionTurn{PID: pID, Rolls: turn.Rolls})
		g.startTurn(false)
		return nil
	}
	return ErrIllegalState
}

// RequestPurchase buys the unowned property under the player at list price.
func (g *Game) RequestPurchase(pID int) error {
	turn, ok := g.Turn.(UnownedTurn)
	if !ok {
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}
	tile, ok := TileByID(turn.Property)
	if !ok {
		return ErrInvalidRequest
	}
	team := g.playerTeam(pID)
	if team.Money < tile.PurchasePrice {
		return ErrInsufficientFunds
	}
	team.Money -= tile.PurchasePrice
	ownership := g.Ownership[tile.ID]
	ownership.Owner = team.TID
	g.publishTeam(team.TID)
	g.publishOwnership(tile.ID)
	g.setTurn(EndTurn{PID: pID, Rolls: turn.Rolls})
	return nil
}

// RequestPass declines to buy the unowned property.
func (g *Game) RequestPass(pID int) error {
	turn, ok := g.Turn.(UnownedTurn)
	if !ok {
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}
	g.setTurn(EndTurn{PID: pID, Rolls: turn.Rolls})
	return nil
}

// RequestCard draws from the deck the player landed on.
func (g *Game) RequestCard(pID int) error {
	turn, ok := g.Turn.(CardPromptTurn)
	if !ok {
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}
	card, ok := g.Decks.Draw(turn.Deck)
	if !ok {
		return ErrEmptyDeck
	}
	g.setTurn(CardResultTurn{PID: pID, Rolls: turn.Rolls, Card: card, PotentialBankrupt: -1})
	return nil
}

// AcknowledgeCard applies the drawn card's effect, or settles the auxiliary
// utility rent after its roll.
func (g *Game) AcknowledgeCard(pID int) error {
	switch turn := g.Turn.(type) {
	case CardResultTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		return g.applyCard(pID, turn)

	case AuxRollResultTurn:
		if err := g.requireActor(pID); err != nil {
			return err
		}
		team := g.playerTeam(pID)
		if team.Money < turn.Value {
			return ErrInsufficientFunds
		}
		player := g.Players[pID]
		owner := g.Teams[g.Ownership[TileDB[player.Location].ID].Owner]
		team.Money -= turn.Value
		owner.Money += turn.Value
		g.publishTeam(team.TID)
		g.publishTeam(owner.TID)
		g.setTurn(EndTurn{PID: pID, Rolls: turn.Rolls})
		return nil
	}
	return ErrIllegalState
}

func (g *Game) applyCard(pID int, turn CardResultTurn) error {
	player := g.Players[pID]
	team := g.Teams[player.Team]
	card := turn.Card

	switch card.Type {
	case CardJail:
		g.sendToJail(pID, turn.Rolls)
		return nil

	case CardTeleport:
		dest := TileIndex(card.Dest)
		if dest == -1 {
			return ErrInvalidRequest
		}
		g.moveForwardTo(dest)
		return nil

	case CardTeleportCategory:
		g.moveForwardTo(g.nearestOfType(player.Location, SpaceType(card.Dest)))
		return nil

	case CardTeleportRelative:
		if card.Value >= 0 {
			g.moveForwardTo((player.Location + card.Value) % BoardSize)
		} else {
			g.moveBackwardTo(player.Location + card.Value)
		}
		return nil

	case CardMoneyGain:
		team.Money += card.Value
		g.publishTeam(team.TID)

	case CardMoneyGainOthers:
		collected := 0
		for tID, other := range g.Teams {
			if tID == team.TID || !other.Alive {
				continue
			}
			other.Money -= card.Value
			g.publishTeam(tID)
			collected += card.Value
		}
		team.Money += collected
		g.publishTeam(team.TID)

	case CardMoneyLose:
		if team.Money < card.Value {
			return ErrInsufficientFunds
		}
		team.Money -= card.Value
		g.publishTeam(team.TID)

	case CardMoneyLoseOthers:
		var others []int
		for tID, other := range g.Teams {
			if tID != team.TID && other.Alive {
				others = append(others, tID)
			}
		}
		total := card.Value * len(others)
		if team.Money < total {
			return ErrInsufficientFunds
		}
		team.Money -= total
		g.publishTeam(team.TID)
		for _, tID := range others {
			g.Teams[tID].Money += card.Value
			g.publishTeam(tID)
		}

	case CardKeepOutOfJail, CardRepairs:
		// defined but not dealt; acknowledging discards
	}

	g.setTurn(EndTurn{PID: pID, Rolls: turn.Rolls})
	return nil
}

// nearestOfType returns the index of the next tile of the given type ahead
// of from, wrapping past GO.
func (g *Game) nearestOfType(from int, spaceType SpaceType) int {
	first := -1
	for i, tile := range TileDB {
		if tile.Type != spaceType {
			continue
		}
		if first == -1 {
			first = i
		}
		if i > from {
			return i
		}
	}
	return first
}

// RequestEndTurn closes the turn. A double on the latest roll earns another
// roll (up to the speeding limit) unless the player just landed in jail.
func (g *Game) RequestEndTurn(pID int) error {
	turn, ok := g.Turn.(EndTurn)
	if !ok {
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}
	player := g.Players[pID]
	if player.Jailed == 0 && len(turn.Rolls) > 0 && len(turn.Rolls) < 3 {
		if turn.Rolls[len(turn.Rolls)-1].IsDouble() {
			g.setTurn(StartTurn{PID: pID, Rolls: turn.Rolls, Indicators: g.indicators(player)})
			return nil
		}
	}
	return g.nextTurn()
}

// nextTurn rotates to the next player on a living team, or declares the
// winner when only one team remains.
func (g *Game) nextTurn() error {
	pID, ok := actorOf(g.Turn)
	if !ok {
		return ErrIllegalState
	}
	current := -1
	for i, order := range g.RollOrder {
		if order == pID {
			current = i
			break
		}
	}
	if current == -1 {
		return ErrMissingRollOrder
	}

	alive := make([]int, 0, len(g.Teams))
	for tID := 0; tID < len(g.Teams); tID++ {
		if g.Teams[tID].Alive {
			alive = append(alive, tID)
		}
	}
	if len(alive) == 1 {
		g.setTurn(GameEndTurn{Winner: alive[0]})
		return nil
	}

	next := current
	for {
		next = (next + 1) % len(g.RollOrder)
		candidate := g.Players[g.RollOrder[next]]
		if g.Teams[candidate.Team].Alive {
			break
		}
	}
	g.setTurn(TransitionTurn{PID: g.RollOrder[next], Rolls: []Roll{}})
	g.startTurn(false)
	return nil
}
