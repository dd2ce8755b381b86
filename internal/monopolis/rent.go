package monopolis

import "errors"

// errAuxRollRequired signals that a card-driven utility visit cannot price
// rent from the movement dice and needs a dedicated roll first.
var errAuxRollRequired = errors.New("utility rent requires an auxiliary roll")

var railroadRents = []int{25, 50, 100, 200}

// rentFor prices a stay on an owned, unmortgaged tile given the current
// turn state. Estate rent doubles on an unimproved full colour group;
// railroad rent scales with the owner's railroad count and doubles when the
// visit came from an advance-to-railroad card; utility rent multiplies the
// landing dice by 4 or 10 depending on how many utilities the owner holds.
func (g *Game) rentFor(tile Space, ownership *PropertyOwnership) (int, error) {
	if ownership.HouseCount == -1 {
		return 0, nil
	}

	switch tile.Type {
	case SpaceEstate:
		level := ownership.HouseCount
		if level > len(tile.Rent)-1 {
			level = len(tile.Rent) - 1
		}
		if g.ownsWholeGroup(ownership.Owner, tile.Category) {
			if level == 0 {
				return tile.Rent[0] * 2, nil
			}
			return tile.Rent[level], nil
		}
		return tile.Rent[0], nil

	case SpaceRailroad:
		owned := g.countOwnedOfType(ownership.Owner, SpaceRailroad)
		rent := railroadRents[owned-1]
		if turn, ok := g.Turn.(CardResultTurn); ok && turn.Card.Type == CardTeleportCategory {
			return rent * 2, nil
		}
		return rent, nil

	case SpaceUtility:
		turn, ok := g.Turn.(DiceRollTurn)
		if !ok {
			if _, fromCard := g.Turn.(CardResultTurn); fromCard {
				return 0, errAuxRollRequired
			}
			return 0, ErrIllegalState
		}
		owned := g.countOwnedOfType(ownership.Owner, SpaceUtility)
		return tile.Multipliers[owned-1] * (turn.Dice1 + turn.Dice2), nil
	}
	return 0, ErrInvalidRequest
}

func (g *Game) ownsWholeGroup(tID int, category string) bool {
	for _, i := range EstatesInCategory(category) {
		if g.Ownership[TileDB[i].ID].Owner != tID {
			return false
		}
	}
	return true
}

func (g *Game) countOwnedOfType(tID int, spaceType SpaceType) int {
	owned := 0
	for _, tile := range TileDB {
		if tile.Type == spaceType && g.Ownership[tile.ID].Owner == tID {
			owned++
		}
	}
	return owned
}
