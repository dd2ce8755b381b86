package monopolis

// housesUsed and hotelsUsed translate a renovation level into housing
// market stock: levels 1-4 hold that many houses, level 5 holds one hotel
// and no houses.
func housesUsed(level int) int {
	if level >= 1 && level <= 4 {
		return level
	}
	return 0
}

func hotelsUsed(level int) int {
	if level == 5 {
		return 1
	}
	return 0
}

// RequestRenovation moves a tile the requester's team owns to a target
// level: -1 mortgaged, 0 bare, 1-4 houses, 5 hotel. Building and selling
// settle in one step. During a debt state (payrent, card payment, jail
// fine) only level reductions are allowed, so a player can raise cash but
// not spend it.
func (g *Game) RequestRenovation(pID int, propertyID string, target int) error {
	sellOnly := false
	switch g.Turn.(type) {
	case StartTurn, EndTurn, UnownedTurn, CardPromptTurn:
	case PayRentTurn, CardResultTurn, AuxRollResultTurn, JailedTurn:
		sellOnly = true
	default:
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}

	tile, ok := TileByID(propertyID)
	if !ok || !tile.IsPurchasable() {
		return ErrInvalidRequest
	}
	ownership := g.Ownership[propertyID]
	player := g.Players[pID]
	team := g.Teams[player.Team]
	if ownership.Owner != team.TID {
		return ErrInvalidRequest
	}
	current := ownership.HouseCount
	if target < -1 || target > 5 || target == current {
		return ErrInvalidRequest
	}
	if sellOnly && target > current {
		return ErrIllegalState
	}

	// mortgaging is its own 0 <-> -1 transition
	if target == -1 || current == -1 {
		return g.toggleMortgage(tile, ownership, team, target)
	}

	if tile.Type != SpaceEstate {
		return ErrInvalidRequest
	}

	// building or selling houses requires the whole colour group,
	// unmortgaged, and the group must stay within one level of even
	group := EstatesInCategory(tile.Category)
	min, max := target, target
	for _, i := range group {
		other := g.Ownership[TileDB[i].ID]
		if other.Owner != team.TID || other.HouseCount == -1 {
			return ErrInvalidRequest
		}
		level := other.HouseCount
		if TileDB[i].ID == propertyID {
			continue
		}
		if level < min {
			min = level
		}
		if level > max {
			max = level
		}
	}
	if max-min > 1 {
		return ErrInvalidRequest
	}

	deltaHouses := housesUsed(target) - housesUsed(current)
	deltaHotels := hotelsUsed(target) - hotelsUsed(current)
	if g.Market.Houses-deltaHouses < 0 || g.Market.Hotels-deltaHotels < 0 {
		return ErrInvalidRequest
	}

	unit := HouseCost(TileIndex(propertyID))
	if target > current {
		cost := (target - current) * unit
		if team.Money < cost {
			return ErrInsufficientFunds
		}
		team.Money -= cost
	} else {
		team.Money += (current - target) * unit / 2
	}

	g.Market.Houses -= deltaHouses
	g.Market.Hotels -= deltaHotels
	ownership.HouseCount = target
	g.publishOwnership(propertyID)
	g.publishTeam(team.TID)
	g.publishMarket()
	return nil
}

// toggleMortgage handles the 0 -> -1 and -1 -> 0 transitions. Mortgaging
// pays out half the purchase price; lifting it costs that plus 10%
// interest. An estate cannot mortgage while its colour group carries
// buildings.
func (g *Game) toggleMortgage(tile Space, ownership *PropertyOwnership, team *TeamState, target int) error {
	current := ownership.HouseCount
	switch {
	case current == 0 && target == -1:
		if tile.Type == SpaceEstate {
			for _, i := range EstatesInCategory(tile.Category) {
				other := g.Ownership[TileDB[i].ID]
				if other.Owner == team.TID && other.HouseCount > 0 {
					return ErrInvalidRequest
				}
			}
		}
		team.Money += tile.PurchasePrice / 2

	case current == -1 && target == 0:
		cost := tile.PurchasePrice/2 + tile.PurchasePrice/20
		if team.Money < cost {
			return ErrInsufficientFunds
		}
		team.Money -= cost

	default:
		return ErrInvalidRequest
	}

	ownership.HouseCount = target
	g.publishOwnership(tile.ID)
	g.publishTeam(team.TID)
	return nil
}
