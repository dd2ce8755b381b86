package monopolis

// debtFor extracts the payment the current state demands and who receives
// it (-1 for the bank). The second return is false when nothing is owed.
func (g *Game) debtFor(ts TurnState) (owed int, creditor int, ok bool) {
	switch turn := ts.(type) {
	case PayRentTurn:
		return turn.Price, turn.PotentialBankrupt, true
	case AuxRollResultTurn:
		return turn.Value, turn.PotentialBankrupt, true
	case JailedTurn:
		return JailFine, -1, true
	case CardResultTurn:
		switch turn.Card.Type {
		case CardMoneyLose:
			return turn.Card.Value, -1, true
		case CardMoneyLoseOthers:
			others := 0
			for tID, team := range g.Teams {
				if tID != g.Players[turn.PID].Team && team.Alive {
					others++
				}
			}
			return turn.Card.Value * others, -1, true
		}
	}
	return 0, -1, false
}

// RequestBankrupt is the two-phase surrender. The first call (confirm
// false) raises the confirmation modal; the second liquidates the team and
// passes the turn. A team that can still cover the debt is refused.
func (g *Game) RequestBankrupt(pID int, confirm bool) error {
	owed, creditor, ok := g.debtFor(g.Turn)
	if !ok {
		return ErrIllegalState
	}
	if err := g.requireActor(pID); err != nil {
		return err
	}
	team := g.playerTeam(pID)
	if team.Money >= owed {
		return ErrInvalidRequest
	}

	if !confirm {
		g.setUI(UIBankruptConfirm)
		return nil
	}
	if g.UI.Type != UIBankruptConfirm {
		return ErrIllegalState
	}

	g.liquidate(team, creditor)
	g.setUI(UINone)
	return g.nextTurn()
}

// liquidate sells the team's buildings back to the market at half price and
// hands everything that remains to the creditor. With the bank as creditor
// the tiles return unowned and unmortgaged; a team creditor inherits the
// tiles as they stand, mortgages included, plus the leftover cash.
func (g *Game) liquidate(team *TeamState, creditorTID int) {
	for tileID, ownership := range g.Ownership {
		if ownership.Owner != team.TID {
			continue
		}
		if ownership.HouseCount > 0 {
			unit := HouseCost(TileIndex(tileID))
			team.Money += ownership.HouseCount * unit / 2
			if ownership.HouseCount == 5 {
				g.Market.Hotels++
			} else {
				g.Market.Houses += ownership.HouseCount
			}
			ownership.HouseCount = 0
		}
		if creditorTID == -1 {
			ownership.Owner = -1
			ownership.HouseCount = 0
		} else {
			ownership.Owner = creditorTID
		}
		g.publishOwnership(tileID)
	}
	g.publishMarket()

	if creditorTID != -1 {
		creditor := g.Teams[creditorTID]
		creditor.Money += team.Money
		g.publishTeam(creditorTID)
	}
	team.Money = 0
	team.Alive = false
	g.publishTeam(team.TID)
}
