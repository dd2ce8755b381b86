package monopolis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBankrupt_RefusedWhenDebtIsPayable(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "BrownA", Price: 50, PotentialBankrupt: 1}

	assert.ErrorIs(g.RequestBankrupt(0, false), ErrInvalidRequest)
	assert.Equal(UINone, g.UI.Type)
}

func TestBankrupt_TwoPhaseConfirm(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Teams[0].Money = 30
	g.Ownership["BrownA"].Owner = 0
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "RedA", Price: 50, PotentialBankrupt: 1}

	// first request only raises the modal
	assert.NoError(g.RequestBankrupt(0, false))
	assert.Equal(UIBankruptConfirm, g.UI.Type)
	assert.True(g.Teams[0].Alive)
	assert.Equal(30, g.Teams[0].Money)

	// confirmation liquidates and hands everything to the creditor
	assert.NoError(g.RequestBankrupt(0, true))
	assert.False(g.Teams[0].Alive)
	assert.Equal(0, g.Teams[0].Money)
	assert.Equal(1, g.Ownership["BrownA"].Owner)
	assert.Equal(startingMoney+30, g.Teams[1].Money)
	assert.Equal(UINone, g.UI.Type)
}

func TestBankrupt_ConfirmWithoutModalRejected(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Teams[0].Money = 30
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "RedA", Price: 50, PotentialBankrupt: 1}

	assert.ErrorIs(g.RequestBankrupt(0, true), ErrIllegalState)
	assert.True(g.Teams[0].Alive)
}

func TestBankrupt_ToBankResetsProperties(t *testing.T) {
	assert := assert.New(t)

	g := NewGame(nil)
	assert.NoError(g.AddTeam("A"))
	assert.NoError(g.AddTeam("B"))
	assert.NoError(g.AddTeam("C"))
	for i, localID := range []string{"local-a", "local-b", "local-c"} {
		assert.NoError(g.AddRosterPlayer(localID))
		assert.NoError(g.ConfigurePlayer(localID, "Player", PlayerColours[i]))
		assert.NoError(g.JoinTeam(localID, i))
	}
	assert.NoError(g.Start())

	g.Teams[0].Money = 30
	g.Ownership["BrownA"].Owner = 0
	g.Ownership["BrownB"].Owner = 0
	g.Ownership["BrownB"].HouseCount = -1
	// tax debt, creditor is the bank
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "IncomeTax", Price: 200, PotentialBankrupt: -1}

	assert.NoError(g.RequestBankrupt(0, false))
	assert.NoError(g.RequestBankrupt(0, true))

	assert.False(g.Teams[0].Alive)
	assert.Equal(-1, g.Ownership["BrownA"].Owner)
	assert.Equal(-1, g.Ownership["BrownB"].Owner)
	assert.Equal(0, g.Ownership["BrownB"].HouseCount, "bank reclaims tiles unmortgaged")
}

func TestBankrupt_HousesSellBackAtHalfPrice(t *testing.T) {
	assert := assert.New(t)

	g := NewGame(nil)
	assert.NoError(g.AddTeam("A"))
	assert.NoError(g.AddTeam("B"))
	assert.NoError(g.AddTeam("C"))
	for i, localID := range []string{"local-a", "local-b", "local-c"} {
		assert.NoError(g.AddRosterPlayer(localID))
		assert.NoError(g.ConfigurePlayer(localID, "Player", PlayerColours[i]))
		assert.NoError(g.JoinTeam(localID, i))
	}
	assert.NoError(g.Start())

	g.Teams[0].Money = 0
	g.Ownership["BrownA"].Owner = 0
	g.Ownership["BrownA"].HouseCount = 2
	g.Market.Houses = TotalHouses - 2
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "RedA", Price: 100, PotentialBankrupt: 1}

	assert.NoError(g.RequestBankrupt(0, false))
	assert.NoError(g.RequestBankrupt(0, true))

	// two houses at 50 each sold for 50 total, then handed to the creditor
	assert.Equal(startingMoney+50, g.Teams[1].Money)
	assert.Equal(TotalHouses, g.Market.Houses)
	assert.Equal(0, g.Ownership["BrownA"].HouseCount)
	assert.Equal(1, g.Ownership["BrownA"].Owner)
}

func TestBankrupt_LastOpponentStandingWins(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Teams[0].Money = 30
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "RedA", Price: 50, PotentialBankrupt: 1}

	assert.NoError(g.RequestBankrupt(0, false))
	assert.NoError(g.RequestBankrupt(0, true))

	turn, ok := g.Turn.(GameEndTurn)
	assert.True(ok, "expected GameEndTurn, got %T", g.Turn)
	assert.Equal(1, turn.Winner)
	assert.Equal("over", g.Status())
}

func TestBankrupt_JailFineDebt(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Teams[0].Money = 20
	g.Players[0].Jailed = 3
	g.Turn = JailedTurn{PID: 0, Rolls: []Roll{}, Indicators: g.indicators(g.Players[0]), PotentialBankrupt: -1}

	assert.NoError(g.RequestBankrupt(0, false))
	assert.Equal(UIBankruptConfirm, g.UI.Type)
}
