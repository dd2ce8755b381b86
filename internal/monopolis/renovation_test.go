package monopolis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// brownGroupGame gives team 0 the Brown colour group with player 0 in a
// StartTurn, the usual position for building.
func brownGroupGame(t *testing.T) *Game {
	t.Helper()
	g := newStartedGame(t)
	g.Ownership["BrownA"].Owner = 0
	g.Ownership["BrownB"].Owner = 0
	return g
}

func TestRenovation_BuildsOneHouse(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)

	assert.NoError(g.RequestRenovation(0, "BrownA", 1))

	assert.Equal(1, g.Ownership["BrownA"].HouseCount)
	assert.Equal(startingMoney-50, g.Teams[0].Money) // first side, 50 per house
	assert.Equal(TotalHouses-1, g.Market.Houses)
}

func TestRenovation_RequiresWholeColourGroup(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Ownership["BrownA"].Owner = 0
	g.Ownership["BrownB"].Owner = 1

	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 1), ErrInvalidRequest)
}

func TestRenovation_EvenBuildingRule(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)

	assert.NoError(g.RequestRenovation(0, "BrownA", 1))
	// BrownA at 2 while BrownB sits at 0 would spread the group by 2
	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 2), ErrInvalidRequest)

	assert.NoError(g.RequestRenovation(0, "BrownB", 1))
	assert.NoError(g.RequestRenovation(0, "BrownA", 2))
}

func TestRenovation_HotelSwapsHousesBackToPool(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Ownership["BrownA"].HouseCount = 4
	g.Ownership["BrownB"].HouseCount = 4
	g.Market.Houses = TotalHouses - 8

	assert.NoError(g.RequestRenovation(0, "BrownA", 5))

	assert.Equal(5, g.Ownership["BrownA"].HouseCount)
	assert.Equal(TotalHouses-4, g.Market.Houses, "hotel returns 4 houses")
	assert.Equal(TotalHotels-1, g.Market.Hotels)
	assert.Equal(startingMoney-50, g.Teams[0].Money)
}

func TestRenovation_PoolExhaustionBlocksBuild(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Market.Houses = 0

	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 1), ErrInvalidRequest)
}

func TestRenovation_SellPaysHalfPrice(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Ownership["BrownA"].HouseCount = 2
	g.Ownership["BrownB"].HouseCount = 1
	g.Market.Houses = TotalHouses - 3

	assert.NoError(g.RequestRenovation(0, "BrownA", 1))

	assert.Equal(1, g.Ownership["BrownA"].HouseCount)
	assert.Equal(startingMoney+25, g.Teams[0].Money)
	assert.Equal(TotalHouses-2, g.Market.Houses)
}

func TestRenovation_DebtStateAllowsOnlySales(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Ownership["BrownA"].HouseCount = 2
	g.Ownership["BrownB"].HouseCount = 2
	g.Market.Houses = TotalHouses - 4
	g.Turn = PayRentTurn{PID: 0, Rolls: []Roll{{1, 2}}, Property: "RedA", Price: 900, PotentialBankrupt: 1}

	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 3), ErrIllegalState)
	assert.NoError(g.RequestRenovation(0, "BrownA", 1))
}

func TestRenovation_MortgageAndLift(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)

	// mortgage pays half the 60 purchase price
	assert.NoError(g.RequestRenovation(0, "BrownA", -1))
	assert.Equal(-1, g.Ownership["BrownA"].HouseCount)
	assert.Equal(startingMoney+30, g.Teams[0].Money)

	// lifting costs the half back plus 10% of the purchase price
	assert.NoError(g.RequestRenovation(0, "BrownA", 0))
	assert.Equal(0, g.Ownership["BrownA"].HouseCount)
	assert.Equal(startingMoney+30-33, g.Teams[0].Money)
}

func TestRenovation_MortgageBlockedByGroupHouses(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Ownership["BrownB"].HouseCount = 1
	g.Market.Houses = TotalHouses - 1

	assert.ErrorIs(g.RequestRenovation(0, "BrownA", -1), ErrInvalidRequest)
}

func TestRenovation_MortgagedTileCannotBuild(t *testing.T) {
	assert := assert.New(t)

	g := brownGroupGame(t)
	g.Ownership["BrownA"].HouseCount = -1

	assert.ErrorIs(g.RequestRenovation(0, "BrownB", 1), ErrInvalidRequest)
	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 3), ErrInvalidRequest)
}

func TestRenovation_RailroadsOnlyMortgage(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Ownership["RailroadA"].Owner = 0

	assert.ErrorIs(g.RequestRenovation(0, "RailroadA", 1), ErrInvalidRequest)

	assert.NoError(g.RequestRenovation(0, "RailroadA", -1))
	assert.Equal(startingMoney+100, g.Teams[0].Money)
}

func TestRenovation_OtherTeamsProperty(t *testing.T) {
	assert := assert.New(t)

	g := newStartedGame(t)
	g.Ownership["BrownA"].Owner = 1
	g.Ownership["BrownB"].Owner = 1

	assert.ErrorIs(g.RequestRenovation(0, "BrownA", 1), ErrInvalidRequest)
}
