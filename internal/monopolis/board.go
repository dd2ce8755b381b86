package monopolis

// BoardSize is the number of spaces on the standard board.
const BoardSize = 40

// Well-known board positions.
const (
	GoIndex       = 0
	JailIndex     = 10
	GotoJailIndex = 30
)

// GoBonus is paid from the bank each time a player passes GO moving forward.
const GoBonus = 200

// JailFine is the payment that releases a player from jail.
const JailFine = 50

type SpaceType string

const (
	SpaceGO          SpaceType = "GO"
	SpaceJail        SpaceType = "Jail"
	SpaceFreeParking SpaceType = "FreeParking"
	SpaceGotoJail    SpaceType = "GOTOJail"
	SpaceEstate      SpaceType = "Estate"
	SpaceRailroad    SpaceType = "Railroad"
	SpaceUtility     SpaceType = "Utility"
	SpaceCardDraw    SpaceType = "CardDraw"
	SpaceTax         SpaceType = "Tax"
)

// Space is one board tile. Category holds the colour group for estates and
// the deck name for card-draw spaces. Rent is indexed by house count for
// estates; Multipliers is indexed by owned-utility count for utilities.
type Space struct {
	Type          SpaceType `json:"type"`
	ID            string    `json:"id"`
	Category      string    `json:"category,omitempty"`
	PurchasePrice int       `json:"purchasePrice,omitempty"`
	Rent          []int     `json:"rent,omitempty"`
	Multipliers   []int     `json:"multipliers,omitempty"`
	Cost          int       `json:"cost,omitempty"`
}

func (s Space) IsPurchasable() bool {
	switch s.Type {
	case SpaceEstate, SpaceRailroad, SpaceUtility:
		return true
	}
	return false
}

// TileDB is the ordered board definition, consumed read-only by the rules
// engine for price and rent lookups.
var TileDB = [BoardSize]Space{
	{Type: SpaceGO, ID: "GO"},
	{Type: SpaceEstate, ID: "BrownA", Category: "Brown", PurchasePrice: 60, Rent: []int{2, 10, 30, 90, 160, 250}},
	{Type: SpaceCardDraw, ID: "CommunityChestA", Category: "CommunityChest"},
	{Type: SpaceEstate, ID: "BrownB", Category: "Brown", PurchasePrice: 60, Rent: []int{4, 20, 60, 180, 320, 450}},
	{Type: SpaceTax, ID: "IncomeTax", Cost: 200},
	{Type: SpaceRailroad, ID: "RailroadA", PurchasePrice: 200},
	{Type: SpaceEstate, ID: "LightBlueA", Category: "LightBlue", PurchasePrice: 100, Rent: []int{6, 30, 90, 270, 400, 550}},
	{Type: SpaceCardDraw, ID: "ChanceA", Category: "Chance"},
	{Type: SpaceEstate, ID: "LightBlueB", Category: "LightBlue", PurchasePrice: 100, Rent: []int{6, 30, 90, 270, 400, 550}},
	{Type: SpaceEstate, ID: "LightBlueC", Category: "LightBlue", PurchasePrice: 120, Rent: []int{8, 40, 100, 300, 450, 600}},
	{Type: SpaceJail, ID: "Jail"},
	{Type: SpaceEstate, ID: "PinkA", Category: "Pink", PurchasePrice: 140, Rent: []int{10, 50, 150, 450, 625, 750}},
	{Type: SpaceUtility, ID: "ElectricCompany", PurchasePrice: 150, Multipliers: []int{4, 10}},
	{Type: SpaceEstate, ID: "PinkB", Category: "Pink", PurchasePrice: 140, Rent: []int{10, 50, 150, 450, 625, 750}},
	{Type: SpaceEstate, ID: "PinkC", Category: "Pink", PurchasePrice: 160, Rent: []int{12, 60, 180, 500, 700, 900}},
	{Type: SpaceRailroad, ID: "RailroadB", PurchasePrice: 200},
	{Type: SpaceEstate, ID: "OrangeA", Category: "Orange", PurchasePrice: 180, Rent: []int{14, 70, 200, 550, 750, 950}},
	{Type: SpaceCardDraw, ID: "CommunityChestB", Category: "CommunityChest"},
	{Type: SpaceEstate, ID: "OrangeB", Category: "Orange", PurchasePrice: 180, Rent: []int{14, 70, 200, 550, 750, 950}},
	{Type: SpaceEstate, ID: "OrangeC", Category: "Orange", PurchasePrice: 200, Rent: []int{16, 80, 220, 600, 800, 1000}},
	{Type: SpaceFreeParking, ID: "FreeParking"},
	{Type: SpaceEstate, ID: "RedA", Category: "Red", PurchasePrice: 220, Rent: []int{18, 90, 250, 700, 875, 1050}},
	{Type: SpaceCardDraw, ID: "ChanceB", Category: "Chance"},
	{Type: SpaceEstate, ID: "RedB", Category: "Red", PurchasePrice: 220, Rent: []int{18, 90, 250, 700, 875, 1050}},
	{Type: SpaceEstate, ID: "RedC", Category: "Red", PurchasePrice: 240, Rent: []int{20, 100, 300, 750, 925, 1100}},
	{Type: SpaceRailroad, ID: "RailroadC", PurchasePrice: 200},
	{Type: SpaceEstate, ID: "YellowA", Category: "Yellow", PurchasePrice: 260, Rent: []int{22, 110, 330, 800, 950, 1150}},
	{Type: SpaceEstate, ID: "YellowB", Category: "Yellow", PurchasePrice: 260, Rent: []int{22, 110, 330, 800, 950, 1150}},
	{Type: SpaceUtility, ID: "Waterworks", PurchasePrice: 150, Multipliers: []int{4, 10}},
	{Type: SpaceEstate, ID: "YellowC", Category: "Yellow", PurchasePrice: 280, Rent: []int{24, 120, 360, 850, 1025, 1200}},
	{Type: SpaceGotoJail, ID: "GOTOJail"},
	{Type: SpaceEstate, ID: "GreenA", Category: "Green", PurchasePrice: 300, Rent: []int{26, 130, 390, 900, 1100, 1275}},
	{Type: SpaceEstate, ID: "GreenB", Category: "Green", PurchasePrice: 300, Rent: []int{26, 130, 390, 900, 1100, 1275}},
	{Type: SpaceCardDraw, ID: "CommunityChestC", Category: "CommunityChest"},
	{Type: SpaceEstate, ID: "GreenC", Category: "Green", PurchasePrice: 320, Rent: []int{28, 150, 450, 1000, 1200, 1400}},
	{Type: SpaceRailroad, ID: "RailroadD", PurchasePrice: 200},
	{Type: SpaceCardDraw, ID: "ChanceC", Category: "Chance"},
	{Type: SpaceEstate, ID: "DarkBlueA", Category: "DarkBlue", PurchasePrice: 350, Rent: []int{35, 175, 500, 1100, 1300, 1500}},
	{Type: SpaceTax, ID: "SuperTax", Cost: 100},
	{Type: SpaceEstate, ID: "DarkBlueB", Category: "DarkBlue", PurchasePrice: 400, Rent: []int{50, 200, 600, 1400, 1700, 2000}},
}

// TileIndex returns the board position of a tile id, or -1.
func TileIndex(id string) int {
	for i, tile := range TileDB {
		if tile.ID == id {
			return i
		}
	}
	return -1
}

// TileByID returns the space definition for a tile id.
func TileByID(id string) (Space, bool) {
	i := TileIndex(id)
	if i == -1 {
		return Space{}, false
	}
	return TileDB[i], true
}

// EstatesInCategory returns the board indexes of every estate in a colour
// group, in board order.
func EstatesInCategory(category string) []int {
	var indexes []int
	for i, tile := range TileDB {
		if tile.Type == SpaceEstate && tile.Category == category {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// HouseCost is the per-house build price for an estate, derived from which
// side of the board it sits on (50/100/150/200).
func HouseCost(tileIndex int) int {
	return (tileIndex/10 + 1) * 50
}

// PlayerColours is the palette clients pick from; colours are unique per
// lobby.
var PlayerColours = []int{
	0xff0303, // Red
	0x0042ff, // Blue
	0x1be7ba, // Teal
	0x550081, // Purple
	0xfefc00, // Yellow
	0xfe890d, // Orange
	0x21bf00, // Green
	0xe45caf, // Pink
	0x939596, // Gray
	0x7ebff1, // Light Blue
	0x106247, // Dark Green
	0x4f2b05, // Brown
	0x9c0000, // Maroon
	0x0000c3, // Navy
	0x00ebff, // Turquois
	0xbd00ff, // Violet
	0xecce87, // Wheat
	0xf7a58b, // Peach
	0xbfff81, // Mint
	0xdbb8eb, // Lavender
	0x4f5055, // Coal
	0xecf0ff, // Snow
	0x00781e, // Emerald
	0xa56f34, // Peanut
	0x2e2d2e, // Black
}
