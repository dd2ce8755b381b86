package monopolis

import "math/rand"

// Deck names one of the two card piles.
type Deck string

const (
	Chance         Deck = "Chance"
	CommunityChest Deck = "CommunityChest"
)

type CardType string

const (
	CardTeleport         CardType = "teleport"
	CardTeleportCategory CardType = "teleport_category"
	CardTeleportRelative CardType = "teleport_relative"
	CardMoneyGain        CardType = "money_gain"
	CardMoneyGainOthers  CardType = "money_gain_others"
	CardMoneyLose        CardType = "money_lose"
	CardMoneyLoseOthers  CardType = "money_lose_others"
	CardJail             CardType = "jail"
	CardKeepOutOfJail    CardType = "fuckjail"
	CardRepairs          CardType = "repairs"
)

// Card is one drawn card effect. Dest is a tile id for teleport and a space
// type name (Railroad/Utility) for teleport_category. Value is an amount of
// money or a relative tile offset depending on Type. Text is a localization
// key resolved client-side.
type Card struct {
	Type  CardType `json:"type"`
	Dest  string   `json:"dest,omitempty"`
	Value int      `json:"value,omitempty"`
	House int      `json:"house,omitempty"`
	Hotel int      `json:"hotel,omitempty"`
	Text  string   `json:"text"`
}

// chanceCards and communityChestCards are the shipped deck contents. The
// repeated advance-to-railroad card is intentional. The get-out-of-jail and
// repairs cards are defined as types but not dealt; see DESIGN.md.
var chanceCards = []Card{
	{Type: CardTeleport, Dest: "GO", Text: "#card_adv_go"},
	{Type: CardTeleport, Dest: "RedC", Text: "#card_adv"},
	{Type: CardTeleport, Dest: "PinkA", Text: "#card_adv"},
	{Type: CardTeleportCategory, Dest: "Utility", Text: "#card_adv_utility"},
	{Type: CardTeleportCategory, Dest: "Railroad", Text: "#card_adv_railroad"},
	{Type: CardTeleportCategory, Dest: "Railroad", Text: "#card_adv_railroad"},
	{Type: CardMoneyGain, Value: 50, Text: "#CHANCE_BankDividend"},
	{Type: CardTeleportRelative, Value: -3, Text: "#card_adv_relative_back"},
	{Type: CardJail, Text: "#card_jail_text"},
	{Type: CardMoneyLose, Value: 15, Text: "#CHANCE_Speeding"},
	{Type: CardTeleport, Dest: "RailroadA", Text: "#card_adv_railroad1"},
	{Type: CardTeleport, Dest: "DarkBlueB", Text: "#card_adv_blue2"},
	{Type: CardMoneyLoseOthers, Value: 50, Text: "#CHANCE_Chairman"},
	{Type: CardMoneyGain, Value: 150, Text: "#CHANCE_BuildingLoan"},
}

var communityChestCards = []Card{
	{Type: CardTeleport, Dest: "GO", Text: "#card_adv_go"},
	{Type: CardMoneyGain, Value: 200, Text: "#COMMUNITYCHEST_BankError"},
	{Type: CardMoneyLose, Value: 50, Text: "#COMMUNITYCHEST_Doctor"},
	{Type: CardMoneyGain, Value: 50, Text: "#COMMUNITYCHEST_Stock"},
	{Type: CardJail, Text: "#card_jail_text"},
	{Type: CardMoneyGain, Value: 100, Text: "#COMMUNITYCHEST_HolidaySeason"},
	{Type: CardMoneyGain, Value: 20, Text: "#COMMUNITYCHEST_Income"},
	{Type: CardMoneyGain, Value: 100, Text: "#COMMUNITYCHEST_LifeInsurance"},
	{Type: CardMoneyLose, Value: 50, Text: "#COMMUNITYCHEST_Hospital"},
	{Type: CardMoneyLose, Value: 50, Text: "#COMMUNITYCHEST_School"},
	{Type: CardMoneyGain, Value: 25, Text: "#COMMUNITYCHEST_Consultancy"},
	{Type: CardMoneyGain, Value: 10, Text: "#COMMUNITYCHEST_Beauty"},
	{Type: CardMoneyGain, Value: 100, Text: "#COMMUNITYCHEST_Inherit"},
}

// DeckSet holds the two live piles. Cards are drawn from the front and
// recycled to the back so the cycle order is stable between shuffles.
type DeckSet struct {
	Piles map[Deck][]Card `json:"piles"`
}

func NewDeckSet() *DeckSet {
	return &DeckSet{
		Piles: map[Deck][]Card{
			Chance:         shuffled(chanceCards),
			CommunityChest: shuffled(communityChestCards),
		},
	}
}

func shuffled(cards []Card) []Card {
	pile := make([]Card, len(cards))
	copy(pile, cards)
	rand.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
	return pile
}

// Draw takes the front card and recycles it to the back. Kept cards
// (get-out-of-jail) are removed from the pile instead.
func (d *DeckSet) Draw(deck Deck) (Card, bool) {
	pile := d.Piles[deck]
	if len(pile) == 0 {
		return Card{}, false
	}
	card := pile[0]
	pile = pile[1:]
	if card.Type != CardKeepOutOfJail {
		pile = append(pile, card)
	}
	d.Piles[deck] = pile
	return card, true
}
