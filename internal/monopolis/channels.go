package monopolis

import "strconv"

// Channel names published by the engine. The server prefixes each with the
// owning lobby id before storing or fanning out, so clients only ever see
// the bare monopolis:<topic>[:<id>] form.
const (
	ChannelCurrentTurn   = "monopolis:current_turn"
	ChannelHousingMarket = "monopolis:housing_market"
	ChannelRollOrder     = "monopolis:roll_order"
	ChannelAuction       = "monopolis:auction"
	ChannelTrade         = "monopolis:trade"
	ChannelUIState       = "monopolis:ui_state"
	ChannelLobbyData     = "monopolis:lobbyData"
)

func PlayerChannel(pID int) string {
	return "monopolis:player_state:" + strconv.Itoa(pID)
}

func TeamChannel(tID int) string {
	return "monopolis:team_state:" + strconv.Itoa(tID)
}

func PropertyChannel(tileID string) string {
	return "monopolis:property_ownership:" + tileID
}

// AllChannels lists every channel a lobby publishes; joining or resuming
// subscribes a connection to the full set with state replay.
func AllChannels() []string {
	channels := []string{
		ChannelCurrentTurn,
		ChannelHousingMarket,
		ChannelRollOrder,
		ChannelAuction,
		ChannelTrade,
		ChannelUIState,
		ChannelLobbyData,
	}
	for i := 0; i < MaxPlayers; i++ {
		channels = append(channels, PlayerChannel(i))
	}
	for i := 0; i < MaxTeams; i++ {
		channels = append(channels, TeamChannel(i))
	}
	for _, tile := range TileDB {
		if tile.IsPurchasable() {
			channels = append(channels, PropertyChannel(tile.ID))
		}
	}
	return channels
}
