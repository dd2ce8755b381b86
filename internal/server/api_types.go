package server

// Payload structs for the startevent and event envelopes. Annotated for
// tygo so the client's TypeScript types stay in sync.

// ============================================================================
// PRE-LOBBY (startevent)
// ============================================================================
// tygo:generate
type CreateUserRequest struct {
	PlayerName string `json:"playerName"`
	LocalID    string `json:"localId"`
}

// tygo:generate
type LobbyCreateRequest struct {
	LobbyName string `json:"lobbyName"`
}

// tygo:generate
type LobbyJoinRequest struct {
	LobbyID string `json:"lobbyId"`
}

// UserInfo is the init value answered to start_createuser and resume.
// tygo:generate
type UserInfo struct {
	LocalID    string `json:"localId"`
	PlayerName string `json:"playerName"`
	LobbyID    string `json:"lobbyId,omitempty"`
}

// LobbyListEntry is one row of the global lobbyList channel.
// tygo:generate
type LobbyListEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HostName    string `json:"hostName"`
	Status      string `json:"status"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// ============================================================================
// LOBBY SETUP (event)
// ============================================================================
// tygo:generate
type AddTeamRequest struct {
	TeamName string `json:"teamName"`
}

// AddPlayerRequest carries the client's claimed localId, but handlers
// always use the identity authenticated on the connection instead.
// tygo:generate
type AddPlayerRequest struct {
	PlayerColour int    `json:"playerColour"`
	PlayerName   string `json:"playerName"`
	LocalID      string `json:"localId"`
}

// tygo:generate
type JoinTeamRequest struct {
	TeamID int `json:"teamId"`
}

// ============================================================================
// GAMEPLAY (event)
// ============================================================================
// tygo:generate
type RenovationRequest struct {
	Property   string `json:"property"`
	HouseCount int    `json:"houseCount"`
}

// tygo:generate
type BankruptRequest struct {
	Confirm bool `json:"confirm"`
}

// tygo:generate
type AuctionBidRequest struct {
	Amount int `json:"amount"`
}
