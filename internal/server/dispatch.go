package server

import (
	"encoding/json"
	"errors"

	"monopolis-server/internal/monopolis"
)

type eventHandler func(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error

// eventHandlers is the fixed table of gameplay and lobby-setup event ids.
// Anything not in this table is a protocol error.
var eventHandlers = map[string]eventHandler{
	"monopolis_requestdiceroll":   playerEvent((*monopolis.Game).RequestDiceRoll),
	"monopolis_requestpayrent":    playerEvent((*monopolis.Game).RequestPayRent),
	"monopolis_requestpurchase":   playerEvent((*monopolis.Game).RequestPurchase),
	"monopolis_requestpass":       playerEvent((*monopolis.Game).RequestPass),
	"monopolis_requestauction":    playerEvent((*monopolis.Game).RequestAuction),
	"monopolis_requestcard":       playerEvent((*monopolis.Game).RequestCard),
	"monopolis_acknowledgecard":   playerEvent((*monopolis.Game).AcknowledgeCard),
	"monopolis_endturn":           playerEvent((*monopolis.Game).RequestEndTurn),
	"monopolis_auctionwithdraw":   playerEvent((*monopolis.Game).AuctionWithdraw),
	"monopolis_requestrenovation": handleRenovation,
	"monopolis_requestbankrupt":   handleBankrupt,
	"monopolis_auctionbid":        handleAuctionBid,
	"monopolis_requesttrade":      handleRequestTrade,
	"monopolis_trade":             handleTrade,
	"lobby_addteam":               handleAddTeam,
	"lobby_addplayer":             handleAddPlayer,
	"lobby_jointeam":              handleJoinTeam,
	"lobby_start":                 handleStart,
}

// playerEvent adapts a payload-less engine method. The acting player id is
// always re-derived from the authenticated identity, never read from the
// message.
func playerEvent(fn func(*monopolis.Game, int) error) eventHandler {
	return func(s *Server, lobby *Lobby, g *monopolis.Game, localID string, _ json.RawMessage) error {
		pID := g.PlayerIDForLocal(localID)
		if pID == -1 {
			return monopolis.ErrOutOfTurn
		}
		return fn(g, pID)
	}
}

func handleRenovation(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req RenovationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return monopolis.ErrInvalidRequest
	}
	pID := g.PlayerIDForLocal(localID)
	if pID == -1 {
		return monopolis.ErrOutOfTurn
	}
	return g.RequestRenovation(pID, req.Property, req.HouseCount)
}

func handleBankrupt(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req BankruptRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return monopolis.ErrInvalidRequest
		}
	}
	pID := g.PlayerIDForLocal(localID)
	if pID == -1 {
		return monopolis.ErrOutOfTurn
	}
	return g.RequestBankrupt(pID, req.Confirm)
}

func handleAuctionBid(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req AuctionBidRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return monopolis.ErrInvalidRequest
	}
	switch req.Amount {
	case 10, 50, 100:
	default:
		return monopolis.ErrInvalidRequest
	}
	pID := g.PlayerIDForLocal(localID)
	if pID == -1 {
		return monopolis.ErrOutOfTurn
	}
	return g.AuctionBid(pID, req.Amount)
}

func handleRequestTrade(s *Server, lobby *Lobby, g *monopolis.Game, localID string, _ json.RawMessage) error {
	pID := g.PlayerIDForLocal(localID)
	if pID == -1 {
		return monopolis.ErrOutOfTurn
	}
	return g.RequestTrade(pID, nil)
}

func handleTrade(s *Server, lobby *Lobby, g *monopolis.Game, localID string, _ json.RawMessage) error {
	pID := g.PlayerIDForLocal(localID)
	if pID == -1 {
		return monopolis.ErrOutOfTurn
	}
	return g.ApplyTrade(pID)
}

func handleAddTeam(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req AddTeamRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return monopolis.ErrInvalidRequest
	}
	if err := ValidateName(req.TeamName); err != nil {
		return err
	}
	return g.AddTeam(req.TeamName)
}

func handleAddPlayer(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req AddPlayerRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return monopolis.ErrInvalidRequest
	}
	if err := ValidateName(req.PlayerName); err != nil {
		return err
	}
	// the payload's localId is ignored; configuration applies to the
	// identity on this connection
	return g.ConfigurePlayer(localID, req.PlayerName, req.PlayerColour)
}

func handleJoinTeam(s *Server, lobby *Lobby, g *monopolis.Game, localID string, payload json.RawMessage) error {
	var req JoinTeamRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return monopolis.ErrInvalidRequest
	}
	return g.JoinTeam(localID, req.TeamID)
}

func handleStart(s *Server, lobby *Lobby, g *monopolis.Game, localID string, _ json.RawMessage) error {
	if localID != lobby.HostLocalID {
		return monopolis.ErrOutOfTurn
	}
	return g.Start()
}

// isSilentDrop classifies engine errors the client never hears about:
// out-of-turn and illegal-state requests (anti-cheat and stale UI) and
// insufficient funds, which funnels toward the bankruptcy flow.
func isSilentDrop(err error) bool {
	return errors.Is(err, monopolis.ErrOutOfTurn) ||
		errors.Is(err, monopolis.ErrIllegalState) ||
		errors.Is(err, monopolis.ErrInsufficientFunds)
}
