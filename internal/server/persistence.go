package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"monopolis-server/internal/monopolis"
)

// LobbyRecord is the persisted form of a lobby: row metadata plus the
// full game snapshot as JSON.
type LobbyRecord struct {
	ID          string
	Name        string
	HostLocalID string
	HostName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Snapshot    monopolis.Snapshot
}

// PersistenceManager handles saving and loading state to/from Postgres.
type PersistenceManager struct {
	db *sql.DB
}

func NewPersistenceManager(db *sql.DB) *PersistenceManager {
	return &PersistenceManager{
		db: db,
	}
}

// SaveLobby upserts one lobby row.
func (pm *PersistenceManager) SaveLobby(record LobbyRecord) error {
	gameData, err := json.Marshal(record.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize lobby %s: %w", record.ID, err)
	}

	query := `
		INSERT INTO lobbies (id, name, host_local_id, host_name, game_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    host_local_id = EXCLUDED.host_local_id,
		    host_name = EXCLUDED.host_name,
		    game_data = EXCLUDED.game_data,
		    updated_at = EXCLUDED.updated_at
	`

	_, err = pm.db.Exec(
		query,
		record.ID,
		record.Name,
		record.HostLocalID,
		record.HostName,
		string(gameData),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lobby %s: %w", record.ID, err)
	}
	return nil
}

// LoadLobby retrieves one lobby by id.
func (pm *PersistenceManager) LoadLobby(id string) (*LobbyRecord, error) {
	query := `
		SELECT id, name, host_local_id, host_name, game_data, created_at, updated_at
		FROM lobbies WHERE id = $1
	`

	record, err := scanLobby(pm.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lobby not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby %s: %w", id, err)
	}
	return record, nil
}

// LoadAllLobbies retrieves every persisted lobby, used on boot.
func (pm *PersistenceManager) LoadAllLobbies() ([]LobbyRecord, error) {
	query := `
		SELECT id, name, host_local_id, host_name, game_data, created_at, updated_at
		FROM lobbies
		ORDER BY created_at
	`

	rows, err := pm.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lobbies: %w", err)
	}
	defer rows.Close()

	var records []LobbyRecord
	for rows.Next() {
		record, err := scanLobby(rows)
		if err != nil {
			// skip the corrupt row, keep the rest
			fmt.Printf("Warning: failed to load lobby row: %v\n", err)
			continue
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lobby rows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLobby(row rowScanner) (*LobbyRecord, error) {
	var record LobbyRecord
	var gameData string
	if err := row.Scan(
		&record.ID,
		&record.Name,
		&record.HostLocalID,
		&record.HostName,
		&gameData,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(gameData), &record.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to deserialize lobby %s: %w", record.ID, err)
	}
	return &record, nil
}

// DeleteLobby removes a lobby row.
func (pm *PersistenceManager) DeleteLobby(id string) error {
	result, err := pm.db.Exec(`DELETE FROM lobbies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lobby %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lobby not found: %s", id)
	}
	return nil
}

// SaveIdentity upserts one durable identity.
func (pm *PersistenceManager) SaveIdentity(identity Identity) error {
	query := `
		INSERT INTO identities (local_id, player_name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (local_id) DO UPDATE
		SET player_name = EXCLUDED.player_name
	`

	_, err := pm.db.Exec(query, identity.LocalID, identity.PlayerName, identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save identity %s: %w", identity.LocalID, err)
	}
	return nil
}

// LoadAllIdentities retrieves every identity, used on boot.
func (pm *PersistenceManager) LoadAllIdentities() ([]Identity, error) {
	rows, err := pm.db.Query(`SELECT local_id, player_name, created_at FROM identities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		var identity Identity
		if err := rows.Scan(&identity.LocalID, &identity.PlayerName, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity row: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identity rows: %w", err)
	}
	return identities, nil
}
