package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tapwake/tapwake/internal/launch"
)

// Persist writes a classified event into the launch_state slot.
// The slot holds at most one event; a newer event overwrites an
// unconsumed older one.
func (s *Store) Persist(ctx context.Context, ev launch.Event) error {
	payload := ev.Payload
	if payload == "" {
		payload = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launch_state (id, flag, payload_json, source, raw_url, event_id)
		VALUES (1, 1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			flag = excluded.flag,
			payload_json = excluded.payload_json,
			source = excluded.source,
			raw_url = excluded.raw_url,
			event_id = excluded.event_id
	`, payload, ev.Source.String(), ev.RawURL, ev.ID)
	if err != nil {
		return fmt.Errorf("persist launch state: %w", err)
	}

	return nil
}

// slotRow is the raw launch_state slot contents.
type slotRow struct {
	flag    bool
	payload string
	source  string
	rawURL  string
	eventID string
}

// readSlot reads the slot inside tx. An absent row reads as an empty slot.
func readSlot(ctx context.Context, tx *sql.Tx) (slotRow, error) {
	var row slotRow
	var flag int
	err := tx.QueryRowContext(ctx, `
		SELECT flag, payload_json, source, raw_url, event_id FROM launch_state WHERE id = 1
	`).Scan(&flag, &row.payload, &row.source, &row.rawURL, &row.eventID)
	if err == sql.ErrNoRows {
		return slotRow{}, nil
	}
	if err != nil {
		return slotRow{}, fmt.Errorf("read launch state: %w", err)
	}
	row.flag = flag != 0
	return row, nil
}

// clearSlot resets the slot inside tx.
func clearSlot(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE launch_state
		SET flag = 0, payload_json = '{}', source = '', raw_url = '', event_id = ''
		WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("clear launch state: %w", err)
	}
	return nil
}

// ConsumeState reads and clears a pending notification event.
//
// Read and clear happen in one transaction, so a consume racing a
// Persist observes either the old event or the new one, never half of
// each, and two consumes without an intervening Persist observe the
// event at most once. A slot holding a deep link event is left alone:
// it belongs to ConsumeLink. Empty or foreign slots yield EmptyState.
func (s *Store) ConsumeState(ctx context.Context) (launch.State, error) {
	state := launch.EmptyState()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := readSlot(ctx, tx)
		if err != nil {
			return err
		}
		if !row.flag || row.source != launch.SourceNotification.String() {
			return nil
		}

		state.IsFromNotification = true
		if row.payload != "" {
			state.Payload = row.payload
		}
		return clearSlot(ctx, tx)
	})
	if err != nil {
		return launch.EmptyState(), err
	}

	return state, nil
}

// ConsumeLink reads and clears a pending cold-launch deep link,
// returning its raw URL. Same atomicity as ConsumeState; a slot holding
// a notification event is left alone.
func (s *Store) ConsumeLink(ctx context.Context) (string, error) {
	var rawURL string

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := readSlot(ctx, tx)
		if err != nil {
			return err
		}
		if !row.flag || row.source != launch.SourceDeepLink.String() {
			return nil
		}

		rawURL = row.rawURL
		return clearSlot(ctx, tx)
	})
	if err != nil {
		return "", err
	}

	return rawURL, nil
}

// Snapshot is a non-destructive view of the store, for diagnostics.
type Snapshot struct {
	HasEvent   bool
	Source     string
	Payload    string
	RawURL     string
	EventID    string
	HasPending bool
	Pending    string
}

// Peek reads both slots without clearing anything.
func (s *Store) Peek(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := readSlot(ctx, tx)
		if err != nil {
			return err
		}
		if row.flag {
			snap.HasEvent = true
			snap.Source = row.source
			snap.Payload = row.payload
			snap.RawURL = row.rawURL
			snap.EventID = row.eventID
		}

		var pending string
		err = tx.QueryRowContext(ctx, `SELECT payload_json FROM pending_payload WHERE id = 1`).Scan(&pending)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pending payload: %w", err)
		}
		snap.HasPending = true
		snap.Pending = pending
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// SetPending registers a payload ahead of the notification that will
// carry it. A second SetPending before the notification fires replaces
// the first.
func (s *Store) SetPending(ctx context.Context, payload string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_payload (id, payload_json)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET payload_json = excluded.payload_json
	`, payload)
	if err != nil {
		return fmt.Errorf("set pending payload: %w", err)
	}
	return nil
}

// TakePending reads and deletes the pre-registered payload.
// Returns ok=false when no payload was registered.
func (s *Store) TakePending(ctx context.Context) (string, bool, error) {
	var payload string
	found := false

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT payload_json FROM pending_payload WHERE id = 1
		`).Scan(&payload)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pending payload: %w", err)
		}
		found = true

		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_payload WHERE id = 1`); err != nil {
			return fmt.Errorf("delete pending payload: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}

	return payload, found, nil
}
