package store

import (
	"context"

	"github.com/erazemk/assettrack/internal/model"
)

// AddScan appends a scan to a session's log.
func (s *SQLite) AddScan(ctx context.Context, sessionID int64, code string) (*model.InventoryScan, error) {
	scan := &model.InventoryScan{SessionID: sessionID, RFIDCode: code, Timestamp: Now()}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_scans (session_id, rfid_code, timestamp) VALUES (?, ?, ?)`,
		sessionID, code, scan.Timestamp,
	)
	if isForeignKeyViolation(err) {
		return nil, &model.NotFoundError{Kind: "session", ID: sessionID}
	}
	if err != nil {
		return nil, StorageErr("recording scan", err)
	}

	scan.ID, err = result.LastInsertId()
	if err != nil {
		return nil, StorageErr("getting scan id", err)
	}
	return scan, nil
}

// ListScans returns a session's scans in the order they were recorded.
func (s *SQLite) ListScans(ctx context.Context, sessionID int64) ([]model.InventoryScan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, rfid_code, timestamp
		 FROM inventory_scans WHERE session_id = ?
		 ORDER BY timestamp ASC, id ASC`, sessionID,
	)
	if err != nil {
		return nil, StorageErr("listing scans", err)
	}
	defer rows.Close()

	scans := []model.InventoryScan{}
	for rows.Next() {
		var scan model.InventoryScan
		if err := rows.Scan(&scan.ID, &scan.SessionID, &scan.RFIDCode, &scan.Timestamp); err != nil {
			return nil, StorageErr("scanning scan", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, StorageErr("iterating scans", err)
	}
	return scans, nil
}
