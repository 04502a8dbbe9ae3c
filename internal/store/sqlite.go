package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"magbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the record collections in a local SQLite database.
// Each save replaces the table contents in one transaction, so the
// full-overwrite contract (and the rename cascade) is durable atomically.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) LoadIssuance(ctx context.Context) []core.IssuanceRecord {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, mine, issued_by, received_by, remarks,
		       wabox_cartridges, detonators, safety_fuse_m
		FROM issuance ORDER BY id`)
	if err != nil {
		slog.WarnContext(ctx, "Issuance table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var records []core.IssuanceRecord
	for rows.Next() {
		var dateStr string
		var rec core.IssuanceRecord
		var wabox, det, fuse int
		if err := rows.Scan(&dateStr, &rec.Mine, &rec.IssuedBy, &rec.ReceivedBy, &rec.Remarks, &wabox, &det, &fuse); err != nil {
			slog.WarnContext(ctx, "Issuance row unreadable, starting empty", "error", err)
			return nil
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Issuance row has a bad date, starting empty", "date", dateStr, "error", err)
			return nil
		}
		rec.Date = date
		rec.Quantities = core.Quantities{
			core.WaboxCartridges: wabox,
			core.Detonators:      det,
			core.SafetyFuse:      fuse,
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.WarnContext(ctx, "Issuance scan failed, starting empty", "error", err)
		return nil
	}
	return records
}

func (s *SQLiteStore) LoadStock(ctx context.Context) []core.StockRecord {
	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_no, receiving_date, explosive_type, quantity
		FROM stock ORDER BY id`)
	if err != nil {
		slog.WarnContext(ctx, "Stock table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var records []core.StockRecord
	for rows.Next() {
		var dateStr, typStr string
		var rec core.StockRecord
		if err := rows.Scan(&rec.SerialNo, &dateStr, &typStr, &rec.Quantity); err != nil {
			slog.WarnContext(ctx, "Stock row unreadable, starting empty", "error", err)
			return nil
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Stock row has a bad date, starting empty", "date", dateStr, "error", err)
			return nil
		}
		typ, err := core.ParseExplosiveType(typStr)
		if err != nil {
			slog.WarnContext(ctx, "Stock row has a bad type, starting empty", "type", typStr, "error", err)
			return nil
		}
		rec.ReceivingDate = date
		rec.ExplosiveType = typ
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.WarnContext(ctx, "Stock scan failed, starting empty", "error", err)
		return nil
	}
	return records
}

func (s *SQLiteStore) LoadMines(ctx context.Context) []string {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM mines ORDER BY position`)
	if err != nil {
		slog.WarnContext(ctx, "Mines table unreadable, using seed registry", "error", err)
		return DefaultMines()
	}
	defer rows.Close()

	var mines []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			slog.WarnContext(ctx, "Mine row unreadable, using seed registry", "error", err)
			return DefaultMines()
		}
		mines = append(mines, name)
	}
	if err := rows.Err(); err != nil || len(mines) == 0 {
		return DefaultMines()
	}
	return mines
}

func (s *SQLiteStore) SaveIssuance(ctx context.Context, records []core.IssuanceRecord) error {
	return s.replaceAll(ctx, "issuance", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO issuance (date, mine, issued_by, received_by, remarks,
			                      wabox_cartridges, detonators, safety_fuse_m)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range records {
			_, err := stmt.ExecContext(ctx, r.Date.String(), r.Mine, r.IssuedBy, r.ReceivedBy, r.Remarks,
				r.Quantities.Get(core.WaboxCartridges),
				r.Quantities.Get(core.Detonators),
				r.Quantities.Get(core.SafetyFuse))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SaveStock(ctx context.Context, records []core.StockRecord) error {
	return s.replaceAll(ctx, "stock", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stock (serial_no, receiving_date, explosive_type, quantity)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, r.SerialNo, r.ReceivingDate.String(), r.ExplosiveType.String(), r.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SaveMines(ctx context.Context, mines []string) error {
	return s.replaceAll(ctx, "mines", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO mines (position, name) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, name := range mines {
			if _, err := stmt.ExecContext(ctx, i, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceAll clears one table and refills it inside a single transaction.
func (s *SQLiteStore) replaceAll(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("fill %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
