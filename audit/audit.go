// Package audit persists an append-only record of thread-group lifecycle
// events (create, destroy, donate) to a local sqlite database, for
// after-the-fact investigation of a quota exhaustion or a runaway group
// tree. It is entirely optional: a nil *Ledger is a valid no-op logger.
package audit

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rhelmot/objectively/object"
	_ "modernc.org/sqlite"
)

// Event is one row of the ledger.
type Event struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"` // "create", "destroy", or "donate"
	GroupName string    `db:"group_name"`
	GroupUUID string    `db:"group_uuid"`
	Detail    string    `db:"detail"`
	At        time.Time `db:"at"`
}

// Ledger wraps a sqlite-backed audit log.
type Ledger struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS event (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	group_name TEXT NOT NULL,
	group_uuid TEXT NOT NULL,
	detail     TEXT NOT NULL,
	at         DATETIME NOT NULL
)`

// Open creates (if necessary) and opens a sqlite ledger database at
// dir/audit.db.
func Open(dir string) (*Ledger, error) {
	db, err := sqlx.Open("sqlite", filepath.Join(dir, "audit.db"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return &Ledger{db: db}, nil
}

// Install wires l as the object package's group-lifecycle hook, so every
// NewChildGroup/Destroy/Donate call gets logged without object needing to
// import this package directly. Errors writing a single event are dropped:
// the audit trail is best-effort diagnostics, never a correctness gate.
func (l *Ledger) Install() {
	object.SetGroupEventHook(func(event string, g *object.Group, detail string) {
		ctx := context.Background()
		switch event {
		case "create":
			_ = l.Create(ctx, g.Name, g.UUID, g.MemLimit)
		case "destroy":
			_ = l.Destroy(ctx, g.Name, g.UUID)
		case "donate":
			_ = l.Donate(ctx, g.Name, g.UUID, detail, 0)
		}
	})
}

func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) record(ctx context.Context, kind, groupName, groupUUID, detail string) error {
	if l == nil {
		return nil
	}
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO event (kind, group_name, group_uuid, detail, at)
		VALUES (:kind, :group_name, :group_uuid, :detail, :at)`,
		Event{Kind: kind, GroupName: groupName, GroupUUID: groupUUID, Detail: detail, At: time.Now()})
	return errors.WithStack(err)
}

// Create logs a thread group's creation.
func (l *Ledger) Create(ctx context.Context, name, uuid string, memLimit uint64) error {
	return l.record(ctx, "create", name, uuid, memLimitDetail(memLimit))
}

// Destroy logs a thread group's teardown.
func (l *Ledger) Destroy(ctx context.Context, name, uuid string) error {
	return l.record(ctx, "destroy", name, uuid, "")
}

// Donate logs a cross-group object transfer.
func (l *Ledger) Donate(ctx context.Context, fromName, fromUUID, toName string, size uintptr) error {
	return l.record(ctx, "donate", fromName, fromUUID, "to="+toName+" bytes="+sizeDetail(size))
}

// Recent returns the most recent n events, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Event, error) {
	if l == nil {
		return nil, nil
	}
	var events []Event
	err := l.db.SelectContext(ctx, &events, `SELECT * FROM event ORDER BY id DESC LIMIT ?`, n)
	return events, errors.WithStack(err)
}

func memLimitDetail(memLimit uint64) string {
	return "mem_limit=" + strconv.FormatUint(memLimit, 10)
}

func sizeDetail(size uintptr) string {
	return strconv.FormatUint(uint64(size), 10)
}
