// Package store implements durable persistence for CHAN resources:
// the named channels addressable through the hvml+run:// URI grammar
// from spec.md §6. A runner restart must not lose a channel's pending
// messages, so ChannelStore backs them with a modernc.org/sqlite
// database rather than the in-memory movebuffer queues used for
// CRTN/ELEMENTS/RDR traffic, grounded on the teacher's embedded-SQLite
// run-history store (internal/runtime/builtin/sql/drivers/sqlite).
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/reqid"
	"github.com/hvml-run/hvmi/variant"
)

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	name TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS channel_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel TEXT NOT NULL,
	event_source TEXT NOT NULL,
	event_name TEXT NOT NULL,
	sub_name TEXT NOT NULL,
	data_ejson TEXT NOT NULL,
	request_id TEXT NOT NULL,
	reduce_opt INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channel_messages_channel ON channel_messages(channel, id);
`

// ChannelStore persists CHAN resources and their pending message
// queues across runner restarts. One ChannelStore is opened per data
// directory (config.Config.DataDir), shared by every Runner on a
// host.
type ChannelStore struct {
	mu   sync.Mutex
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open opens (creating if absent) the sqlite database at path and
// ensures its schema. A gofrs/flock file lock guards cross-process
// writers, since sqlite's own driver reports advisory locking as
// unsupported.
func Open(path string) (*ChannelStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate %s: %w", path, err)
	}
	return &ChannelStore{
		db:   db,
		lock: flock.New(path + ".lock"),
		path: path,
	}, nil
}

// Close releases the underlying database handle.
func (s *ChannelStore) Close() error {
	return s.db.Close()
}

func (s *ChannelStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("store: acquire lock: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

// EnsureChannel registers name as an existing channel, a no-op if it
// already exists, matching CHAN's "first reference creates it" rule
// from the hvml+run:// grammar.
func (s *ChannelStore) EnsureChannel(name string) error {
	return s.withLock(func() error {
		_, err := s.db.Exec(
			`INSERT INTO channels(name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			name, time.Now().Unix(),
		)
		return err
	})
}

// Channels lists every channel name this store has seen.
func (s *ChannelStore) Channels() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM channels ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Push appends msg to channel's durable queue. msg.Data is serialized
// to real-ejson so it survives process restarts; msg.ElementValue is
// dropped, since an element reference is meaningless once the
// producing coroutine's vDOM is gone.
func (s *ChannelStore) Push(channel string, msg coroutine.Message) error {
	data := msg.Data
	if data == nil {
		data = variant.NewUndefined()
	}
	dataEJSON, err := variant.Serialize(data, "real-ejson")
	if err != nil {
		return fmt.Errorf("store: serialize message data: %w", err)
	}
	return s.withLock(func() error {
		if _, err := s.db.Exec(
			`INSERT INTO channels(name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			channel, time.Now().Unix(),
		); err != nil {
			return err
		}
		_, err := s.db.Exec(
			`INSERT INTO channel_messages(channel, event_source, event_name, sub_name, data_ejson, request_id, reduce_opt, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			channel, msg.EventSource, msg.EventName, msg.SubName, dataEJSON, msg.RequestID.String(), int(msg.ReduceOpt), time.Now().Unix(),
		)
		return err
	})
}

// Pop removes and returns the oldest pending message for channel, if
// any.
func (s *ChannelStore) Pop(channel string) (coroutine.Message, bool, error) {
	var (
		id                                         int64
		eventSource, eventName, subName, dataEJSON string
		requestIDStr                               string
		reduceOpt                                  int
	)
	var found bool
	err := s.withLock(func() error {
		row := s.db.QueryRow(
			`SELECT id, event_source, event_name, sub_name, data_ejson, request_id, reduce_opt
			 FROM channel_messages WHERE channel = ? ORDER BY id LIMIT 1`, channel,
		)
		switch scanErr := row.Scan(&id, &eventSource, &eventName, &subName, &dataEJSON, &requestIDStr, &reduceOpt); scanErr {
		case sql.ErrNoRows:
			return nil
		case nil:
			found = true
			_, err := s.db.Exec(`DELETE FROM channel_messages WHERE id = ?`, id)
			return err
		default:
			return scanErr
		}
	})
	if err != nil || !found {
		return coroutine.Message{}, false, err
	}
	data, perr := variant.Parse(dataEJSON)
	if perr != nil {
		data = variant.NewUndefined()
	}
	return coroutine.Message{
		EventSource: eventSource,
		EventName:   eventName,
		SubName:     subName,
		Data:        data,
		RequestID:   reqid.New(reqid.Chan, "", "", channel),
		ReduceOpt:   coroutine.ReduceOpt(reduceOpt),
	}, true, nil
}

// Depth reports how many messages are pending for channel.
func (s *ChannelStore) Depth(channel string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM channel_messages WHERE channel = ?`, channel).Scan(&n)
	return n, err
}
