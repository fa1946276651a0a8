package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/jpalmerr/liveboard"
)

const (
	maxOpenConns = 10
	maxIdleConns = 1
)

const todayMatchesQuery = `SELECT m.id, at.name, at.code, ht.name, ht.code, m.match_time
FROM matches AS m
JOIN teams AS at ON m.away_team_id = at.id
JOIN teams AS ht ON m.home_team_id = ht.id
WHERE m.match_time >= ? AND m.match_time < ?
ORDER BY m.match_time, m.id`

// MySQL reads today's matches from the matches and teams tables.
type MySQL struct {
	db       *sql.DB
	location *time.Location
	now      func() time.Time
}

// OpenMySQL opens a connection pool for dsn and verifies it with a ping.
//
// Match times are interpreted in loc, which also defines "today". The DSN's
// own parseTime and loc settings are overridden to match.
func OpenMySQL(ctx context.Context, dsn string, loc *time.Location) (*MySQL, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	cfg.ParseTime = true
	cfg.Loc = loc

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to mysql at %s: %w", cfg.Addr, err)
	}

	return NewMySQL(db, loc), nil
}

// NewMySQL wraps an existing database handle. The handle should be opened
// with parseTime enabled.
func NewMySQL(db *sql.DB, loc *time.Location) *MySQL {
	if loc == nil {
		loc = time.Local
	}
	return &MySQL{db: db, location: loc, now: time.Now}
}

// Events returns the matches starting between today's midnight and the
// next midnight, in the source's location.
func (m *MySQL) Events(ctx context.Context) ([]liveboard.EventDescriptor, error) {
	from, to := dayBounds(m.now(), m.location)

	rows, err := m.db.QueryContext(ctx, todayMatchesQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("query today's matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []liveboard.EventDescriptor
	for rows.Next() {
		var ev liveboard.EventDescriptor
		if err := rows.Scan(&ev.ID, &ev.AwayName, &ev.AwayCode, &ev.HomeName, &ev.HomeCode, &ev.Start); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		ev.Start = ev.Start.In(m.location)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read match rows: %w", err)
	}
	return events, nil
}

// Close closes the connection pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}

// dayBounds returns [midnight, next midnight) of now's date in loc.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
