package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // 纯 Go 驱动，无需 CGO
)

// SQLite 将回合存档写入本地 SQLite 文件
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开（必要时创建）数据库并执行迁移
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("archive: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: cannot open database: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: cannot connect to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			reset INTEGER NOT NULL DEFAULT 0,
			score_a INTEGER NOT NULL DEFAULT 0,
			score_b INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_turns_room ON turns(room_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record 追加一条回合记录；完整条目以 JSON 存储
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("archive: cannot encode entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO turns (room_id, turn, reset, score_a, score_b, data) VALUES (?, ?, ?, ?, ?, ?)",
		e.RoomID, e.Turn, e.Reset, e.Score["A"], e.Score["B"], string(data),
	)
	if err != nil {
		return fmt.Errorf("archive: cannot save turn: %w", err)
	}
	return nil
}

// History 最近 limit 条，按写入顺序返回
func (s *SQLite) History(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM (
			SELECT id, data FROM turns
			WHERE room_id = ?
			ORDER BY id DESC
			LIMIT ?
		 ) ORDER BY id ASC`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("archive: cannot query turns: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("archive: cannot scan row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("archive: corrupt entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: row iteration error: %w", err)
	}
	return entries, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ Recorder = (*SQLite)(nil)
