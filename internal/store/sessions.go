package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sessionColumns = `id, task_id, start_time, end_time, duration, type, completed, created_at`

// InsertSession writes a finished interval and returns its id.
func (s *Store) InsertSession(sess Session) (int64, error) {
	if !sess.Type.Valid() {
		return 0, fmt.Errorf("insert session: unknown type %q", sess.Type)
	}
	if sess.Duration < 0 {
		return 0, fmt.Errorf("insert session: negative duration %d", sess.Duration)
	}

	var end *int64
	if sess.EndTime != nil {
		v := sess.EndTime.Unix()
		end = &v
	}

	res, err := s.db.Exec(
		`INSERT INTO sessions (task_id, start_time, end_time, duration, type, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.TaskID, sess.StartTime.Unix(), end, sess.Duration, string(sess.Type), boolToInt(sess.Completed), time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *Store) GetSession(id int64) (*Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns sessions matching f, newest start first.
func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.Unix())
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.Unix())
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.CompletedOnly {
		query += ` AND completed = 1`
	}
	query += ` ORDER BY start_time DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var taskID, endTime sql.NullInt64
	var startTime, createdAt int64
	var typ string
	var completed int

	if err := row.Scan(&sess.ID, &taskID, &startTime, &endTime, &sess.Duration, &typ, &completed, &createdAt); err != nil {
		return nil, err
	}
	if taskID.Valid {
		id := taskID.Int64
		sess.TaskID = &id
	}
	sess.StartTime = time.Unix(startTime, 0)
	if endTime.Valid {
		t := time.Unix(endTime.Int64, 0)
		sess.EndTime = &t
	}
	sess.Type = SessionType(typ)
	sess.Completed = completed == 1
	sess.CreatedAt = time.Unix(createdAt, 0)
	return sess, nil
}
