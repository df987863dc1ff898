package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const taskColumns = `id, title, estimated_pomodoros, completed_pomodoros, completed, order_index, created_at`

// CreateTask appends a new incomplete task after every existing one.
func (s *Store) CreateTask(title string, estimated int) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("insert task: title is required")
	}
	if estimated < 1 {
		return nil, fmt.Errorf("insert task: estimate must be positive, got %d", estimated)
	}

	var maxOrder sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(order_index) FROM tasks`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("read max order: %w", err)
	}
	order := 0
	if maxOrder.Valid {
		order = int(maxOrder.Int64) + 1
	}

	res, err := s.db.Exec(
		`INSERT INTO tasks (title, estimated_pomodoros, order_index, created_at) VALUES (?, ?, ?, ?)`,
		title, estimated, order, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks returns incomplete tasks in display order. With includeCompleted the
// completed ones follow, most recently created first.
func (s *Store) ListTasks(includeCompleted bool) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if includeCompleted {
		query += ` ORDER BY completed, CASE WHEN completed = 0 THEN order_index ELSE -created_at END, id`
	} else {
		query += ` WHERE completed = 0 ORDER BY order_index, id`
	}
	return s.queryTasks(query)
}

// ListCompletedTasks returns completed tasks, most recently created first.
func (s *Store) ListCompletedTasks() ([]Task, error) {
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM tasks WHERE completed = 1 ORDER BY created_at DESC, id DESC`)
}

func (s *Store) CountCompletedTasks() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE completed = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return n, nil
}

// UpdateTask applies the non-nil fields of u. An empty update is a no-op.
func (s *Store) UpdateTask(id int64, u TaskUpdate) error {
	var sets []string
	var args []any

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return fmt.Errorf("update task %d: title is required", id)
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if u.EstimatedPomodoros != nil {
		if *u.EstimatedPomodoros < 1 {
			return fmt.Errorf("update task %d: estimate must be positive, got %d", id, *u.EstimatedPomodoros)
		}
		sets = append(sets, "estimated_pomodoros = ?")
		args = append(args, *u.EstimatedPomodoros)
	}
	if u.CompletedPomodoros != nil {
		if *u.CompletedPomodoros < 0 {
			return fmt.Errorf("update task %d: completed count must not be negative", id)
		}
		sets = append(sets, "completed_pomodoros = ?")
		args = append(args, *u.CompletedPomodoros)
	}
	if u.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*u.Completed))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return expectRow(res, "update task", id)
}

// IncrementTaskProgress adds one completed pomodoro to the task.
func (s *Store) IncrementTaskProgress(id int64) error {
	res, err := s.db.Exec(`UPDATE tasks SET completed_pomodoros = completed_pomodoros + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment task %d: %w", id, err)
	}
	return expectRow(res, "increment task", id)
}

// DeleteTask removes the task. Sessions that reference it are kept.
func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectRow(res, "delete task", id)
}

// ReorderTasks sets each task's order to its position in ids.
func (s *Store) ReorderTasks(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE tasks SET order_index = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id); err != nil {
			return fmt.Errorf("reorder task %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) queryTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	t := &Task{}
	var completed int
	var createdAt int64
	if err := row.Scan(&t.ID, &t.Title, &t.EstimatedPomodoros, &t.CompletedPomodoros, &completed, &t.OrderIndex, &createdAt); err != nil {
		return nil, err
	}
	t.Completed = completed == 1
	t.CreatedAt = time.Unix(createdAt, 0)
	return t, nil
}

func expectRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
