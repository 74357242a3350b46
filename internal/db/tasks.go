package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Hussein-Mazeh/TaskTracker/internal/task"
)

// InsertTask stores a new task row and returns its database ID. The owning
// username is normalized to lowercase so task ownership follows the same
// case-insensitive identity as the account store.
func InsertTask(d *DB, t task.Task) (int64, error) {
	if d == nil || d.sql == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`INSERT INTO tasks (username, title, description, priority, deadline, category, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToLower(t.Username), t.Title, t.Description, t.Priority, t.Deadline, t.Category, t.Completed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch insert id: %w", err)
	}
	return id, nil
}

// UpdateTask rewrites the editable fields of an existing task.
// It returns sql.ErrNoRows if the task does not exist.
func UpdateTask(d *DB, t task.Task) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`UPDATE tasks SET title = ?, description = ?, priority = ?, deadline = ?, category = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Title, t.Description, t.Priority, t.Deadline, t.Category, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(res)
}

// SetTaskCompleted flips the completion flag for a task.
// It returns sql.ErrNoRows if the task does not exist.
func SetTaskCompleted(d *DB, id int64, completed bool) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`UPDATE tasks SET completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		completed, id,
	)
	if err != nil {
		return fmt.Errorf("mark task: %w", err)
	}
	return requireRow(res)
}

// DeleteTask removes a task row.
// It returns sql.ErrNoRows if nothing was deleted.
func DeleteTask(d *DB, id int64) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res)
}

// GetTasksByUser returns all tasks owned by a username, oldest first.
func GetTasksByUser(d *DB, username string) ([]task.Task, error) {
	return queryTasks(d,
		`SELECT id, username, title, description, priority, deadline, category, completed
		 FROM tasks WHERE username = ? ORDER BY id`,
		strings.ToLower(username),
	)
}

// GetAllTasks returns every task across all users, grouped by owner.
func GetAllTasks(d *DB) ([]task.Task, error) {
	return queryTasks(d,
		`SELECT id, username, title, description, priority, deadline, category, completed
		 FROM tasks ORDER BY username, id`,
	)
}

func queryTasks(d *DB, query string, args ...any) ([]task.Task, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	var results []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(
			&t.ID,
			&t.Username,
			&t.Title,
			&t.Description,
			&t.Priority,
			&t.Deadline,
			&t.Category,
			&t.Completed,
		); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return results, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
