package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/domain/events"
)

const eventColumns = `id, title, description, date, location, image, user_id, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (events.Event, error) {
	now := formatTime(time.Now())
	result, err := r.db.ExecContext(ctx, `
INSERT INTO events (title, description, date, location, image, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		params.Title,
		nullable(params.Description),
		formatTime(params.Date),
		nullable(params.Location),
		nullable(params.Image),
		params.OwnerID,
		now, now)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *EventRepository) Get(ctx context.Context, id int64) (events.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

func (r *EventRepository) List(ctx context.Context, ownerID *int64) ([]events.Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if ownerID != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events WHERE user_id = ? ORDER BY date DESC`, *ownerID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events ORDER BY date DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	list := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return list, nil
}

func (r *EventRepository) Update(ctx context.Context, id int64, params events.UpdateParams) (events.Event, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE events
SET title = ?, description = ?, date = ?, location = ?, image = ?, updated_at = ?
WHERE id = ?`,
		params.Title,
		nullable(params.Description),
		formatTime(params.Date),
		nullable(params.Location),
		nullable(params.Image),
		formatTime(time.Now()),
		id)
	if err != nil {
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	if affected == 0 {
		return events.Event{}, events.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return affected > 0, nil
}

func (r *EventRepository) IsOwnedBy(ctx context.Context, id, userID int64) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM events WHERE id = ? AND user_id = ?`, id, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check event owner: %w", err)
	}
	return count > 0, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row *sql.Row) (events.Event, error) {
	event, err := scanEventFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return events.Event{}, events.ErrNotFound
	}
	return event, err
}

func scanEventRows(rows *sql.Rows) (events.Event, error) {
	return scanEventFrom(rows)
}

func scanEventFrom(scanner rowScanner) (events.Event, error) {
	var (
		event                        events.Event
		description, location, image sql.NullString
		date, createdAt, updatedAt   string
	)
	err := scanner.Scan(
		&event.ID, &event.Title, &description, &date, &location, &image,
		&event.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, err
		}
		return events.Event{}, fmt.Errorf("scan event: %w", err)
	}
	event.Description = description.String
	event.Location = location.String
	event.Image = image.String
	event.Date = parseTime(date)
	event.CreatedAt = parseTime(createdAt)
	event.UpdatedAt = parseTime(updatedAt)
	return event, nil
}
