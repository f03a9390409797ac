package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/domain/registrations"
)

const registrationColumns = `id, event_id, user_id, status, created_at, updated_at`

func (r *RegistrationRepository) Create(ctx context.Context, eventID, userID int64) (registrations.Registration, error) {
	now := formatTime(time.Now())
	result, err := r.db.ExecContext(ctx, `
INSERT INTO registrations (event_id, user_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		eventID, userID, registrations.StatusRegistered, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return registrations.Registration{}, registrations.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return registrations.Registration{}, registrations.ErrEventMissing
		}
		return registrations.Registration{}, fmt.Errorf("insert registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return registrations.Registration{}, fmt.Errorf("insert registration id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *RegistrationRepository) Get(ctx context.Context, id int64) (registrations.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id)
	return scanRegistration(row)
}

func (r *RegistrationRepository) FindActive(ctx context.Context, eventID, userID int64) (registrations.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = ? AND user_id = ?`,
		eventID, userID)
	return scanRegistration(row)
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]registrations.Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.event_id, r.user_id, r.status, r.created_at, r.updated_at, u.username, u.email
FROM registrations r
LEFT JOIN users u ON r.user_id = u.id
WHERE r.event_id = ?
ORDER BY r.created_at DESC, r.id DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	defer rows.Close()

	list := make([]registrations.Attendee, 0)
	for rows.Next() {
		var (
			attendee             registrations.Attendee
			createdAt, updatedAt string
			username, email      sql.NullString
		)
		err := rows.Scan(
			&attendee.ID, &attendee.EventID, &attendee.UserID, &attendee.Status,
			&createdAt, &updatedAt, &username, &email)
		if err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendee.CreatedAt = parseTime(createdAt)
		attendee.UpdatedAt = parseTime(updatedAt)
		attendee.Username = username.String
		attendee.Email = email.String
		list = append(list, attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	return list, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]registrations.UserRegistration, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.id, r.event_id, r.user_id, r.status, r.created_at, r.updated_at, e.title, e.date, e.location
FROM registrations r
LEFT JOIN events e ON r.event_id = e.id
WHERE r.user_id = ?
ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	defer rows.Close()

	list := make([]registrations.UserRegistration, 0)
	for rows.Next() {
		var (
			reg                  registrations.UserRegistration
			createdAt, updatedAt string
			title, date, loc     sql.NullString
		)
		err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
			&createdAt, &updatedAt, &title, &date, &loc)
		if err != nil {
			return nil, fmt.Errorf("scan user registration: %w", err)
		}
		reg.CreatedAt = parseTime(createdAt)
		reg.UpdatedAt = parseTime(updatedAt)
		reg.EventTitle = title.String
		reg.EventDate = parseTime(date.String)
		reg.EventLocation = loc.String
		list = append(list, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	return list, nil
}

func (r *RegistrationRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return affected > 0, nil
}

func (r *RegistrationRepository) IsOwnedBy(ctx context.Context, id, userID int64) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM registrations WHERE id = ? AND user_id = ?`, id, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check registration owner: %w", err)
	}
	return count > 0, nil
}

func scanRegistration(row *sql.Row) (registrations.Registration, error) {
	var (
		reg                  registrations.Registration
		createdAt, updatedAt string
	)
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return registrations.Registration{}, registrations.ErrNotFound
	} else if err != nil {
		return registrations.Registration{}, fmt.Errorf("scan registration: %w", err)
	}
	reg.CreatedAt = parseTime(createdAt)
	reg.UpdatedAt = parseTime(updatedAt)
	return reg, nil
}
