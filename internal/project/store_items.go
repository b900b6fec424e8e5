package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Create inserts a new project in the draft state and assigns its identifier.
func (s *Store) Create(ctx context.Context, p *Project) (*Project, error) {
	if p == nil {
		return nil, errors.New("project is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}

	source, voice, avatar, settings, lesson, audio, avatarOut, final, err := p.encodeFields()
	if err != nil {
		return nil, fmt.Errorf("encode project fields: %w", err)
	}

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (
            id, title, template_type, source_config_json, voice_config_json,
            avatar_config_json, video_settings_json, status, lesson_content_json,
            audio_output_json, avatar_output_json, final_output_json,
            error_step, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Title,
		string(p.TemplateType),
		source,
		voice,
		avatar,
		settings,
		p.Status,
		lesson,
		audio,
		avatarOut,
		final,
		nullableString(string(p.ErrorStep)),
		nullableString(p.ErrorMessage),
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return s.GetByID(ctx, p.ID)
}

// GetByID fetches a project by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Update persists changes to an existing project unconditionally.
func (s *Store) Update(ctx context.Context, p *Project) error {
	matched, err := s.update(ctx, p, "")
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("update project: no row with id %s", p.ID)
	}
	return nil
}

// UpdateFrom persists changes only when the stored status still equals
// expected. The returned bool reports whether the row matched; a false result
// means another actor moved the project on and this write was discarded.
func (s *Store) UpdateFrom(ctx context.Context, p *Project, expected Status) (bool, error) {
	if expected == "" {
		return false, errors.New("expected status must not be empty")
	}
	return s.update(ctx, p, expected)
}

func (s *Store) update(ctx context.Context, p *Project, expected Status) (bool, error) {
	if p == nil {
		return false, errors.New("project is nil")
	}
	p.UpdatedAt = time.Now().UTC()

	source, voice, avatar, settings, lesson, audio, avatarOut, final, err := p.encodeFields()
	if err != nil {
		return false, fmt.Errorf("encode project fields: %w", err)
	}

	query := `UPDATE projects
         SET title = ?, template_type = ?, source_config_json = ?, voice_config_json = ?,
             avatar_config_json = ?, video_settings_json = ?, status = ?, lesson_content_json = ?,
             audio_output_json = ?, avatar_output_json = ?, final_output_json = ?,
             error_step = ?, error_message = ?, updated_at = ?
         WHERE id = ?`
	args := []any{
		p.Title,
		string(p.TemplateType),
		source,
		voice,
		avatar,
		settings,
		p.Status,
		lesson,
		audio,
		avatarOut,
		final,
		nullableString(string(p.ErrorStep)),
		nullableString(p.ErrorMessage),
		p.UpdatedAt.Format(time.RFC3339Nano),
		p.ID,
	}
	if expected != "" {
		query += ` AND status = ?`
		args = append(args, expected)
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns projects filtered by status set (or all projects when no
// status is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Project, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + projectColumns + ` FROM projects`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Remove deletes a project by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns the number of projects per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
