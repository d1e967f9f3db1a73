package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/approuter/pkg/core"
)

// FetchApp implements core.AppAccessor. Only the columns belonging to
// q.Projection are read.
func (s *Store) FetchApp(ctx context.Context, q core.Query) (*core.App, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	app := &core.App{ID: q.ID}
	var err error

	switch q.Projection {
	case core.ProjectCoreStyle, core.ProjectSharedStyle:
		err = s.fetchStyle(ctx, q, app)
	case core.ProjectIcon:
		err = s.fetchIcon(ctx, q, app)
	case core.ProjectManifest:
		err = s.fetchManifest(ctx, q, app)
	case core.ProjectShell:
		err = s.fetchShell(ctx, q, app)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("app %d: %w", q.ID, core.ErrAppNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s of app %d: %w", q.Projection, q.ID, err)
	}
	return app, nil
}

func (s *Store) fetchStyle(ctx context.Context, q core.Query, app *core.App) error {
	column := "core_style"
	if q.Projection == core.ProjectSharedStyle {
		column = "shared_style"
	}

	var style sql.NullString
	//nolint:gosec // column is one of two constants
	err := s.db.QueryRowxContext(ctx,
		s.rebind(`SELECT `+column+` FROM apps WHERE id = ?`), q.ID,
	).Scan(&style)
	if err != nil {
		return err
	}

	if q.Projection == core.ProjectSharedStyle {
		app.SharedStyle = style.String
	} else {
		app.CoreStyle = style.String
	}
	return nil
}

func (s *Store) fetchIcon(ctx context.Context, q core.Query, app *core.App) error {
	var background sql.NullString
	err := s.db.QueryRowxContext(ctx, s.rebind(
		`SELECT icon, maskable_icon, icon_background,
		        (SELECT data FROM app_icons WHERE app_id = apps.id AND size = ?)
		 FROM apps WHERE id = ?`),
		q.Size, q.ID,
	).Scan(&app.Icon, &app.MaskableIcon, &background, &app.IconVariant)
	if err != nil {
		return err
	}
	app.IconBackground = background.String
	return nil
}

func (s *Store) fetchManifest(ctx context.Context, q core.Query, app *core.App) error {
	var definition []byte
	err := s.db.QueryRowxContext(ctx, s.rebind(
		`SELECT definition, maskable_icon IS NOT NULL FROM apps WHERE id = ?`),
		q.ID,
	).Scan(&definition, &app.HasMaskableIcon)
	if err != nil {
		return err
	}
	return decodeDefinition(definition, q.Raw, app)
}

func (s *Store) fetchShell(ctx context.Context, q core.Query, app *core.App) error {
	var (
		definition []byte
		visibility string
		updatedAt  time.Time
	)
	err := s.db.QueryRowxContext(ctx, s.rebind(
		`SELECT definition, visibility, locked, updated_at FROM apps WHERE id = ?`),
		q.ID,
	).Scan(&definition, &visibility, &app.Locked, &updatedAt)
	if err != nil {
		return err
	}
	app.Visibility = core.Visibility(visibility)
	app.UpdatedAt = updatedAt.UTC()
	return decodeDefinition(definition, q.Raw, app)
}

func decodeDefinition(data []byte, raw bool, app *core.App) error {
	if raw {
		app.Definition.Raw = append([]byte(nil), data...)
		return nil
	}
	def, err := core.ParseDefinition(data)
	if err != nil {
		return fmt.Errorf("invalid stored definition: %w", err)
	}
	app.Definition = def
	return nil
}
