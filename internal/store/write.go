package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/approuter/pkg/core"
)

// NewApp holds the fields of an app to be created.
type NewApp struct {
	Definition     core.Definition
	CoreStyle      string
	SharedStyle    string
	Icon           []byte
	MaskableIcon   []byte
	IconBackground string
	Visibility     core.Visibility
	Locked         bool
}

// AppSummary is a row of ListApps.
type AppSummary struct {
	ID         int64     `db:"id"`
	Definition []byte    `db:"definition"`
	Visibility string    `db:"visibility"`
	Locked     bool      `db:"locked"`
	HasIcon    bool      `db:"has_icon"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Name returns the app name from the stored definition, or "" when it cannot be decoded.
func (a AppSummary) Name() string {
	def, err := core.ParseDefinition(a.Definition)
	if err != nil {
		return ""
	}
	return def.Name
}

// CreateApp inserts a new app and returns its id.
func (s *Store) CreateApp(ctx context.Context, in NewApp) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if in.Definition.Name == "" {
		return 0, errors.New("app definition must have a name")
	}
	if in.Visibility == "" {
		in.Visibility = core.VisibilityUnlisted
	}
	if !in.Visibility.Valid() {
		return 0, fmt.Errorf("invalid visibility %q", in.Visibility)
	}

	definition := []byte(in.Definition.Raw)
	if len(definition) == 0 {
		var err error
		if definition, err = json.Marshal(in.Definition); err != nil {
			return 0, fmt.Errorf("failed to encode definition: %w", err)
		}
	}

	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRowxContext(ctx, s.rebind(
		`INSERT INTO apps (definition, core_style, shared_style, icon, maskable_icon,
		                   icon_background, visibility, locked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		string(definition), nullIfEmpty(in.CoreStyle), nullIfEmpty(in.SharedStyle),
		blobOrNil(in.Icon), blobOrNil(in.MaskableIcon), nullIfEmpty(in.IconBackground),
		string(in.Visibility), in.Locked, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create app: %w", err)
	}

	s.logger.Debug("created app", "id", id, "name", in.Definition.Name)
	return id, nil
}

// SetIconVariant stores (or replaces) the icon variant of an app for one size.
func (s *Store) SetIconVariant(ctx context.Context, appID int64, size int, data []byte) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if size <= 0 {
		return fmt.Errorf("invalid icon size %d", size)
	}
	if len(data) == 0 {
		return errors.New("icon data is empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, s.rebind(`UPDATE apps SET updated_at = ? WHERE id = ?`), time.Now().UTC(), appID)
	if err != nil {
		return fmt.Errorf("failed to touch app: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("app %d: %w", appID, core.ErrAppNotFound)
	}

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO app_icons (app_id, size, data) VALUES (?, ?, ?)
		 ON CONFLICT (app_id, size) DO UPDATE SET data = excluded.data`),
		appID, size, data,
	)
	if err != nil {
		return fmt.Errorf("failed to store icon variant: %w", err)
	}

	return tx.Commit()
}

// ListApps returns a summary of every stored app ordered by id.
func (s *Store) ListApps(ctx context.Context) ([]AppSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var apps []AppSummary
	err := s.db.SelectContext(ctx, &apps,
		`SELECT id, definition, visibility, locked, icon IS NOT NULL AS has_icon, updated_at
		 FROM apps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func blobOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
