package store_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/approuter/internal/store"
	"github.com/leapstack-labs/approuter/internal/store/storetest"
	"github.com/leapstack-labs/approuter/pkg/core"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := store.Open(context.Background(), "mysql", "root@/apps", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestStore_Migrate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	version, err := s.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	statuses, err := s.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.True(t, st.Applied, "migration %d should be applied", st.Version)
	}

	// Running again is a no-op.
	require.NoError(t, s.Migrate(ctx))
}

func TestStore_FetchApp_Styles(t *testing.T) {
	s := storetest.New(t)
	id := storetest.CreateApp(t, s, store.NewApp{
		Definition:  core.Definition{Name: "Styled"},
		CoreStyle:   "body { color: red; }",
		SharedStyle: ".shared { margin: 0; }",
	})
	bare := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Bare"}})

	tests := []struct {
		name       string
		id         int64
		projection core.Projection
		wantCore   string
		wantShared string
	}{
		{name: "core slot", id: id, projection: core.ProjectCoreStyle, wantCore: "body { color: red; }"},
		{name: "shared slot", id: id, projection: core.ProjectSharedStyle, wantShared: ".shared { margin: 0; }"},
		{name: "empty core slot", id: bare, projection: core.ProjectCoreStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := s.FetchApp(context.Background(), core.Query{ID: tt.id, Projection: tt.projection, Raw: true})
			require.NoError(t, err)
			assert.Equal(t, tt.id, app.ID)
			assert.Equal(t, tt.wantCore, app.CoreStyle)
			assert.Equal(t, tt.wantShared, app.SharedStyle)
			assert.Empty(t, app.Definition.Name, "style projection must not load the definition")
		})
	}
}

func TestStore_FetchApp_NotFound(t *testing.T) {
	s := storetest.New(t)

	for _, p := range []core.Projection{
		core.ProjectCoreStyle, core.ProjectSharedStyle, core.ProjectIcon, core.ProjectManifest, core.ProjectShell,
	} {
		t.Run(p.String(), func(t *testing.T) {
			app, err := s.FetchApp(context.Background(), core.Query{ID: 404, Projection: p, Size: 32})
			assert.Nil(t, app)
			assert.ErrorIs(t, err, core.ErrAppNotFound)
		})
	}
}

func TestStore_FetchApp_Icon(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	icon := storetest.SolidPNG(t, 10, 10, storetest.Red)
	variant := storetest.SolidPNG(t, 64, 64, storetest.Green)
	maskable := storetest.SolidPNG(t, 20, 20, storetest.Blue)

	id := storetest.CreateApp(t, s, store.NewApp{
		Definition:     core.Definition{Name: "Icons"},
		Icon:           icon,
		MaskableIcon:   maskable,
		IconBackground: "#ff00ff",
	})
	require.NoError(t, s.SetIconVariant(ctx, id, 64, variant))

	app, err := s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectIcon, Size: 64})
	require.NoError(t, err)
	assert.Equal(t, icon, app.Icon)
	assert.Equal(t, variant, app.IconVariant)
	assert.Equal(t, maskable, app.MaskableIcon)
	assert.Equal(t, "#ff00ff", app.IconBackground)

	app, err = s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectIcon, Size: 32})
	require.NoError(t, err)
	assert.Nil(t, app.IconVariant)

	empty := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "No icon"}})
	app, err = s.FetchApp(ctx, core.Query{ID: empty, Projection: core.ProjectIcon, Size: 32})
	require.NoError(t, err)
	assert.Nil(t, app.Icon)
	assert.Nil(t, app.MaskableIcon)
	assert.Empty(t, app.IconBackground)
}

func TestStore_FetchApp_ManifestAndShell(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	def := core.Definition{
		Name:        "Survey",
		Description: "Collects answers",
		DefaultPage: "Start Page",
		Theme:       core.Theme{ThemeColor: "#336699", SplashColor: "#eeeeee"},
	}
	id := storetest.CreateApp(t, s, store.NewApp{
		Definition:   def,
		MaskableIcon: storetest.SolidPNG(t, 4, 4, storetest.Blue),
		Visibility:   core.VisibilityPublic,
		Locked:       true,
	})

	app, err := s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectManifest})
	require.NoError(t, err)
	assert.Equal(t, "Survey", app.Definition.Name)
	assert.Equal(t, "#336699", app.Definition.Theme.ThemeColor)
	assert.True(t, app.HasMaskableIcon)
	assert.Nil(t, app.MaskableIcon, "manifest projection only reports presence")

	app, err = s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectShell})
	require.NoError(t, err)
	assert.Equal(t, core.VisibilityPublic, app.Visibility)
	assert.True(t, app.Locked)
	assert.False(t, app.UpdatedAt.IsZero())
	assert.Equal(t, "start-page", app.Definition.DefaultPageSlug())

	app, err = s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectShell, Raw: true})
	require.NoError(t, err)
	assert.Empty(t, app.Definition.Name)
	assert.Contains(t, string(app.Definition.Raw), `"name":"Survey"`)
}

func TestStore_CreateApp_Validation(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	_, err := s.CreateApp(ctx, store.NewApp{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have a name")

	_, err = s.CreateApp(ctx, store.NewApp{Definition: core.Definition{Name: "x"}, Visibility: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid visibility")
}

func TestStore_CreateApp_KeepsRawDefinition(t *testing.T) {
	s := storetest.New(t)
	raw := []byte(`{"name":"Raw","pages":[{"name":"Home","blocks":[{"type":"form"}]}]}`)

	id := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Raw", Raw: raw}})

	app, err := s.FetchApp(context.Background(), core.Query{ID: id, Projection: core.ProjectManifest, Raw: true})
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(app.Definition.Raw))
}

func TestStore_SetIconVariant(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	id := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Variants"}})

	err := s.SetIconVariant(ctx, 999, 32, []byte{1})
	assert.ErrorIs(t, err, core.ErrAppNotFound)

	assert.Error(t, s.SetIconVariant(ctx, id, 0, []byte{1}))
	assert.Error(t, s.SetIconVariant(ctx, id, 32, nil))

	first := storetest.SolidPNG(t, 32, 32, storetest.Red)
	second := storetest.SolidPNG(t, 32, 32, storetest.Green)
	require.NoError(t, s.SetIconVariant(ctx, id, 32, first))
	require.NoError(t, s.SetIconVariant(ctx, id, 32, second))

	app, err := s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectIcon, Size: 32})
	require.NoError(t, err)
	assert.Equal(t, second, app.IconVariant)
}

func TestStore_ListApps(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	apps, err := s.ListApps(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)

	a := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Alpha"}, Icon: []byte{1, 2}})
	b := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Beta"}, Locked: true})

	apps, err = s.ListApps(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, a, apps[0].ID)
	assert.Equal(t, "Alpha", apps[0].Name())
	assert.True(t, apps[0].HasIcon)
	assert.Equal(t, b, apps[1].ID)
	assert.True(t, apps[1].Locked)
	assert.Equal(t, string(core.VisibilityUnlisted), apps[1].Visibility)
}

func TestStore_FetchApp_ConcurrentDistinctIDs(t *testing.T) {
	s := storetest.New(t)

	const n = 16
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = storetest.CreateApp(t, s, store.NewApp{
			Definition: core.Definition{Name: fmt.Sprintf("app-%d", i)},
			CoreStyle:  fmt.Sprintf(".app-%d {}", i),
		})
	}

	eg, ctx := errgroup.WithContext(context.Background())
	for i, id := range ids {
		eg.Go(func() error {
			app, err := s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectCoreStyle, Raw: true})
			if err != nil {
				return err
			}
			if want := fmt.Sprintf(".app-%d {}", i); app.CoreStyle != want {
				return fmt.Errorf("app %d: got style %q, want %q", id, app.CoreStyle, want)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

func TestStore_FetchApp_DatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		query     core.Query
		errSubstr string
	}{
		{
			name: "query failure is not a miss",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT core_style FROM apps WHERE id = ?")).
					WithArgs(int64(1)).
					WillReturnError(errors.New("disk I/O error"))
			},
			query:     core.Query{ID: 1, Projection: core.ProjectCoreStyle, Raw: true},
			errSubstr: "disk I/O error",
		},
		{
			name: "corrupt definition",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"definition", "has_maskable"}).AddRow([]byte("{"), false)
				mock.ExpectQuery("SELECT definition, maskable_icon IS NOT NULL FROM apps").
					WithArgs(int64(2)).
					WillReturnRows(rows)
			},
			query:     core.Query{ID: 2, Projection: core.ProjectManifest},
			errSubstr: "invalid stored definition",
		},
		{
			name:      "invalid query",
			query:     core.Query{ID: 0, Projection: core.ProjectIcon},
			errSubstr: "invalid app id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			s := store.New(sqlx.NewDb(db, store.DriverSQLite), nil)
			app, err := s.FetchApp(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, app)
			assert.NotErrorIs(t, err, core.ErrAppNotFound)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_FetchApp_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT shared_style FROM apps WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"shared_style"}).AddRow(".x{}"))

	s := store.New(sqlx.NewDb(db, store.DriverPostgres), nil)
	app, err := s.FetchApp(context.Background(), core.Query{ID: 9, Projection: core.ProjectSharedStyle, Raw: true})
	require.NoError(t, err)
	assert.Equal(t, ".x{}", app.SharedStyle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchApp_CanceledContext(t *testing.T) {
	s := storetest.New(t)
	id := storetest.CreateApp(t, s, store.NewApp{Definition: core.Definition{Name: "Cancel"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FetchApp(ctx, core.Query{ID: id, Projection: core.ProjectManifest})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
