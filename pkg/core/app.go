package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAppNotFound is returned by an AppAccessor when no app exists for the requested id.
var ErrAppNotFound = errors.New("app not found")

// Visibility controls who may discover an app.
type Visibility string

// Visibility values.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

// App is the stored representation of one deployed application.
//
// Only the fields belonging to the requested Projection are populated; the
// rest keep their zero value.
type App struct {
	ID int64

	// ProjectCoreStyle / ProjectSharedStyle
	CoreStyle   string
	SharedStyle string

	// ProjectIcon
	Icon           []byte
	IconVariant    []byte // stored variant for Query.Size, if any
	MaskableIcon   []byte
	IconBackground string

	// ProjectManifest / ProjectShell
	Definition      Definition
	HasMaskableIcon bool
	Visibility      Visibility
	Locked          bool
	UpdatedAt       time.Time
}

// Projection names the subset of an app record a response needs.
type Projection uint8

// Projections understood by every AppAccessor.
const (
	ProjectCoreStyle Projection = iota + 1
	ProjectSharedStyle
	ProjectIcon
	ProjectManifest
	ProjectShell
)

var projectionNames = map[Projection]string{
	ProjectCoreStyle:   "coreStyle",
	ProjectSharedStyle: "sharedStyle",
	ProjectIcon:        "icon",
	ProjectManifest:    "manifest",
	ProjectShell:       "shell",
}

// String returns the attribute name of the projection.
func (p Projection) String() string {
	if name, ok := projectionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Projection(%d)", uint8(p))
}

// Valid reports whether p is a known projection.
func (p Projection) Valid() bool {
	_, ok := projectionNames[p]
	return ok
}

// IsStyle reports whether p selects one of the two stylesheet slots.
func (p Projection) IsStyle() bool {
	return p == ProjectCoreStyle || p == ProjectSharedStyle
}

// Query describes a single accessor lookup. It is built fresh for every request.
type Query struct {
	ID         int64
	Projection Projection
	// Raw requests the projected attribute as stored, without decoding
	// structured columns.
	Raw bool
	// Size selects the per-size icon variant. Only used by ProjectIcon.
	Size int
}

// Validate checks that the query can be answered.
func (q Query) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("invalid app id %d", q.ID)
	}
	if !q.Projection.Valid() {
		return fmt.Errorf("unknown projection %s", q.Projection)
	}
	if q.Size < 0 {
		return fmt.Errorf("invalid icon size %d", q.Size)
	}
	return nil
}

// AppAccessor resolves app records for the router.
//
// FetchApp returns ErrAppNotFound (possibly wrapped) when the app does not
// exist. Any other error is treated by callers as an unexpected failure.
// Implementations must honour ctx cancellation.
type AppAccessor interface {
	FetchApp(ctx context.Context, q Query) (*App, error)
}

// AppAccessorFunc adapts a function to the AppAccessor interface.
type AppAccessorFunc func(ctx context.Context, q Query) (*App, error)

// FetchApp calls f(ctx, q).
func (f AppAccessorFunc) FetchApp(ctx context.Context, q Query) (*App, error) {
	return f(ctx, q)
}
