// Package core defines the shared language of the app router.
//
// This package contains:
//   - Domain entities (App, Definition)
//   - The query descriptor handed to the data accessor (Query, Projection)
//   - Service interfaces (AppAccessor)
//
// pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
