// Package crudkit provides a generic entity access service over bun:
// typed finds, paginated search across joined relations, Optional results,
// snapshot updates that merge into a deep copy, and soft or hard deletes,
// all runnable inside a caller's transaction.
package crudkit
