// Package repository maps bun models to a generic Store: reflection metadata
// over bun tags, compilation of types.Where into joined selects, dotted search
// paths, and insert-or-upsert persistence with soft delete support.
package repository
