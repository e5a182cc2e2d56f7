// Package domain contains the core advising entities and types.
//
// This package defines:
//   - Intent classification types and slot accessors
//   - Catalog records (Course) and the subject and specialization tables
//   - Planning inputs and outputs (Background, SemesterPlan)
//   - The per-query Response with its provenance-tagged Annotation
//
// # Design Philosophy
//
// Domain types are persistence-agnostic. Courses are read-only after the
// catalog loads; intents, plans and responses live for one request.
//
// # Naming Conventions
//
// Types ending in "Result" are pipeline baselines carried in Response.Result.
package domain
