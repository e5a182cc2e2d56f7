// Package service contains the advising logic.
//
// A request flows through three steps:
//   - Dispatcher classifies free text into an intent with slots using an
//     ordered rule table. It performs no I/O.
//   - Orchestrator looks up the pipeline for the intent and computes the
//     deterministic baseline with CourseService and PlanningService.
//   - The AI gateway is called last, under a hard timeout, to annotate the
//     baseline. Its failures degrade to canned text and are never returned
//     as errors.
//
// # Thread Safety
//
// Services hold no per-request state and are safe for concurrent use. The
// catalog they read is immutable after load.
package service
