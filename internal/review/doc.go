// Package review contains the core types and engine for LLM-based code
// review.
//
// It defines the SourceFile, Finding, FileReview, and ReviewResult types,
// selects system prompts by review mode (standard, single-file, diff),
// extracts JSON objects from noisy model output, and scores results.
//
// Files whose token estimate exceeds the model's context window budget are
// split into overlapping line-bounded chunks (chunker.go), reviewed chunk
// by chunk, and merged back with line numbers remapped into file
// coordinates (aggregate.go). Everything runs strictly sequentially: one
// model call at a time, files in input order, chunks in file order.
//
// A failed or unparseable unit of work never aborts the batch. Its result
// is recorded as empty and counted in FileReview.Recovered, so consumers
// can tell a clean file from one whose review was partially lost.
package review
