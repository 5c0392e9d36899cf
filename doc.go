// Package hestia provides a declarative, extensible configuration engine:
// a schema registry that lets independently-loaded components contribute
// named options, loads a flat key=value file, runs every present value
// through its option's hook pipeline, and produces a merged, fully-typed
// option table.
//
// # Architecture Overview
//
// Hestia consists of six integrated subsystems:
//  1. **Option Schema Table**: ordered catalogue of option descriptors with
//     duplicate detection across contributing namespaces
//  2. **Raw File Reader**: flat key=value parsing via a synthesized implicit
//     section, with real sections ignored and reported
//  3. **Hook Pipeline**: parse → validate → post per option, each stage
//     optional, each failure isolated to that option
//  4. **Reload Orchestrator**: defaults plus file values merged into the
//     live table, classified as SUCCESS, ERRORS or FAIL
//  5. **In-Place Editor**: comment-preserving single-option rewrites with a
//     timestamped modification stamp and atomic file replacement
//  6. **Deferred Logger**: severity-ordered message queue accumulated before
//     a logging sink exists, drained by an explicit flush
//
// # Lifecycle
//
// Construction, registration, freeze, reload:
//
//	cfg, err := hestia.New("data/bot.conf")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg.RegisterMany([]hestia.Option{
//		{Name: "nick_name", Default: "Hestia"},
//		{Name: "log_level", Default: hestia.LevelInfo, Parse: hestia.ParseLogLevel},
//		{Name: "recon_wait", Default: 60, Parse: hestia.ParseInt},
//	}, "core")
//
//	switch cfg.Reload() {
//	case hestia.ReloadFail:
//		// a required option is missing; inspect cfg.Messages()
//	case hestia.ReloadErrors:
//		// usable table, but some values fell back to defaults
//	}
//
// The registration window closes when the first reload runs. The option
// table is rebuilt wholesale on every reload and replaced only after the
// reload completes, so readers never observe a half-built table.
//
// # Failure Model
//
// Only duplicate registration is surfaced to the immediate caller. Every
// other failure — unreadable file, bad value, failing hook, missing required
// option — is absorbed into the deferred log queue and reflected in the
// aggregate reload Result. A host never sees a raw parse error from this
// package.
//
// # Persistence
//
// Single-option saves rewrite exactly one block of the config file:
//
//	if err := cfg.Save("recon_wait", "120", "requested by admin"); err != nil {
//		// value rejected by the pipeline, file untouched
//	}
//
// All unrelated lines, comments and blank lines are preserved, and the
// rewritten block carries a "### MODIFIED:" stamp replacing any stamp from
// a prior save.
//
// # Concurrency
//
// The engine is single-threaded and synchronous by design: no background
// tasks, no locking around Reload and Save. Callers that need concurrent
// access must serialize externally. A save re-reads and rewrites the file
// without holding a lock between the two, so a concurrent external edit in
// that window is a documented caveat.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package hestia
