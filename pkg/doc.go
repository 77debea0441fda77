// Package pkg provides the core libraries for reqsmith dependency registration.
//
// # Overview
//
// Reqsmith scans a Python project, works out which third-party packages it
// depends on, and registers them with poetry. The pkg directory is organized
// into three main areas:
//
//  1. Domain logic - catalog, pydeps, reconcile, poetry, venv
//  2. Infrastructure - cache, config, errors, observability, buildinfo
//  3. Orchestration - pipeline (scan → extract → reconcile → write)
//
// # Architecture
//
// The typical data flow through reqsmith:
//
//	Project directory
//	         ↓
//	    [scan] package (deterministic file walk)
//	         ↓
//	    [pydeps] package (import + requirements extraction)
//	         ↓
//	    [reconcile] package (catalog filtering + conflict resolution)
//	         ↓
//	    [poetry] package (poetry add invocations)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Root: "."})
package pkg
