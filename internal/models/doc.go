// Package models defines domain entities and persistence interfaces for the raccclo account cloning service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing Reddit API data
//   - [Subreddit] : A single community subscription
//   - [Multireddit] : A named subreddit collection with path and visibility
//   - [Outcome] : Per-item result of an apply step
//   - [AccountExport] : Portable snapshot of one account's subscriptions and multireddits
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CloneRun] : One clone invocation with account pair, status, and timing
//   - [RunOutcome] : A persisted Outcome row owned by a CloneRun
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
