// Package bootstrap prepares the shared backing store before the first
// request is served.
//
// The Sequencer runs five idempotent steps in a fixed order:
//
//  1. folder: create the transfer, process, archive and temp folders
//  2. role: create the administrative identity
//  3. queue_index: unique job_args index on the queue collection
//  4. stdout_index: ttl index on the stdout collection, or its removal
//  5. stat_index: timestamp index on the stat collection
//
// Each step runs at most once per State value. A step that already ran is a
// no-op that touches neither the filesystem nor the store, so RunAll can be
// called from every entry point without cost. A fresh State re-checks the
// store, where every mutation is create-if-absent, so repeated process starts
// converge on the same state.
package bootstrap
