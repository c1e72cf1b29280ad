// Package hashsearch finds short byte suffixes that steer a digest.
//
// Appending bytes to a file changes its digest; this package scans a
// bounded space of candidate suffixes in parallel until the digest of
// file-plus-suffix begins with a caller-chosen bit prefix. The digest
// state is checkpointed once after absorbing the file, so each
// candidate costs one state restore and one short update instead of a
// full rehash of the input.
//
// No weakness in any digest is exploited; the scan is plain brute
// force, made cheap per candidate by the checkpoint.
//
// See [Run] for the end-to-end operation used by the CLI, or build a
// [Searcher] directly over a base state for finer control.
package hashsearch
