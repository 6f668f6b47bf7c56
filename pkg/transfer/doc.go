// Package transfer executes download plans with resumable transfers.
//
// Each task moves through these states:
//
//	NotStarted -> SkippedAlreadyDone          output file exists
//	NotStarted -> InProgress -> Complete      no partial data on disk
//	NotStarted -> Resuming   -> Complete      partial data on disk
//
// Bytes are appended to "<output>.partial" and the file is renamed to the
// output path once its length equals the remote size. The rename is the
// only completion signal: a partial file without an output file is
// incomplete and is resumed from its current length on the next run. No
// other transfer state is persisted, and the executor never retries.
//
// # Single Writer
//
// The partial file protocol assumes one executor per output path. Running
// two executors, in one process or several, against plans that share an
// output path races on the partial file and on the final rename. Callers
// must serialize such runs, for example by never executing the same plan
// twice at once.
package transfer
