// Package progress provides progress reporting for plan execution.
//
// This package outputs human-readable progress information to stderr,
// including the current task, completion percentage, transfer speed, and
// ETA.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalTasks: len(p.Tasks),
//	    PlanName:   p.SelectionID,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	reporter.TaskStarted(task.Output, size, have)
//	io.Copy(io.MultiWriter(partial, reporter), body)
//	reporter.TaskCompleted()
//
// # Output Format
//
//	[stacfetch] Executing plan: copernicus.sentinel2level2a (4 tasks)
//	[stacfetch] Task 2/4 T08VPH_20240504T195901_TCI_10m.jp2 | 45.2% | 60 MiB / 133 MiB | Speed: 12 MiB/s | ETA: 6s
//	[stacfetch] Tasks: 3 completed | 1 skipped | 0 failed | 4 total
//	[stacfetch] Fetched 400 MiB in 35s | Average speed: 11 MiB/s
package progress
