// SPDX-License-Identifier: EPL-2.0

// Package loader fetches audio from URLs or local files in parallel and
// decodes it.
//
// A Job keeps its results in source order whatever order the sources finish
// in, and calls its completion callback exactly once. Empty sources count as
// finished straight away; failed ones count too and carry their error:
//
//	job := loader.New(loader.WithProgress(bar.Update)).Start(ctx, urls, func(rs loader.Results) {
//		sounds.Replace(rs.Buffers(), names, width)
//	})
//	<-job.Done()
package loader
