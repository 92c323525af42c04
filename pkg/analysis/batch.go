package analysis

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is one file of a batch.
type Job struct {
	Name   string
	Params *Params
}

// JobResult pairs a job with its outcome; exactly one of Result and Err is
// set.
type JobResult struct {
	Name   string
	Result *Result
	Err    error
}

// RunBatch reduces every job with at most workers files in flight. Each
// file is independent, so a failing file does not stop the others.
// Results keep the order of jobs. Cancelling ctx marks unstarted jobs with
// the context error.
func RunBatch(ctx context.Context, jobs []Job, workers int, log zerolog.Logger) []JobResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			results[i].Name = job.Name
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			res, err := NewAnalyzer(job.Params, log).Process(gctx)
			if err != nil {
				log.Error().Err(err).Str("job", job.Name).Msg("analysis failed")
				results[i].Err = err
				return nil
			}
			results[i].Result = res
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes
	_ = g.Wait()
	return results
}
