package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
	"github.com/ironsheep/voc-autolabel/internal/voc"
)

// Job is one image to annotate.
type Job struct {
	ImagePath  string `json:"image_path"`
	OutputPath string `json:"output_path"`
	Label      string `json:"label,omitempty"`
}

// Result is the outcome of one Job. Err is nil on success.
type Result struct {
	Job Job
	Box detection.Box
	Err error
}

// RunBatch annotates jobs on a pool of workers.
//
// Results are returned in job order. A failing job never affects the others.
// When ctx is cancelled no further jobs are started; jobs already running
// finish, and the unstarted ones report ctx.Err().
func (a *Annotator) RunBatch(ctx context.Context, jobs []Job, workers int) []Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]Result, len(jobs))
	for i, j := range jobs {
		results[i].Job = j
	}

	workCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				// Each index is owned by exactly one worker.
				results[i] = a.runJob(jobs[i])
			}
		}()
	}

	next := 0
dispatch:
	for next < len(jobs) {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case workCh <- next:
			next++
		}
	}
	close(workCh)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i].Err = ctx.Err()
	}

	for _, r := range results {
		if r.Err != nil {
			a.log.Warn("annotation failed", "path", r.Job.ImagePath, "kind", Kind(r.Err), "error", r.Err)
		}
	}
	return results
}

// runJob processes one job, converting a panic into an error so that one bad
// image cannot take down the batch.
func (a *Annotator) runJob(job Job) (res Result) {
	res.Job = job
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic while annotating %s: %v", job.ImagePath, p)
		}
	}()

	out, err := a.GenerateAnnotation(job.ImagePath, job.OutputPath, job.Label)
	if err != nil {
		res.Err = err
		return res
	}
	res.Box = out.Box
	return res
}

// Summary counts batch results by outcome.
type Summary struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    map[string]int `json:"failed"`
}

// Summarize tallies results by Kind.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Failed: map[string]int{}}
	for _, r := range results {
		if r.Err == nil {
			s.Succeeded++
			continue
		}
		s.Failed[Kind(r.Err)]++
	}
	return s
}

// JobsFromDir lists the supported images directly inside dir, sorted by
// name, and pairs each with its annotation path. Annotations go next to the
// images unless outDir is set.
func JobsFromDir(dir, outDir, label string) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !imaging.IsSupported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		jobs = append(jobs, Job{
			ImagePath:  path,
			OutputPath: voc.OutputPath(path, outDir),
			Label:      label,
		})
	}
	return jobs, nil
}
