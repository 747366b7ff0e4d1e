package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	models "io.winapps.depttimeline/internal/models/entry"
)

// Runner generates reports in the background and tracks them in a JobStore
type Runner struct {
	gen    *Generator
	jobs   JobStore
	dir    string
	logger *zap.SugaredLogger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewRunner writes finished reports into dir as <jobID>.pdf
func NewRunner(gen *Generator, jobs JobStore, dir string, logger *zap.SugaredLogger) *Runner {
	return &Runner{gen: gen, jobs: jobs, dir: dir, logger: logger, now: time.Now}
}

// Start records a pending job for entries and begins generating it. An
// empty entry list is rejected with ErrNoEntries and no job is created.
func (r *Runner) Start(ctx context.Context, entries []models.Entry, includeImages bool) (JobStatus, error) {
	if len(entries) == 0 {
		return JobStatus{}, ErrNoEntries
	}
	now := r.now()
	st := JobStatus{
		JobID:         uuid.New().String(),
		Status:        JobPending,
		IncludeImages: includeImages,
		StartedAt:     now,
		TotalEntries:  len(entries),
		FileName:      FileName(now),
	}
	if err := r.jobs.Save(ctx, st); err != nil {
		return JobStatus{}, fmt.Errorf("failed to initialize report job: %w", err)
	}

	snapshot := append([]models.Entry(nil), entries...)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(st, snapshot)
	}()
	return st, nil
}

// Status returns the current record for jobID
func (r *Runner) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	return r.jobs.Load(ctx, jobID)
}

// Wait blocks until every started job has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(st JobStatus, entries []models.Entry) {
	ctx := context.Background()
	log := r.logger.With("job_id", st.JobID)

	st.Status = JobRunning
	r.save(ctx, st)

	fail := func(err error) {
		st.Status = JobFailed
		st.Error = err.Error()
		done := r.now()
		st.CompletedAt = &done
		r.save(ctx, st)
		log.Errorw("Report job failed", "error", err)
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		fail(fmt.Errorf("failed to create reports directory: %w", err))
		return
	}
	path := filepath.Join(r.dir, st.JobID+".pdf")
	f, err := os.Create(path)
	if err != nil {
		fail(fmt.Errorf("failed to create report file: %w", err))
		return
	}

	res, err := r.gen.Generate(ctx, f, entries, Options{
		IncludeImages: st.IncludeImages,
		Progress: func(done, total int) {
			st.ProcessedEntries = done
			// hold back the last percent until the file is closed
			st.Progress = done * 99 / total
			r.save(ctx, st)
		},
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		fail(err)
		return
	}

	done := r.now()
	st.Status = JobCompleted
	st.Progress = 100
	st.CompletedAt = &done
	st.Pages = res.Pages
	st.ImagesPlaced = res.ImagesPlaced
	st.ImagesFailed = res.ImagesFailed
	st.FilePath = path
	r.save(ctx, st)
	log.Infow("Report job completed", "pages", res.Pages, "images_placed", res.ImagesPlaced, "images_failed", res.ImagesFailed)
}

func (r *Runner) save(ctx context.Context, st JobStatus) {
	if err := r.jobs.Save(ctx, st); err != nil {
		r.logger.Warnw("Failed to persist report job status", "job_id", st.JobID, "error", err)
	}
}

// Cleanup drops expired job records and report files older than maxAge
func (r *Runner) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	if _, err := r.jobs.Purge(ctx); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cutoff := r.now().Add(-maxAge)
	removed := 0
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".pdf") {
			continue
		}
		info, err := de.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, de.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
