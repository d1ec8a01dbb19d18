// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// OutcomeStatus is the fate of one job in a batch.
type OutcomeStatus string

const (
	OutcomeConverted OutcomeStatus = "converted"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome reports what happened to one job.
type Outcome struct {
	Job    Job           `json:"job" yaml:"job"`
	Status OutcomeStatus `json:"status" yaml:"status"`

	// Output is the resolved output path (empty when normalization failed).
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Err is the failure, if any.
	Err error `json:"-" yaml:"-"`
}

// BatchOptions controls Batch.
type BatchOptions struct {
	// KeepOpen leaves the office application running after each job.
	KeepOpen bool

	// KeepGoing continues after a failed job instead of stopping.
	KeepGoing bool

	// SkipExisting skips jobs whose output exists and is not older than
	// the input.
	SkipExisting bool
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

// Total returns the number of jobs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch converts jobs in order. report, if non-nil, is called after each
// job. Without KeepGoing the first failure stops the batch and is returned;
// with KeepGoing failures are counted and the returned error is nil.
func (c *Converter) Batch(ctx context.Context, jobs []Job, opts BatchOptions, report func(Outcome)) (BatchResult, error) {
	var result BatchResult
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		o := c.runJob(ctx, job, opts)
		result.Outcomes = append(result.Outcomes, o)
		switch o.Status {
		case OutcomeConverted:
			result.Converted++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed++
		}
		if report != nil {
			report(o)
		}

		if o.Status == OutcomeFailed && !opts.KeepGoing {
			return result, o.Err
		}
	}

	c.log.Debug("batch finished",
		zap.Int("converted", result.Converted),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (c *Converter) runJob(ctx context.Context, job Job, opts BatchOptions) Outcome {
	o := Outcome{Job: job}

	if opts.SkipExisting {
		if out, ok := upToDate(job); ok {
			c.log.Info("skipped up-to-date output", zap.String("output", out))
			o.Status = OutcomeSkipped
			o.Output = out
			return o
		}
	}

	out, err := c.Convert(ctx, job.Input, job.Output, opts.KeepOpen)
	if err != nil {
		o.Status = OutcomeFailed
		o.Err = err
		return o
	}
	o.Status = OutcomeConverted
	o.Output = out
	return o
}

// upToDate reports whether the job's output exists and is at least as new
// as its input, returning the resolved output path.
func upToDate(job Job) (string, bool) {
	in, out, err := NormalizePaths(job.Input, job.Output)
	if err != nil {
		return "", false
	}
	inInfo, err := os.Stat(in)
	if err != nil {
		return "", false
	}
	outInfo, err := os.Stat(out)
	if err != nil || outInfo.IsDir() {
		return "", false
	}
	if outInfo.ModTime().Before(inInfo.ModTime()) {
		return "", false
	}
	return out, true
}
