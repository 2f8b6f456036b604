package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/crestline-bio/wfreport/internal/batch"
	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/report"
)

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	running := fs.Bool("running", false, "show jobs in the 'Running' state")
	aborted := fs.Bool("aborted", false, "show jobs in the 'Aborted' state")
	failed := fs.Bool("failed", false, "show jobs in the 'Failed' state")
	succeeded := fs.Bool("succeeded", false, "show jobs in the 'Succeeded' state")
	jobName := fs.String("job-name", "", "filter by job name label")
	jobGroup := fs.String("job-group", "", "filter by job group label")
	workflowID := fs.String("workflow-id", "", "filter by exact workflow id")
	workflowName := fs.String("workflow-name", "", "filter by exact workflow (pipeline) name")
	hours := fs.Int("submission-time", 24, "show only jobs submitted at most N hours ago (<= 0 disables)")
	batchAgo := fs.Int("batch-number-ago", -1, "show jobs from N submission batches ago (0 = most recent, -1 disables)")
	gapMins := fs.Int("batch-interval-mins", 5, "a gap of N minutes or more between submissions starts a new batch")
	detail := fs.Bool("detail", false, "also show the per-workflow detail view")
	gridStyle := fs.String("grid-style", string(report.StyleGrid), "table style: grid or plain")
	_ = fs.Parse(args)

	f := query.Filter{
		Statuses:     domain.StatusesFromFlags(*running, *aborted, *failed, *succeeded),
		JobName:      *jobName,
		JobGroup:     *jobGroup,
		WorkflowID:   *workflowID,
		WorkflowName: *workflowName,
		HoursAgo:     *hours,
		BatchGap:     time.Duration(*gapMins) * time.Minute,
	}
	if *batchAgo >= 0 {
		f.BatchAgo = batchAgo
	}

	pipeline, closer, err := setup()
	if err != nil {
		fatal("%v", err)
	}
	defer closer()

	ctx := context.Background()
	records, err := pipeline.Run(ctx, f)
	if err != nil {
		fatal("%v", err)
	}

	metadatas, err := pipeline.FetchMetadata(ctx, records)
	if err != nil {
		fatal("%v", err)
	}

	style := report.Style(*gridStyle)
	if err := report.RenderSummary(os.Stdout, report.Summarize(records, metadatas), style); err != nil {
		fatal("render summary: %v", err)
	}

	if *detail {
		fmt.Println()
		if err := report.RenderDetail(os.Stdout, report.Detail(records, nil), style); err != nil {
			fatal("render detail: %v", err)
		}
	}
}

func cmdBatches(args []string) {
	fs := flag.NewFlagSet("batches", flag.ExitOnError)
	jobName := fs.String("job-name", "", "filter by job name label")
	jobGroup := fs.String("job-group", "", "filter by job group label")
	hours := fs.Int("submission-time", 24, "consider only jobs submitted at most N hours ago (<= 0 disables)")
	gapMins := fs.Int("batch-interval-mins", 5, "a gap of N minutes or more between submissions starts a new batch")
	gridStyle := fs.String("grid-style", string(report.StyleGrid), "table style: grid or plain")
	_ = fs.Parse(args)

	pipeline, closer, err := setup()
	if err != nil {
		fatal("%v", err)
	}
	defer closer()

	records, err := pipeline.Run(context.Background(), query.Filter{
		JobName:  *jobName,
		JobGroup: *jobGroup,
		HoursAgo: *hours,
	})
	if err != nil {
		fatal("%v", err)
	}

	gap := time.Duration(*gapMins) * time.Minute
	infos := batch.Describe(batch.Assign(records, gap))
	if err := report.RenderBatches(os.Stdout, infos, report.Style(*gridStyle)); err != nil {
		fatal("render batches: %v", err)
	}
}
