package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/xmlreport/internal/extract"
)

// Worker runs queued conversions.
type Worker struct {
	converter *Converter
	log       *slog.Logger
}

func NewWorker(converter *Converter, log *slog.Logger) *Worker {
	return &Worker{converter: converter, log: log}
}

// Process converts the job's input and stores the rendered document on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	req := job.Request()
	phase := string(StatusQueued)
	req.OnPhase = func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	}

	var out bytes.Buffer
	res, err := w.converter.Convert(ctx, bytes.NewReader(job.Input()), job.Filename, req, &out)
	if err != nil {
		var inputErr *extract.InputError
		if errors.As(err, &inputErr) {
			log.Warn("conversion rejected", "phase", phase, "error", err)
		} else {
			log.Error("conversion failed", "phase", phase, "error", err)
		}
		job.Fail(phase, err)
		return
	}

	job.Complete(res, out.Bytes())
	log.Info("job completed", "pages", res.Pages, "bytes", res.Bytes)
}
