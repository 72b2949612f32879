package supervisor

import (
	"context"
	"fmt"
)

// Output reads a byte range of a job's output log.
func (s *Supervisor) Output(ctx context.Context, jobID, sessionKey string, offset, limit int64) (*OutputResult, error) {
	job, err := s.resolveJob(jobID, sessionKey)
	if err != nil {
		return nil, err
	}

	chunk, err := s.store.ReadJobOutput(job.SessionKey, job.JobID, offset, limit)
	if err != nil {
		return nil, err
	}

	return &OutputResult{
		JobID:   job.JobID,
		Status:  job.Status,
		Offset:  offset,
		Size:    chunk.Size,
		Total:   chunk.TotalSize,
		HasMore: chunk.HasMore,
		Content: chunk.Content,
	}, nil
}

// Header renders the single descriptive line that precedes the raw bytes.
func (r *OutputResult) Header() string {
	return fmt.Sprintf("job %s status=%s bytes %d-%d of %d more=%t",
		r.JobID, r.Status, r.Offset, r.Offset+r.Size, r.Total, r.HasMore)
}
