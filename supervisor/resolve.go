package supervisor

import (
	"fmt"

	"github.com/13rac1/claudepod/internal/store"
)

// resolveJob locates a job by ID. When sessionKey is empty the sessions
// are scanned linearly; the set is small and bounded by active users.
func (s *Supervisor) resolveJob(jobID, sessionKey string) (*store.Job, error) {
	if sessionKey != "" {
		job, err := s.store.GetJob(sessionKey, jobID)
		if err != nil {
			return nil, err
		}
		if job == nil {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return job, nil
	}

	sessions, err := s.store.ListSessions()
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		job, err := s.store.GetJob(session.SessionKey, jobID)
		if err != nil {
			continue
		}
		if job != nil {
			return job, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}
