package supervisor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/13rac1/claudepod/docker"
	"github.com/13rac1/claudepod/internal/store"
)

// ageSessionRecord rewrites a session record so it appears idle for d.
func ageSessionRecord(t *testing.T, h *testHarness, key string, d time.Duration) {
	t.Helper()

	path := filepath.Join(h.sessionsDir, key, "session.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session record: %v", err)
	}
	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		t.Fatalf("parse session record: %v", err)
	}
	session.LastActivity = time.Now().UTC().Add(-d)
	aged, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		t.Fatalf("marshal session record: %v", err)
	}
	if err := os.WriteFile(path, aged, 0o644); err != nil {
		t.Fatalf("write session record: %v", err)
	}
}

func TestReconcileFinishesStoppedJob(t *testing.T) {
	h := newHarness(t, nil)
	job := seedRunningJob(t, h, "abc")

	finished := time.Now().UTC().Add(-10 * time.Minute).Truncate(time.Second)
	h.runtime.listed = []docker.ContainerInfo{
		{Name: "claude-abc", Running: false},
	}
	h.runtime.statuses["claude-abc"] = &docker.ContainerStatus{
		Running:    false,
		ExitCode:   0,
		FinishedAt: finished,
	}
	h.runtime.logs["claude-abc"] = []byte(
		`{"event":{"type":"content_block_delta","delta":{"text":"recovered"}}}` + "\n")

	h.supervisor.Reconcile(context.Background())

	healed, err := h.store.GetJob("abc", job.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if healed.Status != store.JobStatusCompleted {
		t.Fatalf("expected completed, got %q", healed.Status)
	}
	if healed.ExitCode == nil || *healed.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %v", healed.ExitCode)
	}
	if !healed.CompletedAt.Equal(finished) {
		t.Fatalf("expected completedAt %s, got %s", finished, healed.CompletedAt)
	}

	chunk, _ := h.store.ReadJobOutput("abc", job.JobID, 0, 0)
	if string(chunk.Content) != "recovered" {
		t.Fatalf("expected drained logs, got %q", chunk.Content)
	}

	session, _ := h.store.GetSession("abc")
	if session.ActiveJobID != "" {
		t.Fatalf("expected cleared pointer, got %q", session.ActiveJobID)
	}

	if killed := h.runtime.killedNames(); len(killed) != 1 || killed[0] != "claude-abc" {
		t.Fatalf("expected container removal, got %v", killed)
	}

	if len(h.notifier.delivered()) != 0 {
		t.Fatal("reconciliation must not emit notifications")
	}
}

func TestReconcileLeavesRunningJob(t *testing.T) {
	h := newHarness(t, nil)
	job := seedRunningJob(t, h, "abc")

	h.runtime.listed = []docker.ContainerInfo{
		{Name: "claude-abc", Running: true},
	}

	h.supervisor.Reconcile(context.Background())

	current, _ := h.store.GetJob("abc", job.JobID)
	if current.Status != store.JobStatusRunning {
		t.Fatalf("expected running job untouched, got %q", current.Status)
	}
	if len(h.runtime.killedNames()) != 0 {
		t.Fatalf("expected no removals, got %v", h.runtime.killedNames())
	}
}

func TestReconcileRemovesStaleContainers(t *testing.T) {
	h := newHarness(t, nil)
	// A container for a session with no record at all, and one for a
	// session whose active pointer is empty.
	if _, err := h.store.CreateSession("idle"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	h.runtime.listed = []docker.ContainerInfo{
		{Name: "claude-ghost", Running: true},
		{Name: "claude-idle", Running: false},
		{Name: "unrelated-container", Running: true},
	}

	h.supervisor.Reconcile(context.Background())

	killed := h.runtime.killedNames()
	if len(killed) != 2 {
		t.Fatalf("expected two removals, got %v", killed)
	}
	for _, name := range killed {
		if name != "claude-ghost" && name != "claude-idle" {
			t.Fatalf("unexpected removal %q", name)
		}
	}
}

func TestReconcileSurvivesEmptyRuntime(t *testing.T) {
	h := newHarness(t, nil)
	h.supervisor.Reconcile(context.Background())
}

func TestCleanupPreservesWorkspacesByDefault(t *testing.T) {
	h := newHarness(t, nil)

	if _, err := h.store.CreateSession("old"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	ws, err := h.store.EnsureWorkspace("old")
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	// Make the session idle beyond the one-hour harness timeout.
	ageSessionRecord(t, h, "old", 2*time.Hour)

	result, err := h.supervisor.Cleanup(context.Background(), false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "old" {
		t.Fatalf("expected [old], got %v", result.Removed)
	}
	if _, err := os.Stat(ws); err != nil {
		t.Fatalf("workspace must survive cleanup: %v", err)
	}

	// Opt-in deletion removes it.
	if _, err := h.store.CreateSession("old2"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	ws2, _ := h.store.EnsureWorkspace("old2")
	ageSessionRecord(t, h, "old2", 2*time.Hour)

	if _, err := h.supervisor.Cleanup(context.Background(), true); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(ws2); !os.IsNotExist(err) {
		t.Fatal("expected workspace deleted with opt-in")
	}
}

func TestJobsListingAndFilter(t *testing.T) {
	h := newHarness(t, nil)
	h.runtime.streams["claude-alpha"] = &fakeStream{exitCode: 0}

	first, err := h.supervisor.Start(context.Background(), "alpha", "one")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	h.supervisor.Wait()

	h.runtime.streams["claude-alpha"] = &fakeStream{exitCode: 1}
	second, err := h.supervisor.Start(context.Background(), "alpha", "two")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	h.supervisor.Wait()

	all, err := h.supervisor.Jobs(context.Background(), "alpha", "")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}

	failed, err := h.supervisor.Jobs(context.Background(), "alpha", store.JobStatusFailed)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if len(failed) != 1 || failed[0].JobID != second.JobID {
		t.Fatalf("expected only the failed job, got %+v", failed)
	}

	completed, err := h.supervisor.Jobs(context.Background(), "alpha", store.JobStatusCompleted)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if len(completed) != 1 || completed[0].JobID != first.JobID {
		t.Fatalf("expected only the completed job, got %+v", completed)
	}

	if _, err := h.supervisor.Jobs(context.Background(), "ghost", ""); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestSessionsSummaries(t *testing.T) {
	h := newHarness(t, nil)
	blocked := &fakeStream{exitCode: 0, block: make(chan struct{})}
	h.runtime.streams["claude-alpha"] = blocked

	started, err := h.supervisor.Start(context.Background(), "alpha", "hello")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	summaries, err := h.supervisor.Sessions(context.Background())
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one session, got %d", len(summaries))
	}
	summary := summaries[0]
	if summary.SessionKey != "alpha" || summary.MessageCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.ActiveJob == nil || summary.ActiveJob.JobID != started.JobID {
		t.Fatalf("expected active job summary, got %+v", summary.ActiveJob)
	}
	if summary.ActiveJob.Status != store.JobStatusRunning {
		t.Fatalf("expected running, got %q", summary.ActiveJob.Status)
	}

	blocked.release()
	h.supervisor.Wait()
}
