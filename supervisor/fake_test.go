package supervisor

import (
	"context"
	"sync"

	"github.com/13rac1/claudepod/docker"
	"github.com/13rac1/claudepod/notify"
)

// fakeStream scripts one container's log stream.
type fakeStream struct {
	chunks   [][]byte
	exitCode int
	err      error
	// block, when non-nil, holds the stream open until released. Kill
	// releases it, which is how a killed container ends its log stream.
	block     chan struct{}
	blockOnce sync.Once
}

func (f *fakeStream) release() {
	if f.block != nil {
		f.blockOnce.Do(func() { close(f.block) })
	}
}

// fakeRuntime is a scripted Runtime for tests.
type fakeRuntime struct {
	mu sync.Mutex

	imageOK  bool
	startErr error

	streams  map[string]*fakeStream
	statuses map[string]*docker.ContainerStatus
	stats    map[string]*docker.ContainerStats
	logs     map[string][]byte
	listed   []docker.ContainerInfo

	started []docker.StartOptions
	killed  []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		imageOK:  true,
		streams:  make(map[string]*fakeStream),
		statuses: make(map[string]*docker.ContainerStatus),
		stats:    make(map[string]*docker.ContainerStats),
		logs:     make(map[string][]byte),
	}
}

func (f *fakeRuntime) CheckImage(ctx context.Context, image string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imageOK
}

func (f *fakeRuntime) StartDetached(ctx context.Context, opts docker.StartOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, opts)
	return "cid-" + opts.Name, nil
}

func (f *fakeRuntime) StreamLogs(ctx context.Context, name string, onChunk func([]byte)) (int, error) {
	f.mu.Lock()
	script := f.streams[name]
	f.mu.Unlock()
	if script == nil {
		return -1, nil
	}

	for _, chunk := range script.chunks {
		onChunk(chunk)
	}
	if script.block != nil {
		<-script.block
	}
	return script.exitCode, script.err
}

func (f *fakeRuntime) GetLogs(ctx context.Context, name string, opts docker.LogsOptions) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs[name], nil
}

func (f *fakeRuntime) GetStatus(ctx context.Context, name string) (*docker.ContainerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[name], nil
}

func (f *fakeRuntime) GetStats(ctx context.Context, name string) (*docker.ContainerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats[name], nil
}

func (f *fakeRuntime) ListByPrefix(ctx context.Context, prefix string) ([]docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed, nil
}

func (f *fakeRuntime) Kill(ctx context.Context, name string) {
	f.mu.Lock()
	f.killed = append(f.killed, name)
	script := f.streams[name]
	f.mu.Unlock()
	if script != nil {
		script.release()
	}
}

func (f *fakeRuntime) killedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.killed...)
}

func (f *fakeRuntime) startedOptions() []docker.StartOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]docker.StartOptions(nil), f.started...)
}

// fakeNotifier records delivered events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) Notify(ctx context.Context, event notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) delivered() []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Event(nil), f.events...)
}
