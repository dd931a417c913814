package document

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/debounce"
	"github.com/entrepeneur4lyf/taskpad/internal/events"
	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
)

// Debounce streams. Each has at most one pending write.
const (
	contentStream = "content"
	filesStream   = "files"
)

// Notice is the payload of every event the Manager publishes.
type Notice struct {
	Key   string // store key, for store events
	Path  string // file path, for preview events
	Count int    // collection size, for files.changed
	Err   error  // for store.persist_failed
}

// Snapshot is the state handed to the export collaborator.
type Snapshot struct {
	Content string
	Files   Collection
}

// Manager owns the document content, the file collection and the preview
// session. Content and file changes are written to the store after a quiet
// period; scroll offsets are written immediately.
type Manager struct {
	ctx       context.Context
	store     kvstore.Store
	debouncer *debounce.Debouncer
	delay     time.Duration
	broker    *events.Broker[Notice]

	mu      sync.Mutex
	content string
	files   Collection
	preview *PreviewSession
	closed  bool
}

// Option configures a Manager
type Option func(*Manager)

// WithDelay sets the debounce quiet period
func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithClock sets the time source used for debouncing
func WithClock(c debounce.Clock) Option {
	return func(m *Manager) {
		m.debouncer = debounce.New(c)
	}
}

// WithBroker publishes state changes and persistence outcomes on b
func WithBroker(b *events.Broker[Notice]) Option {
	return func(m *Manager) {
		m.broker = b
	}
}

// New creates a Manager and hydrates it synchronously from store. Missing or
// malformed state hydrates to empty defaults. Store calls keep ctx's values
// but not its cancellation, so a Flush after shutdown still writes.
func New(ctx context.Context, store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		ctx:     context.WithoutCancel(ctx),
		store:   store,
		delay:   debounce.DefaultDelay,
		preview: NewPreviewSession(store),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.debouncer == nil {
		m.debouncer = debounce.New(nil)
	}

	m.content = HydrateContent(m.ctx, store)
	m.files = HydrateFiles(m.ctx, store)
	log.Debug("document state hydrated", "files", len(m.files), "content_bytes", len(m.content))
	return m
}

// Content returns the current document content.
func (m *Manager) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// SetContent replaces the document content and schedules it to be persisted.
func (m *Manager) SetContent(s string) {
	m.mu.Lock()
	if m.content == s {
		m.mu.Unlock()
		return
	}
	m.content = s
	m.scheduleLocked(contentStream, ContentKey, s)
	m.mu.Unlock()

	m.publish(events.ContentChanged, Notice{})
}

// Files returns a copy of the file collection in display order.
func (m *Manager) Files() Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files.clone()
}

// AddFiles merges batch into the collection, keeping the first record seen
// for each path. It returns how many records were actually added.
func (m *Manager) AddFiles(batch []FileRecord) int {
	m.mu.Lock()
	before := len(m.files)
	m.files = AddFiles(m.files, batch)
	added := len(m.files) - before
	count := len(m.files)
	if added > 0 {
		m.scheduleFilesLocked()
	}
	m.mu.Unlock()

	if added > 0 {
		m.publish(events.FilesChanged, Notice{Count: count})
	}
	return added
}

// RefreshFiles replaces attached records with newer reads of the same paths.
// Paths that are not attached are ignored. Only records whose content
// changed are returned and persisted.
func (m *Manager) RefreshFiles(batch []FileRecord) []Change {
	m.mu.Lock()
	files, changes := Refresh(m.files, batch)
	if len(changes) == 0 {
		m.mu.Unlock()
		return nil
	}
	m.files = files
	count := len(files)
	for _, c := range changes {
		m.preview.Update(c.New)
	}
	m.scheduleFilesLocked()
	m.mu.Unlock()

	m.publish(events.FilesChanged, Notice{Count: count})
	return changes
}

// DeleteFile removes the record at index. Removing the file that is being
// previewed closes the preview; closed reports whether that happened.
func (m *Manager) DeleteFile(index int) (removed FileRecord, closed bool, err error) {
	m.mu.Lock()
	files, removed, err := DeleteAt(m.files, index)
	if err != nil {
		m.mu.Unlock()
		return FileRecord{}, false, err
	}
	m.files = files
	count := len(files)
	closed = m.preview.IsActive(removed.Path)
	if closed {
		m.preview.Reset()
	}
	m.scheduleFilesLocked()
	m.mu.Unlock()

	m.publish(events.FilesChanged, Notice{Count: count})
	if closed {
		m.publish(events.PreviewClosed, Notice{Path: removed.Path})
	}
	return removed, closed, nil
}

// ClearFiles empties the collection and closes the preview.
func (m *Manager) ClearFiles() {
	m.mu.Lock()
	m.files = Clear()
	m.preview.Reset()
	m.scheduleFilesLocked()
	m.mu.Unlock()

	m.publish(events.FilesChanged, Notice{Count: 0})
	m.publish(events.PreviewClosed, Notice{})
}

// OpenPreview opens the file at index and returns it with its restored
// scroll offset.
func (m *Manager) OpenPreview(index int) (FileRecord, int, error) {
	m.mu.Lock()
	if index < 0 || index >= len(m.files) {
		n := len(m.files)
		m.mu.Unlock()
		return FileRecord{}, 0, fmt.Errorf("preview file %d of %d: %w", index, n, ErrIndexOutOfRange)
	}
	file := m.files[index]
	offset := m.preview.Open(m.ctx, file)
	m.mu.Unlock()

	m.publish(events.PreviewOpened, Notice{Path: file.Path})
	return file, offset, nil
}

// OpenPreviewFile opens file directly and returns its restored offset.
func (m *Manager) OpenPreviewFile(file FileRecord) int {
	m.mu.Lock()
	offset := m.preview.Open(m.ctx, file)
	m.mu.Unlock()

	m.publish(events.PreviewOpened, Notice{Path: file.Path})
	return offset
}

// ClosePreview hides the preview.
func (m *Manager) ClosePreview() {
	m.mu.Lock()
	wasOpen := m.preview.State() == PreviewOpen
	m.preview.Close()
	m.mu.Unlock()

	if wasOpen {
		m.publish(events.PreviewClosed, Notice{})
	}
}

// Preview returns the file being previewed, if the preview is open.
func (m *Manager) Preview() (FileRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preview.Active()
}

// PreviewState reports whether the preview is open.
func (m *Manager) PreviewState() PreviewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preview.State()
}

// Scroll records the preview's scroll offset for the active file. Each call
// is a separate store write; it is ignored while the preview is closed.
func (m *Manager) Scroll(offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	key, err := m.preview.OnScroll(m.ctx, offset)
	if key == "" {
		return
	}
	if err != nil {
		m.persistFailed(key, err)
	}
}

// Snapshot returns the current content and files.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Content: m.content, Files: m.files.clone()}
}

// Flush writes any pending content or file changes now.
func (m *Manager) Flush() {
	m.debouncer.Flush()
}

// Close tears the manager down. Pending writes are cancelled, not flushed;
// call Flush first to keep them. A write already in progress finishes before
// Close returns.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.debouncer.Stop()
}

// Pending reports whether content or file writes are waiting to be committed.
func (m *Manager) Pending() bool {
	return m.debouncer.Pending(contentStream) || m.debouncer.Pending(filesStream)
}

// scheduleFilesLocked serialises the collection now and schedules the write.
// Must be called with lock held
func (m *Manager) scheduleFilesLocked() {
	encoded, err := encodeFiles(m.files)
	if err != nil {
		m.persistFailed(FilesKey, err)
		return
	}
	m.scheduleLocked(filesStream, FilesKey, encoded)
}

// scheduleLocked captures value so a later change cannot leak into an
// earlier write. Must be called with lock held
func (m *Manager) scheduleLocked(stream, key, value string) {
	if m.closed {
		return
	}
	m.debouncer.Schedule(stream, func() { m.persist(key, value) }, m.delay)
}

func (m *Manager) persist(key, value string) {
	if err := m.store.Set(m.ctx, key, value); err != nil {
		m.persistFailed(key, err)
		return
	}
	log.Debug("state persisted", "key", key, "bytes", len(value))
	m.publish(events.StorePersisted, Notice{Key: key})
}

func (m *Manager) persistFailed(key string, err error) {
	log.Error("failed to persist state", "key", key, "err", err)
	m.publish(events.StorePersistFailed, Notice{Key: key, Err: err})
}

func (m *Manager) publish(t events.EventType, n Notice) {
	if m.broker != nil {
		m.broker.Publish(t, n)
	}
}
