package document

import (
	"context"
	"strconv"

	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
)

// PreviewState is the state of the preview session.
type PreviewState int

const (
	PreviewClosed PreviewState = iota
	PreviewOpen
)

func (s PreviewState) String() string {
	switch s {
	case PreviewOpen:
		return "open"
	default:
		return "closed"
	}
}

// PreviewSession tracks which file is shown in the preview and persists its
// scroll offset. It is not safe for concurrent use; Manager serialises
// access.
type PreviewSession struct {
	store   kvstore.Store
	active  *FileRecord
	visible bool
}

// NewPreviewSession creates a closed session persisting offsets into store
func NewPreviewSession(store kvstore.Store) *PreviewSession {
	return &PreviewSession{store: store}
}

// Open makes file the active preview and returns its restored offset. The
// caller applies the offset once the preview surface has been laid out.
func (p *PreviewSession) Open(ctx context.Context, file FileRecord) int {
	p.active = &file
	p.visible = true
	return RestoreOffset(ctx, p.store, file)
}

// Close hides the preview. The last active file is kept so a caller can
// still label the closing surface.
func (p *PreviewSession) Close() {
	p.visible = false
}

// Reset closes the session and forgets the active file.
func (p *PreviewSession) Reset() {
	p.visible = false
	p.active = nil
}

// State reports Open only when visible with an active file.
func (p *PreviewSession) State() PreviewState {
	if p.visible && p.active != nil {
		return PreviewOpen
	}
	return PreviewClosed
}

// Active returns the file being previewed while the session is open.
func (p *PreviewSession) Active() (FileRecord, bool) {
	if p.State() != PreviewOpen {
		return FileRecord{}, false
	}
	return *p.active, true
}

// IsActive reports whether the open session is showing the file at path.
func (p *PreviewSession) IsActive(path string) bool {
	f, ok := p.Active()
	return ok && f.Path == path
}

// Update swaps the active record for file when they share a path, so an
// open preview shows refreshed content. The scroll offset is untouched.
func (p *PreviewSession) Update(file FileRecord) bool {
	if p.active == nil || p.active.Path != file.Path {
		return false
	}
	p.active = &file
	return true
}

// OnScroll persists offset for the active file immediately. It does nothing
// while the session is closed. Negative offsets are stored as 0.
func (p *PreviewSession) OnScroll(ctx context.Context, offset int) (string, error) {
	f, ok := p.Active()
	if !ok {
		return "", nil
	}
	if offset < 0 {
		offset = 0
	}
	key := ScrollKey(f.Path)
	return key, p.store.Set(ctx, key, strconv.Itoa(offset))
}
