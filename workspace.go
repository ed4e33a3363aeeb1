package servus

import (
	"sync"

	"github.com/servuscms/servus/internal/records"
)

// Site identifies a hosted destination. Sites are owned by the remote
// service; the client holds a read-only cached copy per session.
type Site struct {
	Domain string `json:"domain"`
}

// File is a blob identified by content hash.
type File struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Workspace owns the client-visible collections: cached, possibly-stale
// projections of remote truth. All mutation goes through its typed methods;
// a mutex serialises them because subscription callbacks from different
// connections may land concurrently.
//
// Appends perform no de-duplication. Replacing a locally pending record with
// its persisted counterpart is explicit, keyed by event id or, for unsigned
// pending records, by object identity.
type Workspace struct {
	mu    sync.Mutex
	sites []Site
	posts []*records.Post
	notes []*records.Note
	files []File
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace { return &Workspace{} }

// Sites returns a copy of the cached site list.
func (w *Workspace) Sites() []Site {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Site, len(w.sites))
	copy(out, w.sites)
	return out
}

// SetSites replaces the cached site list.
func (w *Workspace) SetSites(sites []Site) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sites = append(w.sites[:0:0], sites...)
}

// AddSite appends one site to the cache.
func (w *Workspace) AddSite(s Site) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sites = append(w.sites, s)
}

// Posts returns the visible post collection. The returned slice is a copy;
// the pointed-to records are shared.
func (w *Workspace) Posts() []*records.Post {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*records.Post, len(w.posts))
	copy(out, w.posts)
	return out
}

// AppendPost appends p to the visible collection without de-duplication.
func (w *Workspace) AppendPost(p *records.Post) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posts = append(w.posts, p)
}

// RemovePost removes p by object identity, falling back to event id when p
// carries one. It reports whether a record was removed; removing a
// speculatively appended pending record on cancellation or failure restores
// the collection exactly.
func (w *Workspace) RemovePost(p *records.Post) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, got := range w.posts {
		if got == p || (p.EventID != "" && got.EventID == p.EventID) {
			w.posts = append(w.posts[:i], w.posts[i+1:]...)
			return true
		}
	}
	return false
}

// ReplacePost swaps old for new in place, keyed the same way as RemovePost.
// It is the explicit de-duplication hook for promoting a pending draft to
// its persisted counterpart.
func (w *Workspace) ReplacePost(old, new *records.Post) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, got := range w.posts {
		if got == old || (old.EventID != "" && got.EventID == old.EventID) {
			w.posts[i] = new
			return true
		}
	}
	return false
}

// Notes returns the visible note collection.
func (w *Workspace) Notes() []*records.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*records.Note, len(w.notes))
	copy(out, w.notes)
	return out
}

// AppendNote appends n to the visible collection without de-duplication.
func (w *Workspace) AppendNote(n *records.Note) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = append(w.notes, n)
}

// RemoveNote removes n by object identity or event id.
func (w *Workspace) RemoveNote(n *records.Note) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, got := range w.notes {
		if got == n || (n.EventID != "" && got.EventID == n.EventID) {
			w.notes = append(w.notes[:i], w.notes[i+1:]...)
			return true
		}
	}
	return false
}

// Files returns the cached blob listing.
func (w *Workspace) Files() []File {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]File, len(w.files))
	copy(out, w.files)
	return out
}

// SetFiles replaces the cached blob listing.
func (w *Workspace) SetFiles(files []File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files[:0:0], files...)
}

// AddFile appends one blob descriptor to the cache.
func (w *Workspace) AddFile(f File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files, f)
}

// RemoveFile removes the descriptor with the given hash.
func (w *Workspace) RemoveFile(sha256Hex string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, f := range w.files {
		if f.SHA256 == sha256Hex {
			w.files = append(w.files[:i], w.files[i+1:]...)
			return true
		}
	}
	return false
}
