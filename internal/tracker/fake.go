package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/draftctl/draftctl/internal/domain"
)

// Fake is an in-memory Client for tests and offline use. It assigns
// sequential comment IDs and can be toggled unavailable to exercise
// failure paths.
type Fake struct {
	mu          sync.Mutex
	nextID      int
	updates     int
	comments    map[string]string
	Unavailable bool
}

// NewFake creates an empty in-memory tracker.
func NewFake() *Fake {
	return &Fake{comments: make(map[string]string)}
}

func (f *Fake) CreateComment(ctx context.Context, changeID, body string) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return nil, fmt.Errorf("create comment for %s: %w", changeID, domain.ErrExternalUnavailable)
	}
	f.nextID++
	id := fmt.Sprintf("comment-%d", f.nextID)
	f.comments[id] = body
	return &Comment{
		ExternalID: id,
		URL:        fmt.Sprintf("https://tracker.invalid/%s/%s", changeID, id),
	}, nil
}

func (f *Fake) UpdateComment(ctx context.Context, externalID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return fmt.Errorf("update comment %s: %w", externalID, domain.ErrExternalUnavailable)
	}
	if _, ok := f.comments[externalID]; !ok {
		return fmt.Errorf("update comment %s: not found", externalID)
	}
	f.comments[externalID] = body
	f.updates++
	return nil
}

func (f *Fake) FetchComment(ctx context.Context, externalID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return "", fmt.Errorf("fetch comment %s: %w", externalID, domain.ErrExternalUnavailable)
	}
	body, ok := f.comments[externalID]
	if !ok {
		return "", fmt.Errorf("fetch comment %s: not found", externalID)
	}
	return body, nil
}

// CommentCount returns the number of comments ever created.
func (f *Fake) CommentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

// UpdateCount returns how many comment edits have been applied.
func (f *Fake) UpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

var _ Client = (*Fake)(nil)
