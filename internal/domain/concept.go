package domain

import (
	"fmt"
	"time"
)

// Idea is one raw app concept as returned by the language model
type Idea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImagePrompt string `json:"imagePrompt"`
}

// ThumbnailStatus tracks the asynchronous icon render of a concept
type ThumbnailStatus string

const (
	ThumbnailPending ThumbnailStatus = "pending"
	ThumbnailReady   ThumbnailStatus = "ready"
	ThumbnailFailed  ThumbnailStatus = "failed"
)

// Concept is one entry of the listing
type Concept struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Thumbnail       string          `json:"thumbnail"`
	ThumbnailStatus ThumbnailStatus `json:"thumbnailStatus"`
}

// Listing is the ordered batch of concepts shown in the store.
// Its length is fixed at creation; only thumbnail fields change afterwards.
type Listing struct {
	BatchID   string    `json:"batchId"`
	CreatedAt time.Time `json:"createdAt"`
	Concepts  []Concept `json:"concepts"`
}

// NewListing materializes placeholder concepts for a batch of ideas
func NewListing(batchID string, ideas []Idea, now time.Time) *Listing {
	concepts := make([]Concept, len(ideas))
	for i, idea := range ideas {
		concepts[i] = Concept{
			ID:              ConceptID(now, i),
			Name:            idea.Name,
			Description:     idea.Description,
			ThumbnailStatus: ThumbnailPending,
		}
	}
	return &Listing{
		BatchID:   batchID,
		CreatedAt: now,
		Concepts:  concepts,
	}
}

// ConceptID derives the opaque, time-based id of the i-th concept in a batch
func ConceptID(now time.Time, index int) string {
	return fmt.Sprintf("%d-%d", now.UnixMilli(), index)
}

// Clone returns a deep copy safe to hand out while the listing keeps mutating
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := *l
	out.Concepts = make([]Concept, len(l.Concepts))
	copy(out.Concepts, l.Concepts)
	return &out
}

// Pending reports how many thumbnails are still being rendered
func (l *Listing) Pending() int {
	n := 0
	for _, c := range l.Concepts {
		if c.ThumbnailStatus == ThumbnailPending {
			n++
		}
	}
	return n
}

// ThumbnailResult is the outcome of one thumbnail render in a fan-out
type ThumbnailResult struct {
	Index int
	URL   string
	Err   error
}

// OK reports whether the render produced an image
func (r ThumbnailResult) OK() bool {
	return r.Err == nil && r.URL != ""
}

// AppRef identifies the concept a detail view was opened for
type AppRef struct {
	ID          string `json:"id" validate:"required,max=128"`
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// AppDetail is the resolved live demo of a concept
type AppDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DemoURL     string `json:"demoUrl"`
	Cached      bool   `json:"cached"`
}

// AppMessage builds the instruction sent to the code-generation backend
func AppMessage(name, description string) string {
	return fmt.Sprintf("Create a %s app inspired by this prompt: %s. Make it functional and interactive.", name, description)
}
