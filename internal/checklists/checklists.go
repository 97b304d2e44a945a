// Package checklists stores reusable checklists, including ones created
// from the personalized templates in package rules.
package checklists

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Key = "adhd-checklists"

var (
	ErrEmptyTitle   = errors.New("checklists: title is required")
	ErrEmptyItem    = errors.New("checklists: item text is required")
	ErrItemNotFound = errors.New("checklists: item not found")
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Item is one line of a checklist.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Checklist is a titled list of items.
type Checklist struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Checklist) GetID() string      { return c.ID }
func (c *Checklist) Touch(t time.Time) { c.UpdatedAt = t }

// Progress is how far along a checklist is.
type Progress struct {
	Done    int     `json:"done"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"` // 0..100
}

// Progress reports done over total items.
func (c Checklist) Progress() Progress {
	p := Progress{Total: len(c.Items)}
	for _, it := range c.Items {
		if it.Done {
			p.Done++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Done) * 100 / float64(p.Total)
	}
	return p
}

// Store owns the checklists.
type Store struct {
	lists *docstore.Collection[Checklist]
}

// NewStore loads checklists from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{lists: docstore.NewCollection[Checklist](kv, Key, log)}
}

// Create stores a new checklist with the given item texts. Blank texts
// are skipped.
func (s *Store) Create(title, category string, items []string) (Checklist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Checklist{}, ErrEmptyTitle
	}
	now := timeNow().UTC()
	c := Checklist{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  category,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, text := range items {
		if text = strings.TrimSpace(text); text != "" {
			c.Items = append(c.Items, Item{ID: uuid.NewString(), Text: text})
		}
	}
	return s.lists.Add(c), nil
}

// FromTemplate creates a checklist from a rules template.
func (s *Store) FromTemplate(t rules.Template) (Checklist, error) {
	return s.Create(t.Name, t.Category, t.Items)
}

// Get returns the checklist with id.
func (s *Store) Get(id string) (Checklist, bool) { return s.lists.Find(id) }

// List returns every checklist in insertion order.
func (s *Store) List() []Checklist { return s.lists.List() }

// Delete removes a checklist.
func (s *Store) Delete(id string) error {
	if err := s.lists.Delete(id); err != nil {
		return fmt.Errorf("checklists: delete %s: %w", id, err)
	}
	return nil
}

// Rename changes a checklist's title.
func (s *Store) Rename(id, title string) (Checklist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Checklist{}, ErrEmptyTitle
	}
	return s.update(id, func(c *Checklist) error {
		c.Title = title
		return nil
	})
}

// AddItem appends an item to the checklist.
func (s *Store) AddItem(id, text string) (Checklist, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Checklist{}, ErrEmptyItem
	}
	return s.update(id, func(c *Checklist) error {
		c.Items = append(append([]Item(nil), c.Items...), Item{ID: uuid.NewString(), Text: text})
		return nil
	})
}

// ToggleItem flips an item's done flag.
func (s *Store) ToggleItem(id, itemID string) (Checklist, error) {
	return s.update(id, func(c *Checklist) error {
		items := append([]Item(nil), c.Items...)
		for i := range items {
			if items[i].ID == itemID {
				items[i].Done = !items[i].Done
				c.Items = items
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// RemoveItem deletes an item.
func (s *Store) RemoveItem(id, itemID string) (Checklist, error) {
	return s.update(id, func(c *Checklist) error {
		items := make([]Item, 0, len(c.Items))
		for _, it := range c.Items {
			if it.ID != itemID {
				items = append(items, it)
			}
		}
		if len(items) == len(c.Items) {
			return ErrItemNotFound
		}
		c.Items = items
		return nil
	})
}

// ResetItems unchecks every item, for routines that run again.
func (s *Store) ResetItems(id string) (Checklist, error) {
	return s.update(id, func(c *Checklist) error {
		items := append([]Item(nil), c.Items...)
		for i := range items {
			items[i].Done = false
		}
		c.Items = items
		return nil
	})
}

// update runs fn under the collection's lock. When fn fails the
// checklist is left as it was.
func (s *Store) update(id string, fn func(*Checklist) error) (Checklist, error) {
	var fnErr error
	c, err := s.lists.Update(id, func(c *Checklist) {
		prev := *c
		if fnErr = fn(c); fnErr != nil {
			*c = prev
		}
	})
	if err != nil {
		return Checklist{}, fmt.Errorf("checklists: %s: %w", id, err)
	}
	if fnErr != nil {
		return Checklist{}, fnErr
	}
	return c, nil
}
