package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	historyKey   = "history"
	favoritesKey = "favorites"

	// MaxHistory is how many recently viewed locations are kept.
	MaxHistory = 20
)

// ErrMissingID is returned when a favorite has no provider id.
var ErrMissingID = errors.New("favorite requires a location id")

var validate = validator.New()

// HistoryEntry is a viewed location stamped with when it was viewed (unix ms).
type HistoryEntry struct {
	weather.Location
	At int64 `json:"at"`
}

// Favorite is a pinned location.
type Favorite = weather.Location

// Cache is the history and favorites of one session. All keys are resolved
// through Key, so switching sessions never exposes another user's entries.
//
// Operations are read-modify-write on a single key without locking; two
// concurrent writers on the same session can lose an update.
type Cache struct {
	kv      store.KV
	session string
	now     func() time.Time
}

// New binds a Cache to session. An empty session uses unnamespaced keys.
func New(kv store.KV, session string) *Cache {
	return &Cache{kv: kv, session: session, now: time.Now}
}

// Key namespaces base with the session, e.g. "history_alice".
func (c *Cache) Key(base string) string {
	if c.session == "" {
		return base
	}
	return base + "_" + c.session
}

// AddHistory records loc as the most recently viewed location. Older entries
// with the same name are dropped and only MaxHistory entries are kept.
func (c *Cache) AddHistory(ctx context.Context, loc weather.Location) error {
	entries, err := c.ReadHistory(ctx)
	if err != nil {
		return err
	}

	out := make([]HistoryEntry, 0, len(entries)+1)
	out = append(out, HistoryEntry{Location: loc, At: c.now().UnixMilli()})
	for _, e := range entries {
		if e.Name != loc.Name {
			out = append(out, e)
		}
	}
	if len(out) > MaxHistory {
		out = out[:MaxHistory]
	}
	return c.write(ctx, historyKey, out)
}

// ReadHistory returns the history, most recent first.
func (c *Cache) ReadHistory(ctx context.Context) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	if err := c.read(ctx, historyKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemoveHistoryItem drops every history entry called name.
func (c *Cache) RemoveHistoryItem(ctx context.Context, name string) error {
	entries, err := c.ReadHistory(ctx)
	if err != nil {
		return err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return c.write(ctx, historyKey, out)
}

// ClearHistory removes the whole history of the session.
func (c *Cache) ClearHistory(ctx context.Context) error {
	if err := c.kv.Remove(ctx, c.Key(historyKey)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// AddFavorite appends fav unless a favorite with the same id already exists.
func (c *Cache) AddFavorite(ctx context.Context, fav Favorite) error {
	if err := validate.Var(fav.ID, "required"); err != nil {
		return ErrMissingID
	}

	favs, err := c.ReadFavorites(ctx)
	if err != nil {
		return err
	}
	for _, f := range favs {
		if f.ID == fav.ID {
			return nil
		}
	}
	return c.write(ctx, favoritesKey, append(favs, fav))
}

// ReadFavorites returns the favorites in insertion order.
func (c *Cache) ReadFavorites(ctx context.Context) ([]Favorite, error) {
	favs := []Favorite{}
	if err := c.read(ctx, favoritesKey, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// RemoveFavorite drops the favorite with id.
func (c *Cache) RemoveFavorite(ctx context.Context, id int64) error {
	favs, err := c.ReadFavorites(ctx)
	if err != nil {
		return err
	}
	out := favs[:0]
	for _, f := range favs {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return c.write(ctx, favoritesKey, out)
}

func (c *Cache) read(ctx context.Context, base string, out any) error {
	key := c.Key(base)
	raw, err := c.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *Cache) write(ctx context.Context, base string, v any) error {
	key := c.Key(base)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
