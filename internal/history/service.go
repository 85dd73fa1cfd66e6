package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/notify"
)

// ErrInvalidItem is returned when an item to create is missing required fields.
var ErrInvalidItem = errors.New("invalid history item")

// Service persists searches through a Repository. Failures are logged and
// reported to the request's notification tray.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create stores item and returns its generated id. Any id on item is ignored.
// A zero timestamp is filled with the current time.
func (s *Service) Create(ctx context.Context, item Item) (string, error) {
	item.Location = strings.TrimSpace(item.Location)
	if item.Location == "" {
		return "", fmt.Errorf("%w: location is required", ErrInvalidItem)
	}
	item.ID = ""
	if item.Timestamp.IsZero() {
		item.Timestamp = s.now().UTC()
	}

	id, err := s.repo.Insert(ctx, item)
	if err != nil {
		s.logger.Error("saving search history failed", zap.String("location", item.Location), zap.Error(err))
		notify.Error(ctx, "Failed to save search to history")
		return "", err
	}

	s.logger.Debug("search saved", zap.String("id", id), zap.String("location", item.Location))
	return id, nil
}

// List returns the items for ownerID (all items when empty), newest first.
// A failure yields an empty list.
func (s *Service) List(ctx context.Context, ownerID string) ([]Item, error) {
	items, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("loading search history failed", zap.Error(err))
		notify.Error(ctx, "Failed to load search history")
		return []Item{}, err
	}
	if items == nil {
		items = []Item{}
	}
	SortNewestFirst(items)
	return items, nil
}

// Update applies patch to the item with id. An empty patch changes nothing
// but still reports an unknown id.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	if err := s.repo.Update(ctx, id, patch); err != nil {
		s.logger.Error("updating history item failed", zap.String("id", id), zap.Error(err))
		if errors.Is(err, ErrNotFound) {
			notify.Error(ctx, "History item not found")
		} else {
			notify.Error(ctx, "Failed to update history item")
		}
		return err
	}
	if !patch.Empty() {
		notify.Success(ctx, "History item updated")
	}
	return nil
}

// Delete removes the item with id. Removing an id that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("deleting history item failed", zap.String("id", id), zap.Error(err))
		notify.Error(ctx, "Failed to delete history item")
		return err
	}
	notify.Success(ctx, "Search removed from history")
	return nil
}

// Prune removes items older than maxAge and returns how many were deleted.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge)
	n, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		s.logger.Info("pruned search history", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// SortNewestFirst orders items by timestamp, most recent first.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}
