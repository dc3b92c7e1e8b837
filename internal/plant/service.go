// AngelaMos | 2026
// service.go

package plant

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoFields = errors.New("no updatable plant fields")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Plant, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Create(
	ctx context.Context,
	userID int64,
	req CreatePlantRequest,
) (*Plant, error) {
	p := req.ToPlant(userID)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Update writes the fields present in req onto the caller's plant.
func (s *Service) Update(
	ctx context.Context,
	userID, id int64,
	req UpdatePlantRequest,
) (*Plant, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("update plant %d: %w", id, ErrNoFields)
	}

	return s.repo.Update(ctx, userID, id, req.Changes())
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) Reminders(ctx context.Context, userID int64) ([]Reminder, error) {
	plants, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return BuildReminders(plants, s.now()), nil
}
