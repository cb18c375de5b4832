package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/core/events"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

// Repository is the catalog store. Single-row lookups return
// internal.ErrClassificationNotFound or internal.ErrVehicleNotFound, and
// CreateClassification returns internal.ErrClassificationExists on a unique violation.
type Repository interface {
	ListClassifications(ctx context.Context) ([]Classification, error)
	GetClassification(ctx context.Context, id int64) (*Classification, error)
	ClassificationExists(ctx context.Context, name string) (bool, error)
	CreateClassification(ctx context.Context, c *Classification) error
	ListByClassification(ctx context.Context, name string) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*Vehicle, error)
	CreateVehicle(ctx context.Context, v *Vehicle) error
}

// ImagePathRepairer rewrites doubled vehicle image directories left by older imports.
type ImagePathRepairer interface {
	NormalizeImagePaths(ctx context.Context) (int64, error)
}

var errInvalidClassification = internal.NewValidationFieldError(FieldClassificationID, "Please choose a valid classification.", internal.ErrCodeClassificationNotFound)

type Service struct {
	repo   Repository
	images ImagePathRepairer
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, images ImagePathRepairer, publisher events.Publisher, lg *slog.Logger) *Service {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Service{
		repo:   repo,
		images: images,
		events: publisher,
		logger: lg,
	}
}

// ListClassifications is ordered by name.
func (s *Service) ListClassifications(ctx context.Context) ([]Classification, error) {
	return s.repo.ListClassifications(ctx)
}

// ListByClassification returns an empty slice when nothing matches.
func (s *Service) ListByClassification(ctx context.Context, name string) ([]Vehicle, error) {
	vehicles, err := s.repo.ListByClassification(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list vehicles for %q: %w", name, err)
	}
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	return vehicles, nil
}

func (s *Service) GetDetail(ctx context.Context, id int64) (*Vehicle, error) {
	if id <= 0 {
		return nil, internal.ErrVehicleNotFound
	}
	return s.repo.GetVehicle(ctx, id)
}

func (s *Service) AddClassification(ctx context.Context, addedBy int64, dto AddClassificationDTO) (*Classification, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ClassificationExists(ctx, dto.Name)
	if err != nil {
		return nil, fmt.Errorf("check classification: %w", err)
	}
	if exists {
		return nil, internal.ErrClassificationExists
	}

	c := &Classification{Name: dto.Name}
	if err := s.repo.CreateClassification(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("classification added", "classification_id", c.ID, "name", c.Name, "added_by", addedBy)
	s.publish(ctx, events.NewClassificationAddedEvent(c.ID, c.Name, addedBy))
	return c, nil
}

func (s *Service) AddVehicle(ctx context.Context, addedBy int64, dto AddVehicleDTO) (*Vehicle, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetClassification(ctx, dto.ClassificationID)
	if err != nil {
		if errors.Is(err, internal.ErrClassificationNotFound) {
			return nil, errInvalidClassification
		}
		return nil, fmt.Errorf("find classification: %w", err)
	}

	v := &Vehicle{
		Make:               dto.Make,
		Model:              dto.Model,
		Year:               int(dto.Year),
		Description:        dto.Description,
		Image:              dto.Image,
		Thumbnail:          dto.Thumbnail,
		Price:              dto.Price,
		Miles:              dto.Miles,
		Color:              dto.Color,
		ClassificationID:   c.ID,
		ClassificationName: c.Name,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle added", "inv_id", v.ID, "classification", c.Name, "added_by", addedBy)
	s.publish(ctx, events.NewVehicleAddedEvent(v.ID, c.ID, v.Make, v.Model, addedBy))
	return v, nil
}

// NormalizeImagePaths returns how many rows were rewritten.
func (s *Service) NormalizeImagePaths(ctx context.Context) (int64, error) {
	if s.images == nil {
		return 0, errors.New("image path repair is not configured")
	}
	n, err := s.images.NormalizeImagePaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("normalize image paths: %w", err)
	}
	s.logger.Info("image paths normalized", "updated", n)
	return n, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
