package postgres

import (
	"context"

	"github.com/frahmantamala/motors-dealership/internal"
	"github.com/frahmantamala/motors-dealership/internal/core/common/dberrors"
	inventoryDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/inventory"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	"gorm.io/gorm"
)

// InventoryRepository implements inventory.Repository using GORM
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListClassifications(ctx context.Context) ([]inventory.Classification, error) {
	var rows []inventoryDatamodel.Classification
	if err := r.db.WithContext(ctx).Order("classification_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Classification, 0, len(rows))
	for i := range rows {
		out = append(out, inventory.ClassificationFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *InventoryRepository) GetClassification(ctx context.Context, id int64) (*inventory.Classification, error) {
	var row inventoryDatamodel.Classification
	if err := r.db.WithContext(ctx).Where("classification_id = ?", id).First(&row).Error; err != nil {
		if dberrors.IsNotFound(err) {
			return nil, internal.ErrClassificationNotFound
		}
		return nil, err
	}
	c := inventory.ClassificationFromDataModel(&row)
	return &c, nil
}

func (r *InventoryRepository) ClassificationExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventoryDatamodel.Classification{}).
		Where("classification_name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *InventoryRepository) CreateClassification(ctx context.Context, c *inventory.Classification) error {
	row := &inventoryDatamodel.Classification{Name: c.Name}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return internal.ErrClassificationExists
		}
		return err
	}
	c.ID = row.ID
	return nil
}

// ListByClassification matches the classification by exact name.
func (r *InventoryRepository) ListByClassification(ctx context.Context, name string) ([]inventory.Vehicle, error) {
	var rows []inventoryDatamodel.Vehicle
	err := r.db.WithContext(ctx).
		Joins("JOIN classification ON classification.classification_id = inventory.classification_id").
		Where("classification.classification_name = ?", name).
		Preload("Classification").
		Order("inventory.inv_make, inventory.inv_model, inventory.inv_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]inventory.Vehicle, 0, len(rows))
	for i := range rows {
		out = append(out, inventory.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *InventoryRepository) GetVehicle(ctx context.Context, id int64) (*inventory.Vehicle, error) {
	var row inventoryDatamodel.Vehicle
	if err := r.db.WithContext(ctx).Preload("Classification").Where("inv_id = ?", id).First(&row).Error; err != nil {
		if dberrors.IsNotFound(err) {
			return nil, internal.ErrVehicleNotFound
		}
		return nil, err
	}
	v := inventory.FromDataModel(&row)
	return &v, nil
}

func (r *InventoryRepository) CreateVehicle(ctx context.Context, v *inventory.Vehicle) error {
	row := inventory.ToDataModel(v)
	if err := r.db.WithContext(ctx).Omit("Classification").Create(row).Error; err != nil {
		return err
	}
	v.ID = row.ID
	v.CreatedAt = row.CreatedAt
	return nil
}
