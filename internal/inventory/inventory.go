package inventory

import (
	"time"

	inventoryDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/inventory"
)

const (
	DefaultImage     = "/images/vehicles/no-image.png"
	DefaultThumbnail = "/images/vehicles/no-image-tn.png"
)

type Classification struct {
	ID   int64  `json:"classification_id"`
	Name string `json:"classification_name"`
}

// Vehicle is one inventory item. ClassificationName is filled on reads that join it.
type Vehicle struct {
	ID                 int64     `json:"inv_id"`
	Make               string    `json:"inv_make"`
	Model              string    `json:"inv_model"`
	Year               int       `json:"inv_year"`
	Description        string    `json:"inv_description"`
	Image              string    `json:"inv_image"`
	Thumbnail          string    `json:"inv_thumbnail"`
	Price              float64   `json:"inv_price"`
	Miles              int64     `json:"inv_miles"`
	Color              string    `json:"inv_color"`
	ClassificationID   int64     `json:"classification_id"`
	ClassificationName string    `json:"classification_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func ClassificationFromDataModel(c *inventoryDatamodel.Classification) Classification {
	return Classification{ID: c.ID, Name: c.Name}
}

func ToDataModel(v *Vehicle) *inventoryDatamodel.Vehicle {
	return &inventoryDatamodel.Vehicle{
		ID:               v.ID,
		Make:             v.Make,
		Model:            v.Model,
		Year:             v.Year,
		Description:      v.Description,
		Image:            v.Image,
		Thumbnail:        v.Thumbnail,
		Price:            v.Price,
		Miles:            v.Miles,
		Color:            v.Color,
		ClassificationID: v.ClassificationID,
	}
}

func FromDataModel(v *inventoryDatamodel.Vehicle) Vehicle {
	return Vehicle{
		ID:                 v.ID,
		Make:               v.Make,
		Model:              v.Model,
		Year:               v.Year,
		Description:        v.Description,
		Image:              v.Image,
		Thumbnail:          v.Thumbnail,
		Price:              v.Price,
		Miles:              v.Miles,
		Color:              v.Color,
		ClassificationID:   v.ClassificationID,
		ClassificationName: v.Classification.Name,
		CreatedAt:          v.CreatedAt,
	}
}
