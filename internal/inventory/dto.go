package inventory

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/core/common/validation"
)

// Form field names shared by the templates and the handler.
const (
	FieldClassificationName = "classification_name"
	FieldClassificationID   = "classification_id"
	FieldMake               = "inv_make"
	FieldModel              = "inv_model"
	FieldYear               = "inv_year"
	FieldDescription        = "inv_description"
	FieldImage              = "inv_image"
	FieldThumbnail          = "inv_thumbnail"
	FieldPrice              = "inv_price"
	FieldMiles              = "inv_miles"
	FieldColor              = "inv_color"
)

var VehicleFields = []string{
	FieldClassificationID, FieldMake, FieldModel, FieldYear, FieldDescription,
	FieldImage, FieldThumbnail, FieldPrice, FieldMiles, FieldColor,
}

const minYear = 1900

var now = time.Now

type AddClassificationDTO struct {
	Name string `json:"classification_name"`
}

func (dto *AddClassificationDTO) Normalize() {
	dto.Name = strings.TrimSpace(dto.Name)
}

func (dto AddClassificationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field(FieldClassificationName, dto.Name).
		Required("Classification name is required.").
		MaxLength(100).
		Alphanumeric("No spaces or special characters.")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AddVehicleDTO struct {
	ClassificationID int64   `json:"classification_id"`
	Make             string  `json:"inv_make"`
	Model            string  `json:"inv_model"`
	Year             int64   `json:"inv_year"`
	Description      string  `json:"inv_description"`
	Image            string  `json:"inv_image"`
	Thumbnail        string  `json:"inv_thumbnail"`
	Price            float64 `json:"inv_price"`
	Miles            int64   `json:"inv_miles"`
	Color            string  `json:"inv_color"`
}

// VehicleFromForm converts posted strings. Values that do not parse become
// out-of-range numbers so Validate reports them against the right field.
func VehicleFromForm(form map[string]string) AddVehicleDTO {
	return AddVehicleDTO{
		ClassificationID: parseInt(form[FieldClassificationID], 0),
		Make:             form[FieldMake],
		Model:            form[FieldModel],
		Year:             parseInt(form[FieldYear], 0),
		Description:      form[FieldDescription],
		Image:            form[FieldImage],
		Thumbnail:        form[FieldThumbnail],
		Price:            parseFloat(form[FieldPrice], -1),
		Miles:            parseInt(strings.ReplaceAll(form[FieldMiles], ",", ""), -1),
		Color:            form[FieldColor],
	}
}

func (dto *AddVehicleDTO) Normalize() {
	dto.Make = strings.TrimSpace(dto.Make)
	dto.Model = strings.TrimSpace(dto.Model)
	dto.Description = strings.TrimSpace(dto.Description)
	dto.Image = strings.TrimSpace(dto.Image)
	dto.Thumbnail = strings.TrimSpace(dto.Thumbnail)
	dto.Color = strings.TrimSpace(dto.Color)
	if dto.Image == "" {
		dto.Image = DefaultImage
	}
	if dto.Thumbnail == "" {
		dto.Thumbnail = DefaultThumbnail
	}
}

func (dto AddVehicleDTO) Validate() error {
	maxYear := int64(now().Year() + 2)

	v := validation.NewValidator()
	v.Field(FieldClassificationID, dto.ClassificationID).Required("Please choose a classification.")
	v.Field(FieldMake, dto.Make).MinLength(3, "Make must be at least 3 characters.")
	v.Field(FieldModel, dto.Model).MinLength(3, "Model must be at least 3 characters.")
	v.Field(FieldYear, dto.Year).IntRange(minYear, maxYear, "Year must be between "+strconv.Itoa(minYear)+" and "+strconv.FormatInt(maxYear, 10)+".")
	v.Field(FieldDescription, dto.Description).MinLength(10, "Description must be at least 10 characters.")
	v.Field(FieldImage, dto.Image).MinLength(6, "Image path must be at least 6 characters.")
	v.Field(FieldThumbnail, dto.Thumbnail).MinLength(6, "Thumbnail path must be at least 6 characters.")
	v.Field(FieldPrice, dto.Price).MinFloat(0, "Price must be a number of at least 0.")
	v.Field(FieldMiles, dto.Miles).MinInt(0, "Miles must be a whole number of at least 0.")
	v.Field(FieldColor, dto.Color).MinLength(3, "Color must be at least 3 characters.")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func parseInt(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}
