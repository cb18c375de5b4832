package inventory

import "time"

type Classification struct {
	ID        int64     `gorm:"column:classification_id;primaryKey"`
	Name      string    `gorm:"column:classification_name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Classification) TableName() string {
	return "classification"
}

type Vehicle struct {
	ID               int64     `gorm:"column:inv_id;primaryKey"`
	Make             string    `gorm:"column:inv_make;not null"`
	Model            string    `gorm:"column:inv_model;not null"`
	Year             int       `gorm:"column:inv_year;not null"`
	Description      string    `gorm:"column:inv_description;not null"`
	Image            string    `gorm:"column:inv_image;not null"`
	Thumbnail        string    `gorm:"column:inv_thumbnail;not null"`
	Price            float64   `gorm:"column:inv_price;not null"`
	Miles            int64     `gorm:"column:inv_miles;not null"`
	Color            string    `gorm:"column:inv_color;not null"`
	ClassificationID int64     `gorm:"column:classification_id;not null;index"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`

	Classification Classification `gorm:"foreignKey:ClassificationID;references:ID"`
}

func (Vehicle) TableName() string {
	return "inventory"
}
