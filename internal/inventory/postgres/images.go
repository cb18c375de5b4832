package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	doubledVehicleDir = "/vehicles/vehicles/"
	vehicleDir        = "/vehicles/"
)

type imagePaths struct {
	ID        int64  `db:"inv_id"`
	Image     string `db:"inv_image"`
	Thumbnail string `db:"inv_thumbnail"`
}

// ImagePathRepair is a maintenance job that runs straight SQL through sqlx.
type ImagePathRepair struct {
	db *sqlx.DB
}

func NewImagePathRepair(db *sqlx.DB) *ImagePathRepair {
	return &ImagePathRepair{db: db}
}

// NormalizeImagePaths collapses "/vehicles/vehicles/" into "/vehicles/" in both
// image columns and returns the number of rows it changed.
func (r *ImagePathRepair) NormalizeImagePaths(ctx context.Context) (int64, error) {
	var rows []imagePaths
	query := r.db.Rebind("SELECT inv_id, inv_image, inv_thumbnail FROM inventory WHERE inv_image LIKE ? OR inv_thumbnail LIKE ?")
	pattern := "%" + doubledVehicleDir + "%"
	if err := r.db.SelectContext(ctx, &rows, query, pattern, pattern); err != nil {
		return 0, fmt.Errorf("select image paths: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update := tx.Rebind("UPDATE inventory SET inv_image = ?, inv_thumbnail = ? WHERE inv_id = ?")
	var updated int64
	for _, row := range rows {
		image := strings.Replace(row.Image, doubledVehicleDir, vehicleDir, 1)
		thumbnail := strings.Replace(row.Thumbnail, doubledVehicleDir, vehicleDir, 1)
		if image == row.Image && thumbnail == row.Thumbnail {
			continue
		}
		if _, err := tx.ExecContext(ctx, update, image, thumbnail, row.ID); err != nil {
			return 0, fmt.Errorf("update inv_id %d: %w", row.ID, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}
