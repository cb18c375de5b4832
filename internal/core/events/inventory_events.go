package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeClassificationAdded = "inventory.classification_added"
	EventTypeVehicleAdded        = "inventory.vehicle_added"
)

type ClassificationAddedEvent struct {
	BaseEvent
	ClassificationID int64  `json:"classification_id"`
	Name             string `json:"name"`
	AddedBy          int64  `json:"added_by"`
}

func NewClassificationAddedEvent(id int64, name string, addedBy int64) *ClassificationAddedEvent {
	return &ClassificationAddedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClassificationAdded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"classification_id": id,
				"name":              name,
				"added_by":          addedBy,
			},
		},
		ClassificationID: id,
		Name:             name,
		AddedBy:          addedBy,
	}
}

type VehicleAddedEvent struct {
	BaseEvent
	VehicleID        int64  `json:"vehicle_id"`
	ClassificationID int64  `json:"classification_id"`
	Make             string `json:"make"`
	Model            string `json:"model"`
	AddedBy          int64  `json:"added_by"`
}

func NewVehicleAddedEvent(vehicleID, classificationID int64, vehicleMake, vehicleModel string, addedBy int64) *VehicleAddedEvent {
	return &VehicleAddedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeVehicleAdded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"vehicle_id":        vehicleID,
				"classification_id": classificationID,
				"make":              vehicleMake,
				"model":             vehicleModel,
				"added_by":          addedBy,
			},
		},
		VehicleID:        vehicleID,
		ClassificationID: classificationID,
		Make:             vehicleMake,
		Model:            vehicleModel,
		AddedBy:          addedBy,
	}
}
