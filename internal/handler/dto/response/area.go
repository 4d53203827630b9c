package response

import (
	"time"

	"condo-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SlotAvailabilityResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Active    int    `json:"active"`
	Remaining *int   `json:"remaining,omitempty"`
	Available bool   `json:"available"`
}

type AvailabilityResponse struct {
	AreaID   uuid.UUID                  `json:"area_id"`
	Date     string                     `json:"date"`
	Bookable bool                       `json:"bookable"`
	Slots    []SlotAvailabilityResponse `json:"slots"`
}

type InterestResponse struct {
	ID         uuid.UUID  `json:"id"`
	AreaID     uuid.UUID  `json:"area_id"`
	Date       string     `json:"date"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

func FromAvailabilityView(v *queries.AvailabilityView) (*AvailabilityResponse, error) {
	res := AvailabilityResponse{Slots: []SlotAvailabilityResponse{}}
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromInterestView(v *queries.InterestView) (*InterestResponse, error) {
	var res InterestResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}
