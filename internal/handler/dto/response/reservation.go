package response

import (
	"time"

	"condo-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	Protocol      string    `json:"protocol"`
	AreaID        uuid.UUID `json:"area_id"`
	AreaName      string    `json:"area_name,omitempty"`
	UnitID        uuid.UUID `json:"unit_id"`
	ResidentID    uuid.UUID `json:"resident_id"`
	Date          string    `json:"date"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	Status        string    `json:"status"`
	Guests        int       `json:"guests"`
	TermsAccepted bool      `json:"terms_accepted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ReservationListResponse struct {
	Items      []*ReservationResponse `json:"items"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

type TimelineEventResponse struct {
	ID         uuid.UUID  `json:"id"`
	Action     string     `json:"action"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	Note       *string    `json:"note,omitempty"`
}

func FromReservationView(v *queries.ReservationView) (*ReservationResponse, error) {
	var res ReservationResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromReservationList(views []*queries.ReservationView, next *queries.Cursor) (*ReservationListResponse, error) {
	items := make([]*ReservationResponse, 0, len(views))
	if err := copier.Copy(&items, &views); err != nil {
		return nil, err
	}
	res := &ReservationListResponse{Items: items}
	if next != nil && next.After != "" {
		res.NextCursor = &next.After
	}
	return res, nil
}

func FromTimeline(events []queries.TimelineEventView) ([]TimelineEventResponse, error) {
	res := make([]TimelineEventResponse, 0, len(events))
	if err := copier.Copy(&res, &events); err != nil {
		return nil, err
	}
	return res, nil
}
