package commands

import (
	"context"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/usecase/shared"
)

func reservationData(res *reservation.Reservation, areaName string) map[string]any {
	return map[string]any{
		"reservation_id": res.ID().String(),
		"protocol":       res.Protocol().String(),
		"area":           areaName,
		"date":           schedule.FormatDate(res.Date()),
		"start":          res.Slot().Start.String(),
		"end":            res.Slot().End.String(),
	}
}

// enqueueNotify writes one notify job addressed to the reservation's resident,
// deduplicated per (template, reservation).
func enqueueNotify(ctx context.Context, tx shared.Tx, res *reservation.Reservation, areaName string, kind notification.TemplateKind, now time.Time) error {
	job, err := notification.NewNotifyJob(
		res.ResidentID(),
		kind,
		reservationData(res, areaName),
		string(kind)+":"+res.ID().String(),
		now,
	)
	if err != nil {
		return err
	}
	_, err = tx.Notifications().Enqueue(ctx, job)
	return err
}
