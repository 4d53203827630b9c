package components

import (
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/infra/notifier"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/metrics"
	"condo-booking/internal/usecase"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewCalendar,
	fx.Annotate(
		reservation.NewRandomProtocolGenerator,
		fx.As(new(reservation.ProtocolGenerator)),
	),
	metrics.New,
	notifier.New,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAdmissionCommands,
		commands.NewReservationStatusCommands,
		commands.NewWaitlistCommands,
		commands.NewOutboxCommands,
		commands.NewReminderCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewAvailabilityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewCalendar(c clock.Clock, cfg config.Config) (*clock.Calendar, error) {
	loc, err := cfg.Booking.Location()
	if err != nil {
		return nil, err
	}
	return clock.NewCalendar(c, loc), nil
}
