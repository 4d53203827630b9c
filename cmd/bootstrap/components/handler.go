package components

import (
	"condo-booking/internal/handler"
	"condo-booking/internal/handler/api"
	"condo-booking/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewAreaHandler,
		api.NewInterestHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
