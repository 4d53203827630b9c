package components

import (
	"condo-booking/internal/infra/outbox"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		outbox.NewDispatcher,
	),
	fx.Invoke(outbox.Register),
)
