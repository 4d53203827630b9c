package bootstrap

import (
	"condo-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Base is everything a one-shot command needs to reach the database.
var Base = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	components.PersistenceModule,
)

var Module = fx.Options(
	Base,
	JWTModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
