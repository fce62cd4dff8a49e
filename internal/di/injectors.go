//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"soulhealing/internal"
	"soulhealing/internal/backup"
	"soulhealing/internal/controllers"
	"soulhealing/internal/providers"
	"soulhealing/internal/services"
	"soulhealing/internal/storage"
	"soulhealing/internal/structures"
)

var storageSet = wire.NewSet(
	providers.NewConfigProvider,
	provideLogger,
	providers.NewMetricsProvider,
	storage.NewStore,
)

var backupSet = wire.NewSet(
	backup.NewMedium,
	backup.NewService,
	wire.Bind(new(backup.ServiceInterface), new(*backup.Service)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		storageSet,
		backupSet,
		providers.NewInstrumentedListCache,

		services.NewPracticeService,
		wire.Bind(new(services.PracticeServiceInterface), new(*services.PracticeService)),
		backup.NewScheduler,
		controllers.NewApiController,
		controllers.NewBackupController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitBackupService(cfg *structures.CliFlags) (*backup.Service, func(), error) {

	wire.Build(
		storageSet,
		backupSet,
	)

	return nil, nil, nil
}
