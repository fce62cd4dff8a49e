package internal

import (
	"net/http"
	"soulhealing/internal/controllers"
	"soulhealing/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, backupController *controllers.BackupController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/calendar", http.HandlerFunc(apiController.ListCalendarEntries))
	routers.Post("/api/calendar", http.HandlerFunc(apiController.AddCalendarEntry))
	routers.Post("/api/calendar/mark", http.HandlerFunc(apiController.MarkPractice))
	routers.Get("/api/calendar/day/{date}", http.HandlerFunc(apiController.EntryForDate))
	routers.Delete("/api/calendar/{id}", http.HandlerFunc(apiController.DeleteCalendarEntry))

	routers.Get("/api/notes", http.HandlerFunc(apiController.ListNotes))
	routers.Post("/api/notes", http.HandlerFunc(apiController.AddNote))
	routers.Delete("/api/notes/{id}", http.HandlerFunc(apiController.DeleteNote))

	routers.Get("/api/people", http.HandlerFunc(apiController.ListPeople))
	routers.Post("/api/people", http.HandlerFunc(apiController.AddPerson))
	routers.Patch("/api/people/{id}", http.HandlerFunc(apiController.UpdatePersonForgiveness))
	routers.Delete("/api/people/{id}", http.HandlerFunc(apiController.DeletePerson))

	routers.Get("/api/backup", http.HandlerFunc(backupController.Export))
	routers.Post("/api/backup", http.HandlerFunc(backupController.Save))
	routers.Post("/api/backup/import", http.HandlerFunc(backupController.Import))
	return routers
}
