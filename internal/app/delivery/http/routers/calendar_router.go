package routers

import (
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachCalendarRoutes(router chi.Router, middlewares *middlewares.Middlewares, calendarController *controllers.CalendarController) {
	router.Get("/available-slots/{doctorId}/{date}", calendarController.GetAvailableSlots)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate)
		r.Use(middlewares.Authorize)

		r.Get("/", calendarController.GetCalendar)
		r.Post("/working-hours", calendarController.SetWorkingHours)
		r.Put("/date/{date}", calendarController.UpdateDateSchedule)
		r.Post("/block-slot", calendarController.BlockTimeSlot)
		r.Delete("/block-slot/{date}/{slotId}", calendarController.UnblockTimeSlot)
	})
}
