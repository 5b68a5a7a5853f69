package routers

import (
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.Use(middlewares.Authenticate)
	router.Use(middlewares.Authorize)

	router.Post("/", appointmentController.Create)
	router.Get("/", appointmentController.FindAll)
	router.Get("/schedule", appointmentController.Schedule)
	router.Get("/stats", appointmentController.Stats)
	router.Get("/history", appointmentController.History)
	router.Put("/{id}/status", appointmentController.UpdateStatus)
	router.Post("/{id}/reschedule", appointmentController.RequestReschedule)
	router.Post("/{id}/rating", appointmentController.AddRating)
}
