package constvars

const (
	MongoCollectionAppointments    = "appointments"
	MongoCollectionDoctorCalendars = "doctor_calendars"
	MongoCollectionPayments        = "payments"
	MongoCollectionNotifications   = "notifications"
	MongoCollectionUsers           = "users"
)
