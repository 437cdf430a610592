package http

import (
	"net/http"

	"go-clinic-scheduler/internal/delivery/http/handler"
	"go-clinic-scheduler/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	scheduleHandler     *handler.ScheduleHandler
	availabilityHandler *handler.AvailabilityHandler
	doctorHandler       *handler.DoctorHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	scheduleHandler *handler.ScheduleHandler,
	availabilityHandler *handler.AvailabilityHandler,
	doctorHandler *handler.DoctorHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		scheduleHandler:     scheduleHandler,
		availabilityHandler: availabilityHandler,
		doctorHandler:       doctorHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Slot generation (admin)
	admin.HandleFunc("/schedules/generate", r.scheduleHandler.GenerateSlots).Methods(http.MethodPost)
	admin.HandleFunc("/schedules/generate/status", r.scheduleHandler.GetGenerationStatus).Methods(http.MethodGet)

	// Slot management (admin)
	admin.HandleFunc("/doctors/{doctorId}/slots", r.scheduleHandler.GetDoctorSlots).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{doctorId}/slots/{slotId}", r.scheduleHandler.DeleteSlot).Methods(http.MethodDelete)
	admin.HandleFunc("/slots/delete", r.scheduleHandler.DeleteSlots).Methods(http.MethodPost)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{doctorId}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{doctorId}/availability", r.doctorHandler.UpdateAvailability).Methods(http.MethodPut)

	// Audit logs (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Staff routes (admin or receptionist)
	staff := api.NewRoute().Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)

	staff.HandleFunc("/doctors/{doctorId}/available-slots", r.availabilityHandler.GetAvailableSlots).Methods(http.MethodGet)
	staff.HandleFunc("/available-doctors", r.availabilityHandler.GetAvailableDoctors).Methods(http.MethodGet)
	staff.HandleFunc("/consultations", r.availabilityHandler.BookConsultation).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
