package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-management-server/internal/config"
	"hospital-management-server/internal/handlers"
	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/session"
	"hospital-management-server/internal/storage"
	"hospital-management-server/internal/store"
)

// SetupRoutes wires the session manager, domain facade and object store into
// the HTTP surface, one route group per dashboard.
func SetupRoutes(router *gin.Engine, db *gorm.DB, objects *storage.ObjectStore, cfg *config.Config, log zerolog.Logger) {
	provider := session.NewGormProvider(db)
	manager := session.NewManager(provider, provider, log)
	domain := store.New(db, log)

	authHandler := handlers.NewAuthHandler(manager, provider, cfg)
	profileHandler := handlers.NewProfileHandler(domain)
	patientHandler := handlers.NewPatientHandler(domain)
	appointmentHandler := handlers.NewAppointmentHandler(domain)
	labRequestHandler := handlers.NewLabRequestHandler(domain, objects)
	prescriptionHandler := handlers.NewPrescriptionHandler(domain, objects)
	recordHandler := handlers.NewRecordHandler(domain)
	fileHandler := handlers.NewFileHandler(objects)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.GET("/verify", authHandler.VerifyEmail)
		}
	}

	// Stored objects are public by URL, like a public storage bucket.
	router.GET("/files/:bucket/*key", fileHandler.Get)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, manager))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Doctor directory, used by the registration form's doctor picker
		private.GET("/profiles/doctors", profileHandler.Doctors)

		// Patient registration and record views
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleReceptionist), patientHandler.Register)
			patientRoutes.GET("", patientHandler.List)
			patientRoutes.GET("/:id", patientHandler.Get)

			patientRoutes.POST("/:id/medications", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RolePharmacist), recordHandler.AddMedication)
			patientRoutes.GET("/:id/medications", recordHandler.ListMedications)
			patientRoutes.POST("/:id/allergies", middleware.RoleAuthMiddleware(models.RoleDoctor), recordHandler.AddAllergy)
			patientRoutes.GET("/:id/allergies", recordHandler.ListAllergies)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleReceptionist), appointmentHandler.Create)
			appointmentRoutes.GET("", appointmentHandler.List) // Doctors see their own queue
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleReceptionist), appointmentHandler.UpdateStatus)
		}

		// Lab request routes
		labRoutes := private.Group("/lab-requests")
		{
			labRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), labRequestHandler.Create)
			labRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleLabTech), labRequestHandler.List)
			labRoutes.POST("/:id/report", middleware.RoleAuthMiddleware(models.RoleLabTech), labRequestHandler.UploadReport)
		}

		// Prescription routes
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.Create)
			prescriptionRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RolePharmacist), prescriptionHandler.List)
			prescriptionRoutes.POST("/:id/document", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.UploadDocument)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
