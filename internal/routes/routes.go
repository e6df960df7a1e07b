package routes

import (
	"github.com/arian-h/TutorAppBack/internal/config"
	"github.com/arian-h/TutorAppBack/internal/handlers"
	"github.com/arian-h/TutorAppBack/internal/middleware"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/arian-h/TutorAppBack/internal/services"
	notifyws "github.com/arian-h/TutorAppBack/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	studentProfileRepo := repository.NewStudentProfileRepository(db)
	tutorProfileRepo := repository.NewTutorProfileRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	appealRepo := repository.NewAppealRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	notificationHub := notifyws.NewHub()
	go notificationHub.Run()

	authHandler := handlers.NewAuthHandler(
		db,
		userRepo,
		studentProfileRepo,
		tutorProfileRepo,
		cfg.JWTSecret,
	)
	onboardingHandler := handlers.NewOnboardingHandler(studentProfileRepo, tutorProfileRepo)
	profileService := services.NewProfileService(studentProfileRepo, tutorProfileRepo)
	profileHandler := handlers.NewProfileHandler(profileService, studentProfileRepo, tutorProfileRepo, storageService)
	availabilityService := services.NewAvailabilityService(availabilityRepo, bookingRepo, tutorProfileRepo)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityRepo, availabilityService)
	recommendationService := services.NewRecommendationService(tutorProfileRepo)
	tutorDiscoveryHandler := handlers.NewTutorDiscoveryHandler(tutorProfileRepo, studentProfileRepo, recommendationService, availabilityService)
	bookingService := services.NewBookingService(db, bookingRepo, penaltyRepo, userRepo, tutorProfileRepo, notificationHub)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	var videoService *services.VideoService
	if cfg.VideoEnabled() {
		tokenBuilder := services.NewAgoraTokenBuilder(cfg.AgoraAppID, cfg.AgoraAppCertificate)
		videoService = services.NewVideoService(bookingRepo, tokenBuilder, cfg.AgoraAppID)
	}
	videoHandler := handlers.NewVideoHandler(videoService)
	reviewService := services.NewReviewService(db, reviewRepo, bookingRepo)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	appealService := services.NewAppealService(db, penaltyRepo, appealRepo)
	appealHandler := handlers.NewAppealHandler(appealService)
	dashboardHandler := handlers.NewDashboardHandler(bookingService, bookingRepo, penaltyRepo, tutorProfileRepo)
	adminHandler := handlers.NewAdminHandler(tutorProfileRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	if cfg.DocsEnabled() {
		registerDocsRoutes(api)
	}

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	students := authProtected.Group("/students")
	students.Post("/onboarding", onboardingHandler.StudentOnboarding)
	students.Get("/profile", profileHandler.GetStudentProfile)
	students.Put("/profile", profileHandler.UpdateStudentProfile)
	students.Post("/profile/avatar", profileHandler.UploadStudentAvatar)

	tutors := authProtected.Group("/tutors")
	tutors.Get("", tutorDiscoveryHandler.ListTutors)
	tutors.Post("/onboarding", onboardingHandler.TutorOnboarding)
	tutors.Get("/profile", profileHandler.GetTutorProfile)
	tutors.Put("/profile", profileHandler.UpdateTutorProfile)
	tutors.Post("/profile/avatar", profileHandler.UploadTutorAvatar)
	tutors.Get("/recommended", tutorDiscoveryHandler.GetRecommendedTutors)
	tutors.Get("/availability", availabilityHandler.ListRules)
	tutors.Post("/availability", availabilityHandler.CreateRule)
	tutors.Put("/availability/:id", availabilityHandler.UpdateRule)
	tutors.Delete("/availability/:id", availabilityHandler.DeleteRule)
	tutors.Get("/:id", tutorDiscoveryHandler.GetTutorDetail)

	availability := authProtected.Group("/availability")
	availability.Get("/slots", availabilityHandler.GetAvailableSlots)
	availability.Get("/dates", availabilityHandler.GetAvailableDates)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.BookLesson)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Put("/:id/status", bookingHandler.UpdateStatus)

	authProtected.Post("/video/token", videoHandler.IssueToken)

	reviews := authProtected.Group("/reviews")
	reviews.Post("", reviewHandler.CreateReview)
	reviews.Get("/tutor/:id", reviewHandler.ListTutorReviews)

	penalties := authProtected.Group("/penalties")
	penalties.Get("", appealHandler.ListPenalties)
	penalties.Post("/:id/appeal", appealHandler.FileAppeal)

	appeals := authProtected.Group("/appeals")
	appeals.Get("", appealHandler.ListOpenAppeals)
	appeals.Put("/:id/resolve", appealHandler.ResolveAppeal)

	authProtected.Get("/dashboard", dashboardHandler.GetDashboard)

	admin := authProtected.Group("/admin")
	admin.Put("/tutors/:id/approval", adminHandler.SetTutorApproval)

	api.Use("/v1/ws", notificationHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(notificationHandler.HandleWebSocket))
}
