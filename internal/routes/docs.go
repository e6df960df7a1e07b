package routes

import (
	"github.com/gofiber/fiber/v2"
)

type docsEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        string `json:"auth"`
}

// Development-only endpoint catalog. Gated behind config so it never ships on
// a production deployment.
var docsEndpoints = []docsEndpoint{
	{"GET", "/health", "Service liveness probe", "none"},
	{"POST", "/api/auth/register", "Register a student or tutor account", "none"},
	{"POST", "/api/auth/login", "Exchange credentials for a JWT", "none"},
	{"GET", "/api/auth/me", "Current user with role profile", "bearer"},
	{"POST", "/api/v1/students/onboarding", "Complete the student profile", "bearer (student)"},
	{"GET", "/api/v1/students/profile", "Fetch own student profile", "bearer (student)"},
	{"PUT", "/api/v1/students/profile", "Partially update own student profile", "bearer (student)"},
	{"POST", "/api/v1/students/profile/avatar", "Upload student avatar (multipart)", "bearer (student)"},
	{"GET", "/api/v1/tutors", "List approved tutors with filters and pagination", "bearer"},
	{"POST", "/api/v1/tutors/onboarding", "Complete the tutor profile", "bearer (tutor)"},
	{"GET", "/api/v1/tutors/profile", "Fetch own tutor profile", "bearer (tutor)"},
	{"PUT", "/api/v1/tutors/profile", "Partially update own tutor profile", "bearer (tutor)"},
	{"POST", "/api/v1/tutors/profile/avatar", "Upload tutor avatar (multipart)", "bearer (tutor)"},
	{"GET", "/api/v1/tutors/recommended", "Ranked tutor recommendations for the student", "bearer (student)"},
	{"GET", "/api/v1/tutors/availability", "List own weekly availability rules", "bearer (tutor)"},
	{"POST", "/api/v1/tutors/availability", "Create a weekly availability rule", "bearer (tutor)"},
	{"PUT", "/api/v1/tutors/availability/:id", "Update an owned availability rule", "bearer (tutor)"},
	{"DELETE", "/api/v1/tutors/availability/:id", "Delete an owned availability rule", "bearer (tutor)"},
	{"GET", "/api/v1/tutors/:id", "Tutor detail with next available slots", "bearer"},
	{"GET", "/api/v1/availability/slots", "Open slots for a tutor on one date", "bearer"},
	{"GET", "/api/v1/availability/dates", "Dates with open slots in a range (max 30 days)", "bearer"},
	{"POST", "/api/v1/bookings", "Request a lesson booking", "bearer (student)"},
	{"GET", "/api/v1/bookings", "List own bookings with status/timeframe filters", "bearer"},
	{"GET", "/api/v1/bookings/:id", "Booking detail with penalty, if any", "bearer"},
	{"PUT", "/api/v1/bookings/:id/status", "Confirm, cancel, complete, or refund a booking", "bearer"},
	{"POST", "/api/v1/video/token", "Issue an RTC token for a confirmed lesson", "bearer"},
	{"POST", "/api/v1/reviews", "Review a completed lesson", "bearer (student)"},
	{"GET", "/api/v1/reviews/tutor/:id", "Paginated reviews for a tutor", "bearer"},
	{"GET", "/api/v1/penalties", "List own penalties", "bearer (student)"},
	{"POST", "/api/v1/penalties/:id/appeal", "Appeal an active penalty", "bearer (student)"},
	{"GET", "/api/v1/appeals", "List open appeals", "bearer (admin)"},
	{"PUT", "/api/v1/appeals/:id/resolve", "Accept or reject an appeal", "bearer (admin)"},
	{"GET", "/api/v1/dashboard", "Role-shaped dashboard aggregates", "bearer"},
	{"PUT", "/api/v1/admin/tutors/:id/approval", "Set tutor approval status", "bearer (admin)"},
	{"GET", "/api/v1/ws", "WebSocket stream of booking events", "bearer (query token)"},
}

func registerDocsRoutes(api fiber.Router) {
	api.Get("/docs", func(c *fiber.Ctx) error {
		applyDocsHeaders(c)
		return c.JSON(fiber.Map{
			"service":   "TutorAppBack",
			"endpoints": docsEndpoints,
		})
	})
}

func applyDocsHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
