package routes

import (
	"fmt"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ttthanh1411/gym/internal/config"
	"github.com/ttthanh1411/gym/internal/database"
	"github.com/ttthanh1411/gym/internal/handlers"
	"github.com/ttthanh1411/gym/internal/middleware"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
	"github.com/ttthanh1411/gym/internal/services"
	activityws "github.com/ttthanh1411/gym/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, hub *activityws.Hub) error {
	gormDB, err := database.OpenGorm(db, !cfg.IsProduction())
	if err != nil {
		return err
	}

	customerRepo := repository.NewCustomerRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	dashboardRepo := repository.NewDashboardRepository(gormDB)

	var storageService services.StorageService
	if cfg.StorageEnabled() {
		supabaseStorage, err := services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
		if err != nil {
			return err
		}
		storageService = supabaseStorage
	} else {
		log.Println("Supabase storage not configured, course image upload disabled")
	}

	var checkout services.CheckoutProvider
	if cfg.CheckoutEnabled() {
		checkout = services.NewStripeCheckoutProvider(cfg.StripeSecretKey, cfg.StripeCurrency)
	} else {
		log.Println("STRIPE_SECRET_KEY not set, checkout disabled and saved payments are not verified")
	}

	rules, err := services.LoadRecommendationRules(cfg.RecommendationRulesPath)
	if err != nil {
		return fmt.Errorf("load recommendation rules: %w", err)
	}

	authService := services.NewAuthService(customerRepo, hub, cfg.JWTSecret)
	customerService := services.NewCustomerService(customerRepo)
	catalogService := services.NewCatalogService(courseRepo, serviceRepo, customerRepo, scheduleRepo, storageService)
	scheduleService := services.NewScheduleService(scheduleRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, statusRepo, serviceRepo, hub)
	paymentService := services.NewPaymentService(paymentRepo, checkout, hub, cfg.CheckoutDefaultOrigin)
	recommendationService := services.NewRecommendationService(courseRepo, rules)

	authHandler := handlers.NewAuthHandler(authService, customerService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, statusRepo)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardRepo)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	activityHandler := handlers.NewActivityHandler(hub, cfg.JWTSecret)

	adminOnly := middleware.RequireRole(models.RoleName(models.RoleAdmin))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// The activity socket authenticates from the query string and must be
	// registered ahead of the bearer-token group.
	api.Use("/v1/ws", activityHandler.WebSocketAuth)
	api.Get("/v1/ws/activity", websocket.New(activityHandler.HandleWebSocket))

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	customers := v1.Group("/customers")
	customers.Get("", adminOnly, customerHandler.ListCustomers)
	customers.Get("/options", adminOnly, customerHandler.TrainerOptions)
	customers.Put("/me/body-metrics", customerHandler.UpdateBodyMetrics)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", adminOnly, customerHandler.DeleteCustomer)

	catalogServices := v1.Group("/services")
	catalogServices.Get("", catalogHandler.ListServices)
	catalogServices.Post("", adminOnly, catalogHandler.CreateService)

	v1.Get("/statuses", catalogHandler.ListStatuses)

	courses := v1.Group("/courses")
	courses.Get("", catalogHandler.ListCourses)
	courses.Get("/:id", catalogHandler.GetCourse)
	courses.Post("", adminOnly, catalogHandler.CreateCourse)
	courses.Put("/:id", adminOnly, catalogHandler.UpdateCourse)
	courses.Delete("/:id", adminOnly, catalogHandler.DeleteCourse)
	courses.Post("/:id/image", adminOnly, catalogHandler.UploadCourseImage)

	schedules := v1.Group("/schedules")
	schedules.Get("", scheduleHandler.ListSchedules)
	schedules.Post("", adminOnly, scheduleHandler.CreateSchedule)
	schedules.Put("/:id", adminOnly, scheduleHandler.UpdateSchedule)
	schedules.Delete("/:id", adminOnly, scheduleHandler.DeleteSchedule)

	appointments := v1.Group("/appointments")
	appointments.Get("", adminOnly, appointmentHandler.ListAppointments)
	appointments.Get("/my/:customerId", appointmentHandler.ListCustomerAppointments)
	appointments.Post("", appointmentHandler.CreateAppointment)
	appointments.Get("/:id", appointmentHandler.GetAppointment)
	appointments.Put("/:id/status", appointmentHandler.UpdateStatus)
	appointments.Delete("/:id", adminOnly, appointmentHandler.DeleteAppointment)

	payment := v1.Group("/payment")
	payment.Post("/create-checkout-session", paymentHandler.CreateCheckoutSession)
	payment.Post("/save", paymentHandler.SavePayment)
	payment.Get("/my-courses/:customerId", paymentHandler.GetMyCourses)
	payment.Get("/my-schedules/:customerId", paymentHandler.GetMySchedules)
	payment.Get("/history/:customerId", paymentHandler.GetPaymentHistory)

	dashboard := v1.Group("/dashboard")
	dashboard.Get("/overview", adminOnly, dashboardHandler.Overview)
	dashboard.Get("/revenue-chart", adminOnly, dashboardHandler.RevenueChart)
	dashboard.Get("/appointment-trends", adminOnly, dashboardHandler.AppointmentTrends)
	dashboard.Get("/popular-services", adminOnly, dashboardHandler.PopularServices)
	dashboard.Get("/recent-activities", adminOnly, dashboardHandler.RecentActivities)
	dashboard.Get("/user-stats/:customerId", dashboardHandler.UserStats)

	v1.Post("/recommendation", recommendationHandler.Recommend)

	return nil
}
