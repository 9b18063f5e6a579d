package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/dchesnokov/inkwell/docs"
	"github.com/dchesnokov/inkwell/internal/about"
	"github.com/dchesnokov/inkwell/internal/config"
	"github.com/dchesnokov/inkwell/internal/database"
	"github.com/dchesnokov/inkwell/internal/group"
	"github.com/dchesnokov/inkwell/internal/post"
	"github.com/dchesnokov/inkwell/internal/user"
	mw "github.com/dchesnokov/inkwell/pkg/middleware"
)

// @title        Inkwell API
// @version      1.0
// @description  A small blog publishing service: posts, groups, profiles.
// @BasePath     /
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Session cookie store
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, store)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Post feature (listing engine + authoring, backed by group and user lookups)
	postRepo := post.NewRepository(db)
	postService := post.NewService(postRepo, groupService, userService)
	postHandler := post.NewHandler(postService)

	// About section
	aboutHandler := about.NewHandler()

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.CurrentUser(store))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/posts", postHandler.Routes())
	r.Mount("/auth", userHandler.Routes())
	r.Mount("/about", aboutHandler.Routes())

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", groupHandler.List)
		r.With(mw.RequireAuth(post.LoginPath)).Post("/", groupHandler.Create)
		r.Get("/{slug}", postHandler.GroupPage)
	})

	r.Get("/profile/{username}", postHandler.Profile)

	r.Get("/swagger/*", httpSwagger.Handler())

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
