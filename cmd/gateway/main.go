package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/wealthpath/edu-gateway/internal/api/http"
	"github.com/wealthpath/edu-gateway/internal/config"
	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/db"
	"github.com/wealthpath/edu-gateway/internal/education"
	"github.com/wealthpath/edu-gateway/internal/identity"
	"github.com/wealthpath/edu-gateway/internal/rbac"
	"github.com/wealthpath/edu-gateway/internal/reward"
	"github.com/wealthpath/edu-gateway/internal/timeproof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Collaborators ---
	policy := reward.DefaultPolicy()
	policy.MinElapsed = cfg.MinElapsed
	policy.RetryWeight = cfg.RetryWeight
	backend := reward.NewSQLService(dbh, policy)

	var redeems timeproof.RedeemStore
	switch cfg.RedeemBackend {
	case "redis":
		redeems = timeproof.NewRedisRedeemStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	case "memory":
		redeems = timeproof.NewInMemoryRedeemStore(0)
	default:
		redeems = timeproof.NewSQLRedeemStore(dbh)
	}
	timeSvc := timeproof.NewService(cfg.TimeProofSecret, cfg.TimeProofTTL, redeems)
	validator := timeproof.NewValidator(timeSvc)

	// --- Core ---
	catalog := curriculum.Default()
	gw := education.NewGateway(catalog, backend, validator, cfg.CallTimeout)

	// --- Identity ---
	authSvc := identity.NewAuthService(cfg.AuthHMACSecret)
	users := identity.NewSQLUserStore(dbh)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", identity.LoginHandler(authSvc, users))
	}

	// Protected education surface (JWT → user/role in context → RBAC).
	r.Group(func(pr chi.Router) {
		pr.Use(identity.Middleware(authSvc))
		pr.Route("/education", func(er chi.Router) {
			er.With(rbac.Require("education:start")).
				Post("/{tutorial}/started", api.MarkStartedHandler(gw))
			er.With(rbac.Require("education:view")).
				Get("/{tutorial}/dashboard", api.DashboardHandler(gw))
			er.With(rbac.Require("education:view")).
				Get("/{tutorial}/units/{unit}", api.UnitStateHandler(gw))
			er.With(rbac.Require("education:submit")).
				Post("/{tutorial}/units/{unit}/tasks/{task}", api.SubmitTaskHandler(gw))

			if cfg.EnableLocalTimeProof {
				er.With(rbac.Require("education:start")).
					Post("/{tutorial}/units/{unit}/tasks/{task}/timeproof", api.IssueTimeProofHandler(timeSvc))
			}
		})
		mountAdminRoutes(pr, dbh)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s, redeem=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.RedeemBackend)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
