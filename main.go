package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Keel/internal/auth"
	"Keel/internal/calc/batch"
	"Keel/internal/calc/loadcase"
	"Keel/internal/calc/report"
	"Keel/internal/calc/scenario"
	"Keel/internal/config"
	"Keel/internal/log"
	"Keel/internal/metrics"
	"Keel/internal/repo"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const maxBatchCases = 500

var wg sync.WaitGroup

type deps struct {
	cfg     config.Config
	users   repo.Repository
	store   repo.SnapshotStore
	metrics *metrics.Metrics
}

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, d deps) {
	authEnv := &auth.Authenv{JWTkey: []byte(d.cfg.TokenKey), Repo: d.users}
	limiter := auth.NewIPRateLimiter(rate.Limit(d.cfg.RateLimit), d.cfg.RateBurst)

	mux.Handle("/metrics", d.metrics.Handler()).Methods("GET")

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.NewRoute().Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	calcH := &scenario.Handler{Constants: d.cfg.Calc, Metrics: d.metrics}
	for _, s := range []scenario.Stage{
		scenario.Hydrostatics, scenario.Equilibrium, scenario.Curve, scenario.Compliance,
		scenario.Damage, scenario.Transfer, scenario.ListCorrection, scenario.All,
	} {
		secureApi.HandleFunc("/calc/"+s.String(), calcH.Calc(s)).Methods("POST")
	}

	batchH := &batch.Handler{Constants: d.cfg.Calc, Metrics: d.metrics, Limit: d.cfg.BatchLimit, MaxCases: maxBatchCases}
	secureApi.HandleFunc("/batch", batchH.Run).Methods("POST")

	reportH := &report.Handler{Constants: d.cfg.Calc, Metrics: d.metrics}
	secureApi.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")

	caseH := &loadcase.Handler{Store: d.store}
	secureApi.HandleFunc("/snapshots", caseH.Save).Methods("POST")
	secureApi.HandleFunc("/snapshots", caseH.List).Methods("GET")
	secureApi.HandleFunc("/snapshots/{id}", caseH.Get).Methods("GET")
	secureApi.HandleFunc("/tables/export", caseH.Export).Methods("POST")
	secureApi.HandleFunc("/tables/import", caseH.Import).Methods("POST")
}

func main() {
	if err := log.Init(false); err != nil {
		panic(err)
	}
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TokenKey == "" {
		log.Fatalf("token_key is not set (KEEL_TOKEN_KEY)")
	}
	if cfg.Debug {
		if err := log.Init(true); err != nil {
			log.Fatalf("logger: %v", err)
		}
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()
	if err := repo.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	store := repo.NewPostgres(db)

	mux := mux.NewRouter()
	HandleList(mux, deps{cfg: cfg, users: store, store: store, metrics: metrics.New(prometheus.NewRegistry())})
	handler := log.Middleware(CORS(mux))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infow("starting server", "addr", cfg.Addr, "tls", cfg.TLSCert != "")
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Infow("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown", "error", err)
	}
	wg.Wait()
	log.Infow("server stopped")
}
