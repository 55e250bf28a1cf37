package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/cache"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/casbinAuthorization"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/handlers"
	application "github.com/JustinVillacorta/boardingHouse-repo-sub000/service"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/startup/config"
	store2 "github.com/JustinVillacorta/boardingHouse-repo-sub000/store"
	"github.com/casbin/casbin"
	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
)

type Server struct {
	config *config.Config
}

var Logger = logrus.New()

const (
	LogFilePath       = "/app/logs/boardinghouse.log"
	defaultSweepEvery = time.Hour
)

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["id"] = generateUniqueID()

	msg := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Data["id"],
		entry.Message,
	)

	return []byte(msg), nil
}

func generateUniqueID() string {
	return fmt.Sprintf("ID-%d", time.Now().UnixNano())
}

func initLogger() {
	writer, err := rotatelogs.New(
		LogFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		Logger.Fatalf("Failed to create rotatelogs hook: %v", err)
	}
	Logger.SetOutput(writer)

	Logger.SetFormatter(&CustomFormatter{})
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store2.GetClientWithHTTPConfig(server.config.DBHost, server.config.DBPort, httpClient)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initRedisClient() *redis.Client {
	client, err := store2.GetRedisClient(server.config.CacheHost, server.config.CachePort)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) sweepInterval() time.Duration {
	interval, err := time.ParseDuration(server.config.SweepInterval)
	if err != nil || interval <= 0 {
		return defaultSweepEvery
	}
	return interval
}

func (server *Server) Start() {

	initLogger()

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		err := mongoClient.Disconnect(ctx)
		if err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}(mongoClient, context.Background())

	redisClient := server.initRedisClient()

	ctx := context.Background()
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("boardinghouse_service")
	otel.SetTextMapPropagator(propagation.TraceContext{})

	roomStore := store2.NewRoomMongoDBStore(mongoClient, tracer)
	tenantStore := store2.NewTenantMongoDBStore(mongoClient, tracer)
	paymentStore := store2.NewPaymentMongoDBStore(mongoClient, tracer)
	reportStore := store2.NewReportMongoDBStore(mongoClient, tracer)
	notificationStore := store2.NewNotificationMongoDBStore(mongoClient, tracer)
	authStore := store2.NewAuthMongoDBStore(mongoClient, tracer)

	server.ensureIndexes(ctx, roomStore, paymentStore)

	statsCache := cache.NewStatsCache(redisClient, tracer)

	rendererBase := fmt.Sprintf("http://%s:%s", server.config.RendererHost, server.config.RendererPort)

	roomService := application.NewRoomService(roomStore, statsCache, tracer, Logger)
	tenantService := application.NewTenantService(tenantStore, roomStore, tracer, Logger)
	occupancyService := application.NewOccupancyService(roomStore, tenantStore, tracer, Logger)
	billingService := application.NewBillingService(paymentStore, tenantStore, roomStore, statsCache, rendererBase, tracer, Logger)
	reportService := application.NewReportService(reportStore, tenantStore, roomStore, tracer, Logger)
	notificationService := application.NewNotificationService(notificationStore, tenantStore, tracer, Logger)
	authService := application.NewAuthService(authStore, tracer, Logger)

	roomHandler := handlers.NewRoomHandler(roomService, occupancyService, tracer, Logger)
	tenantHandler := handlers.NewTenantHandler(tenantService, tracer, Logger)
	paymentHandler := handlers.NewPaymentHandler(billingService, tracer, Logger)
	reportHandler := handlers.NewReportHandler(reportService, notificationService, tracer, Logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, tracer, Logger)
	authHandler := handlers.NewAuthHandler(authService, tracer, Logger)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go server.runOverdueSweep(sweepCtx, billingService)

	server.start(roomHandler, tenantHandler, paymentHandler, reportHandler, notificationHandler, authHandler)
}

func (server *Server) ensureIndexes(ctx context.Context, rooms domain.RoomStore, payments domain.PaymentStore) {
	if err := rooms.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create room indexes: %v", err)
	}
	if err := payments.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create payment indexes: %v", err)
	}
}

// runOverdueSweep periodically flips due pending payments to overdue so the
// status machine does not depend on anyone reading a payment to advance it.
func (server *Server) runOverdueSweep(ctx context.Context, billing *application.BillingService) {
	interval := server.sweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := billing.UpdateOverduePayments(ctx)
			if err != nil {
				Logger.Errorf("Overdue sweep failed: %v", err)
				continue
			}
			if result.Swept > 0 || result.Failed > 0 {
				Logger.Infof("Overdue sweep finished: %d swept, %d failed", result.Swept, result.Failed)
			}
		}
	}
}

func (server *Server) start(roomHandler *handlers.RoomHandler, tenantHandler *handlers.TenantHandler,
	paymentHandler *handlers.PaymentHandler, reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler, authHandler *handlers.AuthHandler) {

	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)

	enforcer, err := casbin.NewEnforcerSafe("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}
	router.Use(casbinAuthorization.CasbinMiddleware(enforcer, Logger))

	roomHandler.Init(router.PathPrefix("/api/rooms").Subrouter())
	tenantHandler.Init(router.PathPrefix("/api/tenants").Subrouter())
	paymentHandler.Init(router.PathPrefix("/api/payments").Subrouter())
	reportHandler.Init(router.PathPrefix("/api/reports").Subrouter())
	notificationHandler.Init(router.PathPrefix("/api/notifications").Subrouter())
	authHandler.Init(router.PathPrefix("/api/auth").Subrouter())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: router,
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("boardinghouse_service"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
