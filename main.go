package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rayhandestian/quickbites/consumer"
	"github.com/rayhandestian/quickbites/controllers"
	"github.com/rayhandestian/quickbites/database"
	"github.com/rayhandestian/quickbites/logger"
	"github.com/rayhandestian/quickbites/metrics"
	"github.com/rayhandestian/quickbites/middleware"
	aws_pkg "github.com/rayhandestian/quickbites/pkg/aws"
	"github.com/rayhandestian/quickbites/repository"
	"github.com/rayhandestian/quickbites/routes"
	"github.com/rayhandestian/quickbites/sender"
	"github.com/rayhandestian/quickbites/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const serviceName = "order-notifier"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	ctx := context.Background()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		panic(err.Error())
	}

	// CloudWatch Logs (non-fatal)
	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled {
		if cwWriter, err = aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName); err != nil {
			cwWriter = nil
		}
	}

	log, err := newLogger(cfg.AppEnv, cwWriter)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	log = log.With(zap.String("service", serviceName), zap.String("region", cfg.ServiceRegion))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, aws_pkg.NewMetricsClient(awsCfg))

	// Datastores
	var (
		mongoClient *mongo.Client
		pgDB        *gorm.DB
		redisClient *redis.Client
		fsClient    *firestore.Client
		firebaseApp *firebase.App
	)
	if cfg.UserStore == storeFirestore || cfg.PushProvider == providerFCM {
		if firebaseApp, err = database.NewFirebaseApp(ctx, []byte(cfg.FCMCredentialsJSON), cfg.FCMCredentialsFile); err != nil {
			log.Fatal("Firebase init failed", zap.Error(err))
		}
	}
	if cfg.UserStore == storeMongo || cfg.HasSource(sourceChangeStream) {
		if mongoClient, err = database.ConnectMongo(ctx, cfg.MongoURL, log); err != nil {
			log.Fatal("MongoDB connection failed", zap.Error(err))
		}
	}

	var store repository.UserStore
	switch cfg.UserStore {
	case storeMongo:
		store = repository.NewMongoUserRepository(mongoClient.Database(cfg.MongoDB), cfg.UsersCollection)
	case storeDynamoDB:
		client, err := database.NewDynamoDBClient(ctx, awsCfg, cfg.DynamoUsersTable, log)
		if err != nil {
			log.Fatal("DynamoDB init failed", zap.Error(err))
		}
		store = repository.NewDynamoUserRepository(client, cfg.DynamoUsersTable)
	case storePostgres:
		if pgDB, err = database.ConnectPostgres(cfg.Postgres, log); err != nil {
			log.Fatal("DB connection failed", zap.Error(err))
		}
		store = repository.NewPostgresUserRepository(pgDB)
	case storeFirestore:
		if fsClient, err = database.ConnectFirestore(ctx, firebaseApp, log); err != nil {
			log.Fatal("Firestore init failed", zap.Error(err))
		}
		store = repository.NewFirestoreUserRepository(fsClient, cfg.UsersCollection)
	}

	if cfg.RedisURL != "" {
		if redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL, log); err != nil {
			log.Warn("token cache disabled", zap.Error(err))
		} else {
			store = repository.NewCachedUserStore(store, redisClient, cfg.TokenCacheTTL, m.ObserveCacheLookup, log)
		}
	}

	// Push transport
	push, err := newPushSender(ctx, cfg, awsCfg, firebaseApp)
	if err != nil {
		log.Fatal("Failed to init push sender", zap.Error(err))
	}

	// Dependency injection
	resolver := services.NewRecipientResolver(store)
	dispatcher := services.NewDispatcher(log, m,
		services.NewOrderCreatedHandler(resolver, push, m, log),
		services.NewOrderUpdatedHandler(resolver, push, m, log),
	)

	// Event sources
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	var wg sync.WaitGroup
	var closers []func() error

	run := func(name string, start func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(consumerCtx)
			log.Info("event source stopped", zap.String("source", name))
		}()
	}

	for _, source := range cfg.EventSources {
		switch source {
		case sourceSQS:
			c, err := consumer.NewSQSConsumer(awsCfg, cfg.SQSQueueURL, dispatcher, log)
			if err != nil {
				log.Fatal("Failed to init SQS consumer", zap.Error(err))
			}
			run(source, c.Start)
		case sourceKafka:
			c := consumer.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, dispatcher, log)
			run(source, c.Start)
		case sourceRabbitMQ:
			c, err := consumer.NewRabbitMQConsumer(cfg.RabbitMQ, dispatcher, log)
			if err != nil {
				log.Fatal("Failed to init RabbitMQ consumer", zap.Error(err))
			}
			closers = append(closers, c.Close)
			run(source, func(ctx context.Context) {
				if err := c.Start(ctx); err != nil {
					log.Error("RabbitMQ consumer failed", zap.Error(err))
				}
			})
		case sourceChangeStream:
			orders := mongoClient.Database(cfg.MongoDB).Collection(cfg.OrdersCollection)
			run(source, consumer.NewChangeStreamWatcher(orders, dispatcher, log).Start)
		}
	}

	// Router
	gin.SetMode(ginMode(cfg.AppEnv))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))

	// Request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, registry)
	if cfg.HasSource(sourceHTTP) {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.IngressRatePerSecond), cfg.IngressBurst, 5*time.Minute)
		routes.RegisterEventRoutes(r, controllers.NewEventController(dispatcher, log), []byte(cfg.IngressJWTSecret), limiter)
	}

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Order notifier started",
			zap.String("port", cfg.Port),
			zap.Strings("sources", cfg.EventSources),
			zap.String("user_store", cfg.UserStore),
			zap.String("push_provider", push.Provider()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	wg.Wait()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("Event source close error", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.ClosePostgres(pgDB); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	if err := database.DisconnectMongo(mongoClient); err != nil {
		log.Error("MongoDB close error", zap.Error(err))
	}
	if err := database.CloseFirestore(fsClient); err != nil {
		log.Error("Firestore close error", zap.Error(err))
	}

	log.Info("Order notifier stopped gracefully")
}

// newLogger avoids handing logger.New a typed nil writer.
func newLogger(env string, cw *aws_pkg.CloudWatchLogsClient) (*zap.Logger, error) {
	if cw == nil {
		return logger.New(env, nil)
	}
	return logger.New(env, cw)
}

func newPushSender(ctx context.Context, cfg *Config, awsCfg aws.Config, app *firebase.App) (sender.PushSender, error) {
	if cfg.PushProvider == providerSNS {
		return sender.NewSNSSender(awsCfg, cfg.SNSPlatformApplicationARN)
	}
	return sender.NewFCMSender(ctx, app)
}

func ginMode(env string) string {
	if env == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
