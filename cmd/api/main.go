package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/twitter-api/internal/config"
	"github.com/vasapolrittideah/twitter-api/internal/handler"
	"github.com/vasapolrittideah/twitter-api/internal/notifier"
	"github.com/vasapolrittideah/twitter-api/internal/registry"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/internal/storage"
	"github.com/vasapolrittideah/twitter-api/internal/usecase"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
	"github.com/vasapolrittideah/twitter-api/pkg/mailer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Fatal().Err(err).Msg("failed to load .env file")
	}

	cfg := config.New(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	refreshTokenRepo := repository.NewRefreshTokenMongoRepository(ctx, &logger, db)
	followerRepo := repository.NewFollowerMongoRepository(ctx, &logger, db)
	tweetRepo := repository.NewTweetMongoRepository(db)
	hashtagRepo := repository.NewHashtagMongoRepository(ctx, &logger, db)
	bookmarkRepo := repository.NewBookmarkMongoRepository(ctx, &logger, db)
	conversationRepo := repository.NewConversationMongoRepository(db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Audience, map[auth.TokenType]auth.KindSecret{
		auth.AccessToken:         {Secret: cfg.Token.AccessTokenSecret, ExpiresIn: cfg.Token.AccessTokenExpiresIn},
		auth.RefreshToken:        {Secret: cfg.Token.RefreshTokenSecret, ExpiresIn: cfg.Token.RefreshTokenExpiresIn},
		auth.EmailVerifyToken:    {Secret: cfg.Token.EmailVerifyTokenSecret, ExpiresIn: cfg.Token.EmailVerifyTokenExpiresIn},
		auth.ForgotPasswordToken: {Secret: cfg.Token.ForgotPasswordTokenSecret, ExpiresIn: cfg.Token.ForgotPasswordTokenExpiresIn},
	})

	mail := mailer.NewMailer(&logger, cfg.Client.URL)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	sessions := registry.NewRedisRegistry(redisClient)

	messageNotifier, err := notifier.NewRabbitNotifier(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer messageNotifier.Close()

	blobs, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize s3 storage")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, jwtAuth, mail, &logger)
	userUsecase := usecase.NewUserUsecase(userRepo, followerRepo)
	tweetUsecase := usecase.NewTweetUsecase(tweetRepo, hashtagRepo, userRepo)
	bookmarkUsecase := usecase.NewBookmarkUsecase(bookmarkRepo)
	conversationUsecase := usecase.NewConversationUsecase(conversationRepo, sessions, messageNotifier, &logger)
	mediaUsecase := usecase.NewMediaUsecase(blobs)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Mount("/users", handler.NewUserHandler(authUsecase, userUsecase, userRepo, refreshTokenRepo, jwtAuth, &logger).Routes())
	r.Mount("/tweets", handler.NewTweetHandler(tweetUsecase, jwtAuth, &logger).Routes())
	r.Mount("/bookmarks", handler.NewBookmarkHandler(bookmarkUsecase, tweetRepo, jwtAuth, &logger).Routes())
	r.Mount("/medias", handler.NewMediaHandler(mediaUsecase, jwtAuth, &logger).Routes())
	r.Mount("/conversations", handler.NewConversationHandler(conversationUsecase, userRepo, jwtAuth, &logger).Routes())

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
