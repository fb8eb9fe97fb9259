package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/padelhub/turn-booking/internal/config"
    "github.com/padelhub/turn-booking/internal/database"
    "github.com/padelhub/turn-booking/internal/engine"
    "github.com/padelhub/turn-booking/internal/handler"
    "github.com/padelhub/turn-booking/internal/middleware"
    "github.com/padelhub/turn-booking/internal/queue"
    "github.com/padelhub/turn-booking/internal/repository"
    "github.com/padelhub/turn-booking/internal/router"
    "github.com/padelhub/turn-booking/internal/scheduler"
    queuepublisher "github.com/padelhub/turn-booking/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting and the response cache; nil degrades both
    // to pass-through.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable, rate limiting and caching disabled")
    }

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    clubs := repository.NewClubRepo(db)
    courts := repository.NewCourtRepo(db)
    turns := repository.NewTurnRepo(db)
    matches := repository.NewMatchRepo(db)
    invitations := repository.NewInvitationRepo(db)

    eng := engine.New(turns, users, courts, queuepublisher.MatchSink{})
    generator := scheduler.NewGenerator(eng, courts)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    authH := handler.NewAuthHandler(cfg, users, tokens)
    ownerH := handler.NewOwnerHandler(clubs, courts)
    turnH := handler.NewTurnHandler(eng, turns, courts, clubs, matches, invitations, generator)
    invH := handler.NewInvitationHandler(eng, invitations, turns, users)
    browseH := handler.NewBrowseHandler(clubs, courts, turns, users)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, browseH)
    router.RegisterOwner(e, ownerH, turnH, cfg.JWTSecret)
    router.RegisterTurns(e, turnH, cfg.JWTSecret)
    router.RegisterInvitations(e, invH, browseH, cfg.JWTSecret)

    // Background jobs: the broker consumer that logs composed matches
    // and the sweeper that completes locked turns past their window.
    go func() {
        if err := queue.StartMatchConsumer(); err != nil {
            log.Printf("match consumer stopped: %v", err)
        }
    }()
    sweeper := scheduler.NewSweeper(eng, turns, time.Duration(cfg.SweepIntervalSec)*time.Second)
    go sweeper.Run(context.Background())

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
