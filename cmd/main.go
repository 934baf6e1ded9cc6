package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"DegensAgainstDecency/config"
	"DegensAgainstDecency/internal/auth"
	"DegensAgainstDecency/internal/content"
	"DegensAgainstDecency/internal/game/confession"
	"DegensAgainstDecency/internal/game/exchange"
	"DegensAgainstDecency/internal/game/manager"
	"DegensAgainstDecency/internal/game/stud"
	"DegensAgainstDecency/internal/matchmaker"
	"DegensAgainstDecency/internal/middleware"
	"DegensAgainstDecency/internal/storage"
	"DegensAgainstDecency/internal/utils"
	"DegensAgainstDecency/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.Load()
	utils.Init(config.C.Server.LogLevel)
	logger := utils.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 初始化 Redis（可选）
	//-------------------------------------------------------
	var (
		nonces auth.NonceStore
		repo   matchmaker.Repo
		src    content.Source = content.NewBuiltin(time.Now().UnixNano())
	)
	if config.C.Redis.Enabled {
		if err := storage.InitRedis(config.C.Redis.Addr, config.C.Redis.Password, config.C.Redis.DB); err != nil {
			logger.Fatal("redis init failed", "err", err)
		}
		nonces = auth.NewRedisNonceStore(storage.Rdb, config.C.JWT.NonceTTL)
		repo = matchmaker.NewRedisRepo(storage.Rdb)
		src = content.NewRedisCache(storage.Rdb, src, config.C.Content.CacheTTL)
		logger.Info("redis connected", "addr", config.C.Redis.Addr)
	} else {
		nonces = auth.NewMemoryNonceStore(config.C.JWT.NonceTTL)
		repo = matchmaker.NewMemoryRepo()
		logger.Warn("redis disabled, using in-memory stores")
	}

	//-------------------------------------------------------
	// 2. 对局结果存档
	//-------------------------------------------------------
	results, err := openResults(ctx)
	if err != nil {
		logger.Fatal("result store init failed", "err", err)
	}

	//-------------------------------------------------------
	// 3. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()

	//-------------------------------------------------------
	// 4. 初始化 GameManager
	//-------------------------------------------------------
	engines := manager.Engines{
		Exchange: exchange.Config{
			HandSize:       config.C.Exchange.HandSize,
			MaxRounds:      config.C.Exchange.MaxRounds,
			ContentCount:   config.C.Exchange.ContentCount,
			MinQuestions:   config.C.Exchange.MinQuestions,
			MinAnswers:     config.C.Exchange.MinAnswers,
			ContentTimeout: config.C.Content.Timeout,
		},
		Confession: confession.Config{
			Rounds:       config.C.Confession.Rounds,
			CorrectBonus: config.C.Confession.CorrectBonus,
			FooledBonus:  config.C.Confession.FooledBonus,
		},
		Stud: stud.Config{
			SmallBlind:    config.C.Stud.SmallBlind,
			BigBlind:      config.C.Stud.BigBlind,
			BettingRounds: config.C.Stud.BettingRounds,
			HoleCards:     config.C.Stud.HoleCards,
			Hands:         config.C.Stud.Hands,
		},
		Content: src,
	}
	gameMgr := manager.NewGameManager(hub, engines, manager.Settings{
		Capacity:    config.C.Table.Capacity,
		TurnTimeout: config.C.Table.TurnTimeout,
		GracePeriod: config.C.Table.GracePeriod,
	})
	if results != nil {
		gameMgr.Results = results
	}
	defer gameMgr.Close()
	hub.OnIncoming = gameMgr.HandlePlayerMessage

	//-------------------------------------------------------
	// 5. 初始化匹配系统 Matchmaker
	//-------------------------------------------------------
	svc := matchmaker.NewService(repo, config.C.Match.PlayerTTL, hub)
	svc.Validate = engines.Validate

	// 💡 成桌回调：RoomReady
	svc.OnRoomReady = func(room *matchmaker.Room) {
		logger.Info("room ready", "room", room.ID, "game", room.Game, "players", room.Players)
		if err := gameMgr.StartRoom(room); err != nil {
			logger.Error("start room failed", "room", room.ID, "err", err)
			_ = svc.Release(context.Background(), room.Players...)
		}
	}
	gameMgr.OnClosed = func(players []string) {
		if err := svc.Release(context.Background(), players...); err != nil {
			logger.Warn("release players failed", "err", err)
		}
	}

	//-------------------------------------------------------
	// 6. 初始化 Gin + CORS
	//-------------------------------------------------------
	if config.C.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "online": hub.Online()})
	})

	secret := []byte(config.C.JWT.Secret)
	auth.NewHandler(nonces, secret, config.C.JWT.TTL).Register(r.Group("/auth"))

	api := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		api.GET("/ws", websocket.ServeWS(hub))
		matchmaker.NewHandler(svc).Register(api)
		manager.NewHandler(gameMgr).Register(api)
		api.GET("/results", func(c *gin.Context) {
			if results == nil {
				c.JSON(http.StatusOK, gin.H{"results": []storage.GameResult{}})
				return
			}
			limit, _ := strconv.Atoi(c.Query("limit"))
			list, err := results.Recent(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"results": list})
		})
	}

	//-------------------------------------------------------
	// 7. 启动服务器
	//-------------------------------------------------------
	srv := &http.Server{Addr: config.C.Server.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		logger.Info("server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "err", err)
	}
}

// openResults picks the archive backend from config. An empty driver
// disables archiving.
func openResults(ctx context.Context) (*storage.ResultStore, error) {
	var (
		db      *sql.DB
		dialect string
	)
	switch config.C.Database.Driver {
	case "":
		return nil, nil
	case storage.DialectPostgres:
		if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
			return nil, err
		}
		db, dialect = storage.DB, storage.DialectPostgres
	case storage.DialectSQLite:
		var err error
		if db, err = storage.OpenSQLite(config.C.Database.DSN); err != nil {
			return nil, err
		}
		dialect = storage.DialectSQLite
	default:
		return nil, errors.New("unknown database driver " + config.C.Database.Driver)
	}
	store := storage.NewResultStore(db, dialect)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
