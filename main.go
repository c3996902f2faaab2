package main

import (
	"context"
	"net/http"
	"time"

	mongoutil "github.com/anandbobba/Innovex-Service/data/database/mgo/mongoutil"
	"github.com/anandbobba/Innovex-Service/global"
	"github.com/anandbobba/Innovex-Service/logger"
	mid "github.com/anandbobba/Innovex-Service/middleware"
	midsec "github.com/anandbobba/Innovex-Service/middleware/security"
	"github.com/anandbobba/Innovex-Service/module/request"
	reqstore "github.com/anandbobba/Innovex-Service/module/request/store"
	"github.com/anandbobba/Innovex-Service/module/spoc"
	"github.com/anandbobba/Innovex-Service/module/team"
	"github.com/anandbobba/Innovex-Service/service/mgo"
	"github.com/anandbobba/Innovex-Service/service/relay"
	"github.com/anandbobba/Innovex-Service/service/session"
	"github.com/anandbobba/Innovex-Service/service/ws"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := global.LoadConfig()

	// Persistence. Missing/malformed URI or exhausted retries abort startup.
	if cfg.MongoURI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := mgo.Init(ctx, &mongoutil.Config{
		Uri:                 cfg.MongoURI,
		Database:            cfg.MongoDB,
		InsecureTLSFallback: cfg.MongoInsecure,
	}); err != nil {
		logger.Fatalf("mongo init: %v", err)
	}
	cancel()
	logger.Infof("[main] mongo connected uri=%s db=%s", mongoutil.SanitizeURI(cfg.MongoURI), cfg.MongoDB)

	// Sessions: in-memory by default, Redis when configured.
	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("redis session store: %v", err)
		}
		sessions = rs
		logger.Infof("[main] session store: redis addr=%s", cfg.RedisAddr)
	}

	// Realtime fan-out, optionally bridged over NATS.
	hub := ws.NewHub()
	wsSrv := ws.NewServer(hub, cfg.AllowedOrigin)
	if cfg.NatsURL != "" {
		r, err := relay.Connect(cfg.NatsURL)
		if err != nil {
			logger.Fatalf("nats relay: %v", err)
		}
		if err := r.Start(hub); err != nil {
			logger.Fatalf("nats relay subscribe: %v", err)
		}
		hub.SetRelay(r)
		defer r.Close()
		logger.Infof("[main] broadcast relay: nats url=%s", cfg.NatsURL)
	}

	sec := &midsec.Options{Store: sessions, TestToken: cfg.TestToken}
	reqHandler := request.NewHandler(&reqstore.Repo{DB: mgo.GetDB()}, hub)
	spocHandler := spoc.NewHandler(sessions, cfg.SpocPIN, cfg.SessionTTL)
	teams := team.NewDirectory(cfg.TeamsJSON)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mid.CORS(cfg.AllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"clients": hub.ClientCount(),
		})
	})
	r.GET("/ws", wsSrv.HandleWS)

	mid.GET(r, "/api/requests", reqHandler.HandleList, sec, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/requests", reqHandler.HandleCreate, sec, mid.RouteOpt{IsAuth: false})
	mid.PATCH(r, "/api/requests/:id", reqHandler.HandleUpdate, sec, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/requests/:id", reqHandler.HandleDelete, sec, mid.RouteOpt{IsAuth: true})

	mid.POST(r, "/api/spoc/unlock", spocHandler.HandleUnlock, sec, mid.RouteOpt{IsAuth: false})
	mid.GET(r, "/api/spoc/validate", spocHandler.HandleValidate, sec, mid.RouteOpt{IsAuth: false})
	mid.GET(r, "/api/teams", teams.HandleList, sec, mid.RouteOpt{IsAuth: false})

	logger.Infof("[main] listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("http server: %v", err)
	}
}
