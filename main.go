package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linguachat/data/database/mgo/mongoutil"
	"linguachat/global"
	"linguachat/logger"
	"linguachat/middleware"
	chathandler "linguachat/module/chat"
	chatservice "linguachat/module/chat/service"
	"linguachat/module/chat/store"
	userhandler "linguachat/module/user"
	"linguachat/service/bus"
	"linguachat/service/gateway"
	"linguachat/service/storage"
	rediscli "linguachat/service/storage/redis"
	"linguachat/service/translate"
	"linguachat/tools/ids"
	security "linguachat/tools/security"
)

func main() {
	global.Load()
	ids.SetNodeID(global.Config.NodeId)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoCli, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:         global.Config.Mongo.Uri,
		Database:    global.Config.Mongo.Database,
		Username:    global.Config.Mongo.Username,
		Password:    global.Config.Mongo.Password,
		MaxPoolSize: global.Config.Mongo.MaxPoolSize,
	})
	cancel()
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		os.Exit(1)
	}
	defer mongoCli.Close(context.Background())

	if err := rediscli.Init(rediscli.Config{
		Addr:     global.Config.Redis.Addr,
		Password: global.Config.Redis.Password,
		DB:       global.Config.Redis.DB,
	}); err != nil {
		logger.Error("redis connect failed", zap.Error(err))
		os.Exit(1)
	}
	defer rediscli.Close()

	eventBus, err := newBus()
	if err != nil {
		logger.Error("bus connect failed", zap.Error(err))
		os.Exit(1)
	}
	defer eventBus.Close()

	st := store.NewMongo(mongoCli.GetDB())
	translator := translate.NewHTTPClient(global.Config.Translate.Endpoint, global.Config.Translate.Timeout)
	engine := chatservice.NewEngine(st, eventBus, translator)

	presence := storage.NewPresence(rediscli.Get(), global.Config.PresenceTTL)
	gw := gateway.New(global.GatewayId(), eventBus, presence)

	srv := &http.Server{
		Addr:    global.Config.HTTPAddr,
		Handler: routes(engine, st, gw),
	}

	go func() {
		logger.Infof("listening on %s", global.Config.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server exited", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func newBus() (bus.Bus, error) {
	switch global.Config.Bus {
	case global.BusNats:
		return bus.NewNatsBus(global.Config.Nats.Url)
	default:
		return bus.NewRedisBus(rediscli.Get()), nil
	}
}

func routes(engine *chatservice.Engine, st store.Store, gw *gateway.Gateway) *gin.Engine {
	auth := security.DefaultOptions([]byte(global.Config.JWTSecret))

	r := gin.New()
	r.Use(gin.Recovery())

	uh := userhandler.NewHandler(st)
	ch := chathandler.NewHandler(engine)

	middleware.POST(r, auth, "/login", uh.Login, middleware.RouteOpt{})

	middleware.GET(r, auth, "/user", ch.GetUserData, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/user/profile", ch.UpdateProfile, middleware.RouteOpt{IsAuth: true})

	middleware.POST(r, auth, "/friends/request", ch.SendFriendRequest, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/friends/accept", ch.AcceptFriendRequest, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/friends/decline", ch.DeclineRequest, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/friends/remove", ch.Unfriend, middleware.RouteOpt{IsAuth: true})

	middleware.POST(r, auth, "/chats", ch.CreateChat, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, auth, "/chats/search", ch.SearchChats, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, auth, "/chats/:id", ch.GetChatData, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/chats/join", ch.JoinChat, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/chats/leave", ch.LeaveChat, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/chats/invite", ch.SendChatInvitation, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/chats/invite/accept", ch.AcceptChatInvitation, middleware.RouteOpt{IsAuth: true})

	middleware.POST(r, auth, "/messages", ch.SendMessage, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, auth, "/messages/read", ch.MarkRead, middleware.RouteOpt{IsAuth: true})

	middleware.GET(r, auth, "/presence/:id", gw.PresenceOf, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, auth, "/ws", gw.ServeWs, middleware.RouteOpt{IsAuth: true})

	return r
}
