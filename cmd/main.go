package main

import (
	"context"
	"fmt"
	"log"

	"OIerFinder/internal/api"
	"OIerFinder/internal/config"
	"OIerFinder/internal/database"
	"OIerFinder/internal/filter"
	"OIerFinder/internal/luogu"
	"OIerFinder/internal/repository"
	"OIerFinder/internal/service"
	"OIerFinder/internal/stats"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	if cfg.Server.Mode == gin.DebugMode {
		logrusLogger.SetLevel(logrus.DebugLevel)
	}
	logrusLogger.Info("配置文件加载成功")

	// 3. 基数统计表：进程内只读
	table, err := stats.Load(cfg.Stats.Path)
	if err != nil {
		logrusLogger.Fatalf("加载基数统计失败: %v", err)
	}
	logrusLogger.WithFields(logrus.Fields{
		"path":     cfg.Stats.Path,
		"min_year": table.MinYear,
		"max_year": table.MaxYear,
	}).Info("基数统计加载成功")

	// 4. 数据源（postgres 走 gorm，sqlite 直接挂载上游数据文件）
	conn, err := database.Open(cfg.Database, cfg.Query.MaxParams, cfg.Server.Mode == gin.DebugMode, logrusLogger)
	if err != nil {
		logrusLogger.Fatalf("打开数据库失败: %v", err)
	}
	defer conn.Close()

	// 5. 服务
	queryService := service.NewQueryService(conn.Backend, table, conn.Dialect, filter.DefaultWeights(), cfg.Query, logrusLogger)

	// 洛谷奖项只在 postgres 下落库
	var prizeRepo repository.LuoguPrizeRepository
	if conn.Gorm != nil {
		prizeRepo = repository.NewLuoguPrizeRepository(conn.Gorm)
	} else {
		logrusLogger.Warn("当前数据源不支持写入，洛谷奖项同步结果不落库")
	}
	luoguService := service.NewLuoguService(luogu.NewClient(&cfg.Luogu, logrusLogger), prizeRepo, logrusLogger)

	// 基数统计重算：管理员手动触发，配置了间隔时后台定时执行
	statsSyncService := service.NewStatsSyncService(conn.Backend, queryService.Estimator(), cfg.Stats.Path, logrusLogger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Stats.RefreshInterval > 0 {
		statsSyncService.Start(ctx, cfg.Stats.RefreshInterval)
		logrusLogger.Infof("基数统计定时重算已开启，间隔：%s", cfg.Stats.RefreshInterval)
	}

	// 6. 配置Gin运行模式
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 7. 注册API路由
	api.RegisterRoutes(r, cfg.Admin,
		api.NewQueryHandler(queryService, logrusLogger),
		api.NewLuoguHandler(luoguService, logrusLogger),
		api.NewSyncHandler(statsSyncService, logrusLogger),
	)

	// 8. 启动服务
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}
