// @title EduReach 后端 API
// @version 1.0
// @description EduReach 学习平台后端：测验、离线内容模拟下载、学习进度与 AI 助教。

// @contact.name API支持
// @contact.email support@edureach.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"edureach_backend/internal/app"
	"edureach_backend/internal/config"
	"edureach_backend/pkg/logger"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	skipSeed := flag.Bool("skip-seed", false, "启动时不写入演示数据")
	watch := flag.Bool("watch-config", true, "配置文件修改后自动重新加载")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.SkipSeed = *skipSeed

	configFile := ""
	if *watch {
		configFile = filepath.Join(*configDir, "config.yaml")
	}

	application := app.NewApp(cfg, configFile)
	defer logger.Log.Sync()

	application.Run()
}
