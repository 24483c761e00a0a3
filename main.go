package main

import (
	"flag"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mentorlink/notifier/cmd"
	"github.com/mentorlink/notifier/internal/rest"
	"github.com/mentorlink/notifier/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	bootstrapLogger, _ := zap.NewDevelopment()
	config, err := cmd.ParseConfig(*configPath, bootstrapLogger)
	if err != nil {
		bootstrapLogger.Fatal("failed to parse config", zap.Error(err))
	}
	_ = bootstrapLogger.Sync()

	level, err := zapcore.ParseLevel(config.Apps.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	logger, err := utils.NewCustomLogger(level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	restApp := rest.NewRest(&rest.Config{
		Port:           config.Apps.Rest.Port,
		JWTSecret:      config.Apps.Rest.JWT.Secret,
		JWTHeaderName:  config.Apps.Rest.JWT.HeaderName,
		PublishKey:     config.Apps.Rest.Publish.ServiceKey,
		SendBuffer:     config.Apps.Rest.WS.SendBuffer,
		AllowedOrigins: config.Apps.Rest.WS.AllowedOrigins,
		Logger:         logger,
	})

	appsManager := cmd.NewAppsManager(logger)

	appsManager.Register(cmd.RestApp, restApp)
	appsManager.RunAll()
	appsManager.WaitForShutdown()
}
