package main

import (
	"github.com/nimbus-sec/authgate/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title AuthGate API
// @version 1.0
// @description Authentication gateway: token issuance, verification, revocation and rate limiting.
// @BasePath /
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.JWTService{},
		&services.RedisService{},
		&services.RevocationService{},
		&services.RateLimitService{},
		&services.AuthMiddleware{},
		&services.SqlService{},
		&services.EmailService{},
		&services.AccountService{},
		&services.KnowledgeService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
