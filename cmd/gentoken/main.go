// cmd/gentoken prints a development JWT for a seeded usuario, looked up by
// username or by id.
// Uso: go run ./cmd/gentoken -usuario operario
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"planta/internal/config"
	"planta/internal/infra"
	"planta/internal/middleware"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	username := flag.String("usuario", "supervisor", "username to look up")
	id := flag.String("id", "", "usuario id, takes precedence over -usuario")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	usuarios := repository.NewUsuarioRepository(db)

	ctx := context.Background()
	var u *model.Usuario
	if *id != "" {
		uid, perr := uuid.Parse(*id)
		if perr != nil {
			log.Fatal().Err(perr).Msg("invalid -id")
		}
		u, err = usuarios.FindByID(ctx, uid)
	} else {
		u, err = usuarios.FindActivo(ctx, *username)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("usuario not found")
	}

	hours := cfg.JWTExpirationHours
	if hours <= 0 {
		hours = 12
	}
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Rol:      u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("sign")
	}
	fmt.Println(signed)
}
