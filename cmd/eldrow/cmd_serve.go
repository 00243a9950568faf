package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/auth"
	"github.com/robalobadob/eldrow/internal/config"
	"github.com/robalobadob/eldrow/internal/db"
	"github.com/robalobadob/eldrow/internal/httpserver"
	"github.com/robalobadob/eldrow/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg
			if addr != "" {
				cfg.Addr = addr
			}

			list, err := a.wordList()
			if err != nil {
				return err
			}
			answers, allowed := list.Stats()
			log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

			conn, err := db.OpenAndMigrate(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			games := store.NewMemoryStore()
			if cfg.RedisAddr != "" {
				client, err := store.NewRedisClient(ctx, cfg.RedisAddr)
				if err != nil {
					return err
				}
				defer client.Close()
				games = store.NewRedisStore(client, cfg.SessionTTL)
				log.Info().Str("redis", cfg.RedisAddr).Msg("game sessions in redis")
			}

			if cfg.Auth.JWTSecret == config.Default().Auth.JWTSecret {
				if cfg.Production {
					return errors.New("serve: JWT_SECRET must be set in production")
				}
				log.Warn().Msg("JWT_SECRET not set; using the development secret")
			}
			srv := httpserver.New(httpserver.Options{
				Store: games,
				DB:    conn,
				Words: list,
				Tokens: auth.Tokens{
					Secret:     []byte(cfg.Auth.JWTSecret),
					TTL:        time.Duration(cfg.Auth.JWTExpiresDays) * 24 * time.Hour,
					CookieName: cfg.Auth.CookieName,
					Secure:     cfg.Production,
				},
				DailySalt:    cfg.DailySalt,
				Rows:         cfg.MaxGuesses,
				Rule:         cfg.EvalRule(),
				ClientOrigin: cfg.ClientOrigin,
				Secure:       cfg.Production,
			})

			log.Info().Str("addr", cfg.Addr).Str("rule", cfg.EvalRule().String()).Msg("starting eldrow server")
			if err := srv.Start(ctx, cfg.Addr); err != nil {
				log.Error().Err(err).Msg("server exited")
				return err
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
