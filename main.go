package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slashbot/internal/adapters/handler"
	"slashbot/internal/adapters/sender"
	"slashbot/internal/core/domain"
	"slashbot/internal/core/domain/command"
	"slashbot/internal/core/port"
	"slashbot/internal/core/service"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const submitConcurrency = 4

func main() {
	log.Info().Msg("starting slashbot...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("slashbot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("commands.default_scope", "")
	viper.SetDefault("handler.timeout", "30s")
	viper.SetDefault("handler.auto_defer", true)
	viper.SetDefault("handler.failure_reply", "Something went wrong while running this command.")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Info().Msg("no config file found, using environment")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := discordgo.New("Bot " + viper.GetString("discord.bot_token"))
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing discord session")
	}

	session.Identify.Intents = discordgo.IntentsGuilds

	if err := session.Open(); err != nil {
		log.Panic().Err(err).Msg("failed opening discord gateway connection")
	}
	defer session.Close()

	appID, err := applicationID(session)
	if err != nil {
		log.Panic().Err(err).Msg("could not determine application id")
	}

	s := sender.NewDiscordSender(session, appID, submitConcurrency)

	commandRegistry, err := newCommandRegistry(s)
	if err != nil {
		log.Panic().Err(err).Msg("failed registering commands")
	}

	guildID := viper.GetString("discord.guild_id")

	defaultScope, err := commandScope(viper.GetString("commands.default_scope"), guildID)
	if err != nil {
		log.Panic().Err(err).Msg("invalid default command scope in config")
	}

	builder := service.NewBuilder(commandRegistry, s)
	if err := builder.Initialize(ctx, guildID, defaultScope); err != nil {
		log.Panic().Err(err).Msg("failed initializing commands")
	}

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	commandHandler := handler.NewCommand(commandRegistry, s, handler.Options{
		Timeout:      handlerTimeout,
		AutoDefer:    viper.GetBool("handler.auto_defer"),
		UnknownReply: viper.GetString("handler.unknown_command_reply"),
		FailureReply: viper.GetString("handler.failure_reply"),
	})

	session.AddHandler(commandHandler.Handle)

	log.Info().Str("app", appID).Msg("bot listening")
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if err := s.Wait(); err != nil {
		log.Warn().Err(err).Msg("command submission failed")
	}
}

func newCommandRegistry(moderator port.Moderator) (*command.Registry, error) {
	commandRegistry := &command.Registry{}
	err := commandRegistry.RegisterAll(
		command.NewDebug("debug"),
		command.NewModeration(moderator, "mod"),
	)
	if err != nil {
		return nil, err
	}

	return commandRegistry, nil
}

// commandScope resolves the configured default scope. Left unset, commands go to the
// configured guild, or globally when there is none.
func commandScope(configured, guildID string) (domain.Scope, error) {
	scope, err := domain.ParseScope(configured)
	if err != nil {
		return domain.ScopeDefault, err
	}

	if scope != domain.ScopeDefault {
		return scope, nil
	}

	if guildID == "" {
		return domain.ScopeGlobal, nil
	}

	return domain.ScopeGuild, nil
}

func applicationID(session *discordgo.Session) (string, error) {
	if session.State != nil && session.State.User != nil {
		return session.State.User.ID, nil
	}

	u, err := session.User("@me")
	if err != nil {
		return "", err
	}

	return u.ID, nil
}
