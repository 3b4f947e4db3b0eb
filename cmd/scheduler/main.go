package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	crewx "github.com/tanpawarit/crew-assistants/agent/crew"
	llmx "github.com/tanpawarit/crew-assistants/agent/llm"
	pipelinex "github.com/tanpawarit/crew-assistants/agent/pipeline"
	promptx "github.com/tanpawarit/crew-assistants/agent/prompt"
	storex "github.com/tanpawarit/crew-assistants/agent/store"
	toolx "github.com/tanpawarit/crew-assistants/agent/tool"
	"github.com/tanpawarit/crew-assistants/frontend"
	configx "github.com/tanpawarit/crew-assistants/pkg/config"
	_ "github.com/tanpawarit/crew-assistants/pkg/logger/autoload"
)

type AppConfig struct {
	Frontend     string `envconfig:"FRONTEND" default:"terminal"`
	Addr         string `envconfig:"ADDR" default:":7860"`
	Timezone     string `envconfig:"TIMEZONE" default:"America/New_York"`
	PipelineFile string `envconfig:"PIPELINE_FILE" split_words:"true"`
}

func main() {
	if configx.HelpRequested() {
		if err := printEnvUsage(); err != nil {
			log.Fatal().Err(err).Msg("print usage")
		}
		return
	}

	appCfg := configx.MustNew[AppConfig]("SCHEDULER")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	storeCfg := configx.MustNew[storex.Config]("STORE")
	runCfg := configx.MustNew[pipelinex.Config]("PIPELINE")
	crewCfg := configx.MustNew[crewx.Config]("CREW")

	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", appCfg.Timezone).Msg("load timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg, llmCfg, storeCfg, runCfg, crewCfg, loc); err != nil {
		if errors.Is(err, frontend.ErrAborted) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("scheduler exited with error")
		stop()
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	appCfg *AppConfig,
	llmCfg *llmx.Config,
	storeCfg *storex.Config,
	runCfg *pipelinex.Config,
	crewCfg *crewx.Config,
	loc *time.Location,
) error {
	if err := llmCfg.Verify(ctx); err != nil {
		return err
	}

	store, err := storex.Open(*storeCfg)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close record store")
		}
	}()

	p, err := promptx.LoadFile(appCfg.PipelineFile, promptx.Scheduler)
	if err != nil {
		return err
	}
	runner, err := crewx.Build(ctx, p, llmCfg.NewModel, toolx.NewCatalog(store), *crewCfg, *runCfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("pipeline", runner.Name()).
		Str("store", storeCfg.Driver).
		Str("frontend", appCfg.Frontend).
		Msg("scheduler ready")

	switch strings.ToLower(appCfg.Frontend) {
	case "web":
		return frontend.NewSchedulerWeb(runner, loc).Serve(ctx, appCfg.Addr)
	case "terminal", "":
		return frontend.RunSchedulerTerminal(ctx, runner, loc, os.Stdin, os.Stdout)
	default:
		return errors.New("unknown frontend " + appCfg.Frontend)
	}
}

func printEnvUsage() error {
	if err := configx.Usage[AppConfig](os.Stdout, "SCHEDULER"); err != nil {
		return err
	}
	if err := configx.Usage[llmx.Config](os.Stdout, "LLM"); err != nil {
		return err
	}
	if err := configx.Usage[storex.Config](os.Stdout, "STORE"); err != nil {
		return err
	}
	if err := configx.Usage[pipelinex.Config](os.Stdout, "PIPELINE"); err != nil {
		return err
	}
	if err := configx.Usage[crewx.Config](os.Stdout, "CREW"); err != nil {
		return err
	}
	return nil
}
