package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

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
	PipelineFile string `envconfig:"PIPELINE_FILE" split_words:"true"`
}

func main() {
	if configx.HelpRequested() {
		if err := printEnvUsage(); err != nil {
			log.Fatal().Err(err).Msg("print usage")
		}
		return
	}

	appCfg := configx.MustNew[AppConfig]("NEWS")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	runCfg := configx.MustNew[pipelinex.Config]("PIPELINE")
	crewCfg := configx.MustNew[crewx.Config]("CREW")

	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := llmCfg.Verify(ctx); err != nil {
		log.Fatal().Err(err).Msg("verify model")
	}

	p, err := promptx.LoadFile(appCfg.PipelineFile, promptx.NewsCurator)
	if err != nil {
		log.Fatal().Err(err).Msg("load pipeline")
	}

	// news_api reads mock data only; the record store is never touched.
	catalog := toolx.NewCatalog(storex.NewMemoryStore())
	runner, err := crewx.Build(ctx, p, llmCfg.NewModel, catalog, *crewCfg, *runCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build news curator")
	}

	log.Info().Str("pipeline", runner.Name()).Msg("news curator ready")
	if err := frontend.RunNewsTerminal(ctx, runner, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("news curator exited with error")
		stop()
		os.Exit(1)
	}
}

func printEnvUsage() error {
	if err := configx.Usage[AppConfig](os.Stdout, "NEWS"); err != nil {
		return err
	}
	if err := configx.Usage[llmx.Config](os.Stdout, "LLM"); err != nil {
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
