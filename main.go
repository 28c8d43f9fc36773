package main

import (
	"context"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/clinicdesk/scheduling-agent/agent/agents/orchestrator"
	capabilityx "github.com/clinicdesk/scheduling-agent/agent/capability"
	decisionx "github.com/clinicdesk/scheduling-agent/agent/decision"
	dispatchx "github.com/clinicdesk/scheduling-agent/agent/dispatch"
	llmx "github.com/clinicdesk/scheduling-agent/agent/llm"
	promptx "github.com/clinicdesk/scheduling-agent/agent/prompt"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
	"github.com/clinicdesk/scheduling-agent/emr"
	calendlyx "github.com/clinicdesk/scheduling-agent/pkg/calendly"
	configx "github.com/clinicdesk/scheduling-agent/pkg/config"
	_ "github.com/clinicdesk/scheduling-agent/pkg/logger/autoload"
	qstashx "github.com/clinicdesk/scheduling-agent/pkg/qstash"
	serverx "github.com/clinicdesk/scheduling-agent/server"
)

type AppConfig struct {
	SessionStore string `envconfig:"SESSION_STORE" default:"memory"`
	UseCalendly  bool   `envconfig:"USE_CALENDLY" default:"false"`
	UseQStash    bool   `envconfig:"USE_QSTASH" default:"false"`

	// ReminderWebhookURL receives the delayed reminder deliveries QStash
	// publishes.
	ReminderWebhookURL string `envconfig:"REMINDER_WEBHOOK_URL"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	llmCfg := configx.MustNew[llmx.Config]("GROQ")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	groqCfg := llmCfg.GroqForDecision()
	chatModel, err := groqCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	prompts := promptx.LoadPromptSet()
	engine, err := decisionx.New(ctx, chatModel, prompts.Decision)
	if err != nil {
		log.Fatal().Err(err).Msg("create decision engine")
	}

	emrCfg := configx.MustNew[emr.Config]("EMR")
	db, err := emr.Open(*emrCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open emr database")
	}
	defer db.Close()
	if err := emr.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate emr database")
	}
	repo, err := emr.NewRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create emr repository")
	}

	var slots capabilityx.SlotSource = capabilityx.StaticSlotSource{}
	if appCfg.UseCalendly {
		calCfg := configx.MustNew[calendlyx.Config]("CALENDLY")
		slots = capabilityx.NewCalendlySlotSource(
			calendlyx.MustNew(*calCfg),
			calCfg.UserURI,
			calCfg.NewPatientURI,
			calCfg.ReturningURI,
			calCfg.LookaheadDays,
		)
	}

	var notifierOpts []capabilityx.NotifierOption
	if appCfg.UseQStash {
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		notifierOpts = append(notifierOpts, capabilityx.WithReminderPublisher(
			qstashx.MustNew(*qstashCfg),
			appCfg.ReminderWebhookURL,
		))
	}
	notifier := capabilityx.NewClinicNotifier(notifierOpts...)

	gateway, err := capabilityx.NewGateway(repo, repo, slots, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("create capability gateway")
	}

	var store statex.Store = statex.NewMemoryStore()
	if appCfg.SessionStore == "redis" {
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		redisStore, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create redis session store")
		}
		store = redisStore
	}

	orch, err := orchestratorx.New(store, engine, dispatchx.New(gateway))
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	srvCfg := configx.MustNew[serverx.Config]("SERVER")
	srv, err := serverx.New(orch)
	if err != nil {
		log.Fatal().Err(err).Msg("create http server")
	}

	if err := srv.Listen(srvCfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
