package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	dispatcherx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/agents/dispatcher"
	orchestratorx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/agents/orchestrator"
	specialistx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/agents/specialist"
	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
	catalogx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	llmx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/llm"
	oraclex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/oracle"
	promptx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/prompt"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
	toolx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/tool"
	configx "github.com/tanpawarit/Chative-Vehicle-Advisor/pkg/config"
	logx "github.com/tanpawarit/Chative-Vehicle-Advisor/pkg/logger"
	_ "github.com/tanpawarit/Chative-Vehicle-Advisor/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Vehicle-Advisor/pkg/openrouter"
)

type AppConfig struct {
	CatalogPath      string        `envconfig:"CATALOG_PATH" split_words:"true"`
	StockSeed        int64         `envconfig:"STOCK_SEED" split_words:"true" default:"1"`
	StockProbability float64       `envconfig:"STOCK_PROBABILITY" split_words:"true" default:"0.7"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" split_words:"true" default:"1h"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("ADVISOR")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	catalog, err := loadCatalog(appCfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	tools, err := toolx.NewRegistry(toolx.Env{
		Catalog: catalog,
		Stock:   calcx.NewRandomStock(appCfg.StockSeed, appCfg.StockProbability),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool registry")
	}

	prompts := promptx.LoadPromptSet()
	oracle, err := newOracle(ctx, *llmCfg, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize oracle")
	}

	specialists, err := specialistx.NewRegistry(ctx, prompts, oracle, tools)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build specialists")
	}

	store, err := statex.NewMemoryStore(statex.WithTTL(appCfg.SessionTTL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}

	orch, err := orchestratorx.New(store, dispatcherx.New(oracle, dispatcherx.WithTimeout(llmCfg.OracleTimeout)), specialists)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create orchestrator")
	}

	mainLog := logx.Component("main")
	mainLog.Info().
		Int("vehicles", len(catalog.All())).
		Int("tools", len(tools.Names())).
		Str("classifier_backend", llmCfg.Backend()).
		Msg("vehicle advisor ready")

	if err := chat(ctx, orch); err != nil {
		log.Fatal().Err(err).Msg("chat loop failed")
	}
}

func loadCatalog(path string) (*catalogx.Catalog, error) {
	if path = strings.TrimSpace(path); path != "" {
		return catalogx.LoadFile(path)
	}
	return catalogx.Default()
}

func newOracle(ctx context.Context, cfg llmx.Config, prompts promptx.PromptSet) (contractx.Oracle, error) {
	classifierCfg := cfg.OpenRouterFor(llmx.RoleClassifier)
	specialistCfg := cfg.OpenRouterFor(llmx.RoleSpecialist)

	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	specialistModel, err := specialistCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create specialist model: %v", contractx.ErrModelInvoke, err)
	}

	graph, err := oraclex.NewGraph(ctx, classifierModel, specialistModel, prompts.Classifier,
		oraclex.WithMaxToolRounds(cfg.MaxToolRounds))
	if err != nil {
		return nil, err
	}
	if cfg.Backend() != llmx.BackendOpenAI {
		return graph, nil
	}

	client, err := openrouterx.NewClient(classifierCfg)
	if err != nil {
		return nil, err
	}
	classifier, err := oraclex.NewOpenAIClassifier(client, classifierCfg.Model, prompts.Classifier, float64(classifierCfg.Temperature))
	if err != nil {
		return nil, err
	}
	return oraclex.Compose(classifier, graph), nil
}

func chat(ctx context.Context, orch *orchestratorx.Orchestrator) error {
	logger := logx.Component("chat")
	sessionID := uuid.NewString()
	fmt.Println("Vehicle advisor. Commands: /reset starts over, /history shows the log, /quit exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			return orch.EndConversation(ctx, sessionID)
		case "/reset":
			if err := orch.EndConversation(ctx, sessionID); err != nil {
				return err
			}
			sessionID = uuid.NewString()
			fmt.Println("(new conversation)")
			continue
		case "/history":
			history, err := orch.History(ctx, sessionID)
			if err != nil {
				fmt.Println("(no history yet)")
				continue
			}
			for _, e := range history {
				fmt.Printf("%3d %-10s %-9s %s\n", e.Seq, e.Role, e.Kind, e.Text)
			}
			continue
		}

		turn, err := orch.HandleTurn(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
			fmt.Println("Sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Printf("[%s] %s\n", turn.Decision.Specialist, turn.Reply)
	}
}
