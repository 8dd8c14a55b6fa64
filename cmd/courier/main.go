// Command courier is a terminal front end for the assistant bridge. It wires
// the configured provider, the relay, the latency monitor and a console chat
// surface into a small REPL. When NATS_URL is set, updates and alerts are
// additionally published for remote surfaces.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/casualjim/courier"
	"github.com/casualjim/courier/config"
	"github.com/casualjim/courier/monitor"
	"github.com/casualjim/courier/persona"
	"github.com/casualjim/courier/pkg/natsx"
	"github.com/casualjim/courier/pkg/slogx"
	"github.com/casualjim/courier/pkg/uuidx"
	"github.com/casualjim/courier/provider"
	"github.com/casualjim/courier/provider/models"
	"github.com/casualjim/courier/provider/ollama"
	"github.com/casualjim/courier/provider/openai"
	"github.com/casualjim/courier/provider/openrouter"
	"github.com/casualjim/courier/relay"
	"github.com/casualjim/courier/sink"
	"github.com/casualjim/courier/thread"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/k0kubun/pp/v3"
	"github.com/openai/openai-go/option"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelWarn}),
	))
}

func main() {
	ctx := context.Background()
	cfg := config.FromEnv()

	registerProviders(cfg)
	prov, ok := models.Get(cfg.Provider)
	if !ok {
		slog.Error("unknown provider", slog.String("provider", cfg.Provider), slog.Any("known", models.Names()))
		os.Exit(1)
	}

	console := newConsoleSurface(os.Stdout)
	messages, alerts, cleanup := buildSinks(cfg, console)
	defer cleanup()

	recorder := monitor.New(
		monitor.WithSlowThreshold(cfg.SlowThreshold),
		monitor.WithMaxHistory(cfg.MaxHistory),
		monitor.WithAlertSink(alerts),
	)

	traits := persona.Default()
	if cfg.PersonaDir != "" {
		loaded, err := persona.Load(cfg.PersonaDir)
		if err != nil {
			slog.Error("failed to load persona", slogx.Error(err))
			os.Exit(1)
		}
		traits = loaded
	}

	bridge, err := courier.New(
		courier.WithProvider(prov),
		courier.WithModel(cfg.Model),
		courier.WithMessages(messages),
		courier.WithPersona(traits),
		courier.WithRecorder(recorder),
		courier.WithHistory(thread.NewStore(cfg.MaxTurns)),
		courier.WithBatching(
			relay.WithMaxUpdateBytes(cfg.MaxUpdateBytes),
			relay.WithUpdateInterval(cfg.UpdateInterval),
		),
	)
	if err != nil {
		slog.Error("failed to build bridge", slogx.Error(err))
		os.Exit(1)
	}

	fmt.Printf("%s %s/%s — type a message, /help for commands\n",
		color.GreenString("courier"), cfg.Provider, cfg.Model)

	if err := runREPL(ctx, bridge, prov, console, cfg); err != nil {
		slog.Error("repl failed", slogx.Error(err))
		os.Exit(1)
	}
}

func registerProviders(cfg config.Config) {
	if cfg.OpenAIKey != "" {
		models.Add("openai", openai.New(cfg.OpenAIKey))
	}
	if cfg.OpenRouterKey != "" {
		if cfg.OpenRouterBaseURL != "" {
			models.Add("openrouter", openrouter.New(cfg.OpenRouterKey, option.WithBaseURL(cfg.OpenRouterBaseURL)))
		} else {
			models.Add("openrouter", openrouter.New(cfg.OpenRouterKey))
		}
	}
	models.Add("ollama", ollama.New(cfg.OllamaBaseURL))
}

func buildSinks(cfg config.Config, console *consoleSurface) (sink.MessageSink, sink.AlertSink, func()) {
	if os.Getenv("NATS_URL") == "" {
		return console, console, func() {}
	}

	nc, err := natsx.NewClient()
	if err != nil {
		slog.Warn("NATS unreachable, console only", slogx.Error(err))
		return console, console, func() {}
	}
	remote := sink.NATS(nc, cfg.NATSPrefix)
	return fanoutMessages{console, remote}, fanoutAlerts{console, remote}, nc.Close
}

func runREPL(ctx context.Context, bridge *courier.Bridge, prov provider.Provider, console *consoleSurface, cfg config.Config) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanLines)

	channelID := "repl"
	userID := os.Getenv("USER")

	for {
		fmt.Printf("%s: ", color.CyanString("User"))
		if !scanner.Scan() {
			fmt.Println("Exiting...")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"):
			return nil
		case input == "/help":
			printHelp()
			continue
		case input == "/stats":
			printStats(bridge.Recorder())
			continue
		case input == "/models":
			printModels(ctx, prov)
			continue
		case input == "/health":
			printHealth(ctx, prov)
			continue
		case input == "/forget":
			bridge.History().Forget(channelID)
			fmt.Println("history cleared")
			continue
		case input == "/render":
			console.TogglePretty()
			fmt.Printf("pretty rendering: %v\n", console.Pretty())
			continue
		case input == "/debug":
			pp.Println(cfg)
			pp.Println(bridge.Recorder().Samples())
			continue
		}

		messageID := uuidx.NewString()
		fmt.Printf("%s: ", color.MagentaString("Assistant"))
		answer, err := bridge.Respond(ctx, courier.Turn{
			ChannelID: channelID,
			MessageID: messageID,
			UserID:    userID,
			Prompt:    input,
		})
		if err != nil {
			fmt.Printf("%s: %s\n", color.RedString("error"), userFacing(err))
			continue
		}
		console.Finish(messageID, answer)
	}
}

// userFacing keeps backend internals out of the terminal while preserving
// the quota distinction.
func userFacing(err error) string {
	if provider.IsQuotaExhausted(err) {
		return fmt.Sprintf("the backend is out of quota, try again later (%v)", err)
	}
	return "error generating response, see logs for details"
}

func printHelp() {
	fmt.Println(`commands:
  /stats   latency statistics for this session
  /models  models the current backend serves
  /health  probe the current backend
  /forget  clear conversation history
  /render  toggle markdown rendering of answers
  /debug   dump config and raw samples
  exit     leave`)
}

func printModels(ctx context.Context, prov provider.Provider) {
	names, err := prov.ListModels(ctx)
	if err != nil {
		fmt.Printf("%s: %v\n", color.RedString("error"), err)
		return
	}
	if len(names) == 0 {
		fmt.Println("backend reports no models")
		return
	}
	for _, name := range names {
		fmt.Println("  " + name)
	}
}

func printHealth(ctx context.Context, prov provider.Provider) {
	if prov.HealthCheck(ctx) {
		fmt.Println(color.GreenString("healthy"))
	} else {
		fmt.Println(color.RedString("unreachable"))
	}
}

func printStats(recorder *monitor.Recorder) {
	fmt.Printf("%s %d\n", color.CyanString("samples:"), recorder.Len())

	if avg, ok := recorder.Average(); ok {
		fmt.Printf("%s %s\n", color.CyanString("average:"), avg.Round(time.Millisecond))
	} else {
		fmt.Printf("%s no data\n", color.CyanString("average:"))
	}

	if p95, ok := recorder.P95(); ok {
		fmt.Printf("%s %s\n", color.CyanString("p95:"), p95.Round(time.Millisecond))
	} else {
		fmt.Printf("%s unavailable (need at least 20 samples)\n", color.CyanString("p95:"))
	}

	for _, bucket := range recorder.Histogram() {
		fmt.Printf("  %-6s %s %d\n", bucket.Label, strings.Repeat("█", bucket.Count), bucket.Count)
	}
}
