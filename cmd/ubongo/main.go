package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mxsafiri/ubongo.os/internal/agent"
	"github.com/mxsafiri/ubongo.os/internal/command"
	"github.com/mxsafiri/ubongo.os/internal/executor"
	"github.com/mxsafiri/ubongo.os/internal/gateway"
	"github.com/mxsafiri/ubongo.os/internal/governance"
	"github.com/mxsafiri/ubongo.os/internal/intent"
	"github.com/mxsafiri/ubongo.os/internal/observability"
	"github.com/mxsafiri/ubongo.os/internal/session"
	"github.com/mxsafiri/ubongo.os/internal/template"
	"github.com/mxsafiri/ubongo.os/internal/tools"
	"github.com/mxsafiri/ubongo.os/pkg/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if code, ok := exitCodes[err]; ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Sentinel errors carrying the process exit code through cobra.
var (
	errRunFailed  = errors.New("run failed")
	errRunPartial = errors.New("run partially completed")
)

var exitCodes = map[error]int{
	errRunFailed:  1,
	errRunPartial: 2,
}

func newRootCmd() *cobra.Command {
	var configPath string
	var sessionID string
	var templatesPath string

	root := &cobra.Command{
		Use:   "ubongo [utterance]",
		Short: "Natural language console for your computer",
		Long: `Ubongo turns plain English into actions: create and move folders,
organize downloads, check disk space, open apps, browse the web.

With no arguments it starts an interactive session; with an utterance it
runs once and exits.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, sessionID, templatesPath, strings.Join(args, " "))
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the config file")
	root.Flags().StringVar(&sessionID, "session", "cli", "session identifier for context carry-forward")
	root.Flags().StringVar(&templatesPath, "templates", "", "load task templates from a YAML file instead of the built-ins")

	root.AddCommand(newTemplatesCmd(), newVersionCmd())
	return root
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in multi-step templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := template.NewLibrary()
			if err != nil {
				return err
			}
			for _, line := range lib.List() {
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ubongo", version)
		},
	}
}

func run(ctx context.Context, configPath, sessionID, templatesPath, utterance string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.SetOutput(observability.NewTermWriter())
	logger := observability.NewLogger(filepath.Join(filepath.Dir(cfg.Memory.Path), "logs"))
	logger.SetOutput(observability.NewTermWriter())

	// Session persistence is best effort: without it follow-ups still
	// work within the process, they just don't survive a restart.
	var persist session.Persistence
	_ = os.MkdirAll(filepath.Dir(cfg.Memory.Path), 0o755)
	if store, err := session.NewSQLiteStore(cfg.Memory.Path); err != nil {
		log.Printf("Warning: session persistence disabled: %v", err)
	} else {
		persist = store
		defer store.Close()
	}
	sessions := session.NewStore(persist, cfg.Resolver.HistoryDepth)

	registry := tools.NewRegistry()
	registry.Register(tools.NewFilesystemTool(cfg.App.Workspace))
	registry.Register(tools.NewAppTool())
	registry.Register(tools.NewSystemTool())
	registry.Register(tools.NewShellTool())
	registry.Register(tools.NewWebTool())
	registry.Register(tools.NewScreenTool(cfg.App.Workspace))
	browser := tools.NewBrowserTool()
	registry.Register(browser)
	defer browser.Close()

	lib, err := loadTemplates(templatesPath)
	if err != nil {
		return err
	}
	registry.Register(tools.NewCapabilityTool(registry, lib.List()))

	var planner agent.Planner
	if model := buildModel(cfg); model != nil {
		p := agent.NewLLMPlanner(model, registry, logger)
		p.Timeout = time.Duration(cfg.Resolver.LLMTimeoutSeconds) * time.Second
		planner = p
	}

	resolver := agent.NewResolver(intent.NewMatcher(), lib, sessions, planner, logger)
	resolver.Threshold = cfg.Resolver.ConfidenceThreshold

	src := newLineSource(os.Stdin)
	exec := executor.New(registry, governance.NewSafetyPolicy(), &stdinConfirmer{src: src, out: os.Stdout}, logger)
	exec.ConfirmTimeout = time.Duration(cfg.Executor.ConfirmTimeoutSeconds) * time.Second

	assistant := agent.NewAssistant(resolver, exec, sessions, logger)

	go evictLoop(ctx, sessions, logger)
	startTelegram(ctx, cfg, resolver, registry, sessions, logger)

	if utterance != "" {
		return runOnce(ctx, assistant, sessionID, utterance)
	}
	if !observability.Interactive() {
		return runPiped(ctx, assistant, sessionID, src)
	}
	return runREPL(ctx, assistant, cfg.App.Name, sessionID, src)
}

func loadTemplates(path string) (*template.Library, error) {
	if path != "" {
		return template.NewLibraryFromFile(path)
	}
	return template.NewLibrary()
}

// buildModel wires the first enabled provider, or nil for offline mode.
func buildModel(cfg *config.Config) llms.Model {
	name, p, ok := cfg.DefaultProvider()
	if !ok {
		return nil
	}

	switch name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			log.Printf("Warning: provider %s unavailable: %v", name, err)
			return nil
		}
		return model
	default:
		log.Printf("Warning: provider %s is not supported", name)
		return nil
	}
}

// startTelegram runs the bot alongside the CLI when configured. The bot
// gets its own executor with every confirmation declined, since a chat
// cannot answer the synchronous prompt.
func startTelegram(ctx context.Context, cfg *config.Config, resolver *agent.Resolver, registry *tools.Registry, sessions *session.Store, logger *observability.Logger) {
	tgCfg, ok := cfg.TelegramConfig()
	if !ok {
		return
	}

	exec := executor.New(registry, governance.NewSafetyPolicy(), executor.DeclineAll, logger)
	assistant := agent.NewAssistant(resolver, exec, sessions, logger)

	tg, err := gateway.NewTelegramGateway(tgCfg.Token, assistant)
	if err != nil {
		log.Printf("Warning: telegram gateway failed to start: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		_ = tg.Stop()
	}()
	go func() {
		if err := tg.Start(); err != nil {
			log.Printf("telegram gateway stopped: %v", err)
		}
	}()
}

func evictLoop(ctx context.Context, sessions *session.Store, logger *observability.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.EvictIdle(30 * time.Minute); n > 0 && logger != nil {
				logger.LogSession("", "evicted_idle", n)
			}
		}
	}
}

func runOnce(ctx context.Context, assistant *agent.Assistant, sessionID, utterance string) error {
	report, err := assistant.Handle(ctx, sessionID, utterance)
	fmt.Println(gateway.FormatReply(report, err))
	return outcome(report, err)
}

// runPiped reads utterances line by line from a non-terminal stdin. The
// first failing line stops the run.
func runPiped(ctx context.Context, assistant *agent.Assistant, sessionID string, src *lineSource) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-src.lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			report, err := assistant.Handle(ctx, sessionID, line)
			fmt.Println(gateway.FormatReply(report, err))
			if oerr := outcome(report, err); oerr != nil {
				return oerr
			}
		}
	}
}

func runREPL(ctx context.Context, assistant *agent.Assistant, appName, sessionID string, src *lineSource) error {
	observability.PrintBanner(appName)
	fmt.Println(`Type what you want done ("create a folder called Projects on my desktop").`)
	fmt.Println(`"reset" clears the session context; "exit" quits.`)

	for {
		fmt.Print("ubongo> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case l, ok := <-src.lines:
			if !ok {
				fmt.Println()
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			assistant.Sessions.End(sessionID)
			if assistant.Logger != nil {
				assistant.Logger.LogSession(sessionID, "ended", "reset by user")
			}
			fmt.Println("Session context cleared.")
			continue
		}

		report, err := assistant.Handle(ctx, sessionID, line)
		fmt.Println(gateway.FormatReply(report, err))
	}
}

// outcome maps the report to the process exit code: 0 completed, 1 failed
// or unresolved, 2 partially completed.
func outcome(report *command.Report, err error) error {
	if err != nil {
		return errRunFailed
	}
	switch report.State {
	case command.StateCompleted:
		return nil
	case command.StatePartiallyCompleted:
		return errRunPartial
	default:
		return errRunFailed
	}
}

// lineSource owns stdin. A single goroutine reads lines and every
// consumer — the prompt loop and confirmation prompts — receives from the
// same channel, so two readers never interleave on the buffered reader.
type lineSource struct {
	lines chan string
}

func newLineSource(r io.Reader) *lineSource {
	ls := &lineSource{lines: make(chan string)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ls.lines <- sc.Text()
		}
		close(ls.lines)
	}()
	return ls
}

// stdinConfirmer asks on the terminal and treats silence past the
// deadline as a decline. An answer typed after the deadline is not
// consumed here: it arrives on the shared line channel and becomes the
// next input line, where an orphaned "y" resolves to nothing rather than
// confirming a prompt that already expired.
type stdinConfirmer struct {
	src *lineSource
	out io.Writer
}

func (c *stdinConfirmer) RequestConfirmation(ctx context.Context, prompt string) (executor.Decision, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return executor.TimedOut, nil
	case line, ok := <-c.src.lines:
		if !ok {
			return executor.Declined, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return executor.Confirmed, nil
		}
		return executor.Declined, nil
	}
}
