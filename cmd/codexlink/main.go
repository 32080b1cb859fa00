package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danshapiro/codexlink/internal/config"
	"github.com/danshapiro/codexlink/internal/detect"
	"github.com/danshapiro/codexlink/internal/doctor"
	"github.com/danshapiro/codexlink/internal/iosafe"
	"github.com/danshapiro/codexlink/internal/keychain"
	"github.com/danshapiro/codexlink/internal/logging"
	"github.com/danshapiro/codexlink/internal/prompts"
	"github.com/danshapiro/codexlink/internal/providerspec"
	"github.com/danshapiro/codexlink/internal/state"
	"github.com/danshapiro/codexlink/internal/ui"
	"github.com/danshapiro/codexlink/internal/updates"
)

// version is stamped by the release build (-ldflags "-X main.version=...").
var version = "0.0.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "link":
		link(os.Args[2:])
	case "doctor":
		doctorCmd(os.Args[2:])
	case "clean":
		clean(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  codexlink link [--auto] [--base-url <url>] [--model <id>] [--provider <key>] [--profile <name>]")
	fmt.Fprintln(os.Stderr, "                 [--api-key <key>] [--env-key <VAR>] [--keychain <backend>]")
	fmt.Fprintln(os.Stderr, "                 [--json] [--yaml] [--dry-run] [--no-backup] [--check-updates]")
	fmt.Fprintln(os.Stderr, "                 [--approval-policy <p>] [--sandbox-mode <m>] [--context-window <n>] [--max-output-tokens <n>]")
	fmt.Fprintln(os.Stderr, "                 [--codex-home <dir>] [--timeout <seconds>] [logging flags]")
	fmt.Fprintln(os.Stderr, "  codexlink doctor [--base-url <url>] [--model <id>] [--api-key <key>] [--codex-home <dir>] [--timeout <seconds>]")
	fmt.Fprintln(os.Stderr, "  codexlink clean [--backups-only] [--codex-home <dir>]")
	fmt.Fprintln(os.Stderr, "  codexlink version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "logging flags: --verbose --log-level <level> --log-json --log-file <path> --log-remote <url> --log-remote-sync")
}

type linkOpts struct {
	auto     string // "", "auto", "full"
	baseURL  string
	model    string
	provider string
	profile  string
	apiKey   string
	envKey   string
	backend  string

	emitJSON bool
	emitYAML bool
	dryRun   bool
	noBackup bool
	checkUpd bool

	home    string
	timeout time.Duration

	cfg config.Options
	log logging.Options
}

func link(args []string) {
	opts := linkOpts{timeout: 5 * time.Second, home: iosafe.Home()}

	for i := 0; i < len(args); i++ {
		if consumed, next := parseLogFlag(args, i, &opts.log); consumed {
			i = next
			continue
		}
		switch args[i] {
		case "--auto":
			opts.auto = "auto"
		case "--full-auto":
			opts.auto = "full"
		case "--json":
			opts.emitJSON = true
		case "--yaml":
			opts.emitYAML = true
		case "--dry-run":
			opts.dryRun = true
		case "--no-backup":
			opts.noBackup = true
		case "--check-updates":
			opts.checkUpd = true
		case "--base-url":
			opts.baseURL = flagValue(args, &i)
		case "--model":
			opts.model = flagValue(args, &i)
		case "--provider":
			opts.provider = flagValue(args, &i)
		case "--profile":
			opts.profile = flagValue(args, &i)
		case "--api-key":
			opts.apiKey = flagValue(args, &i)
		case "--env-key":
			opts.envKey = flagValue(args, &i)
		case "--keychain":
			opts.backend = flagValue(args, &i)
		case "--codex-home":
			opts.home = flagValue(args, &i)
		case "--timeout":
			opts.timeout = secondsValue(args, &i)
		case "--approval-policy":
			opts.cfg.ApprovalPolicy = flagValue(args, &i)
		case "--sandbox-mode":
			opts.cfg.SandboxMode = flagValue(args, &i)
		case "--file-opener":
			opts.cfg.FileOpener = flagValue(args, &i)
		case "--reasoning-effort":
			opts.cfg.ReasoningEffort = flagValue(args, &i)
		case "--reasoning-summary":
			opts.cfg.ReasoningSummary = flagValue(args, &i)
		case "--verbosity":
			opts.cfg.Verbosity = flagValue(args, &i)
		case "--context-window":
			opts.cfg.ContextWindow = intValue(args, &i)
		case "--max-output-tokens":
			opts.cfg.MaxOutputTokens = intValue(args, &i)
		case "--azure-api-version":
			opts.cfg.AzureAPIVersion = flagValue(args, &i)
		case "--disable-response-storage":
			opts.cfg.DisableResponseStorage = true
		case "--no-history":
			opts.cfg.NoHistory = true
		case "--history-max-bytes":
			opts.cfg.HistoryMaxBytes = intValue(args, &i)
		case "--web-search":
			opts.cfg.WebSearch = true
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			os.Exit(1)
		}
	}

	logger, _, shutdown, err := logging.Setup(opts.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer shutdown()

	if err := runLink(context.Background(), logger, opts); err != nil {
		ui.Err(err.Error())
		logger.Error("link failed", zap.String("event", "link_failed"), zap.Error(err))
		shutdown()
		os.Exit(1)
	}
}

func runLink(ctx context.Context, logger *zap.Logger, opts linkOpts) error {
	start := time.Now()
	ui.Banner()

	st := state.Load(iosafe.StatePath(opts.home))
	if opts.apiKey != "" {
		st.APIKey = opts.apiKey
	}
	if opts.envKey != "" {
		st.EnvKey = opts.envKey
	}

	session := prompts.NewSession(os.Stdin, os.Stdout)
	prober := detect.NewProber(&http.Client{}, "", st.APIKey, opts.timeout)

	baseURL := strings.TrimSpace(opts.baseURL)
	switch {
	case baseURL != "":
		// explicit flag wins
	case opts.auto != "":
		if winner, ok := detect.Race(ctx, providerspec.CommonBaseURLs(), prober.Probe); ok {
			baseURL = winner
			ui.OK("detected " + baseURL)
		} else if opts.auto == "full" {
			return fmt.Errorf("no server answered on the common ports")
		} else {
			baseURL = session.PickBaseURL(ctx, prober.Probe, false)
		}
	default:
		baseURL = session.PickBaseURL(ctx, prober.Probe, false)
	}
	st.BaseURL = strings.TrimRight(baseURL, "/")
	logging.Event(logger, "base_url_resolved", zap.String("path", st.BaseURL), logging.Timed(start))

	provider := opts.provider
	if provider == "" {
		provider = providerspec.InferProvider(st.BaseURL)
	}
	st.Provider = providerspec.CanonicalProviderKey(provider)
	if opts.profile != "" {
		st.Profile = opts.profile
	}
	if st.EnvKey == "" {
		if spec, ok := providerspec.Builtin(st.Provider); ok {
			st.EnvKey = spec.EnvKey
		}
	}

	model := opts.model
	if model == "" {
		if opts.auto != "" {
			models, err := detect.ListModels(ctx, prober.Probe, st.BaseURL)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				return fmt.Errorf("%s reports no models", st.BaseURL)
			}
			model = models[0]
		} else {
			picked, err := session.PickModel(ctx, prober.Probe, st.BaseURL, st.Model)
			if err != nil {
				return err
			}
			model = picked
		}
	}
	st.Model = model
	logging.Event(logger, "model_selected",
		zap.String("provider", st.Provider), zap.String("model", st.Model))

	if opts.cfg.ContextWindow == 0 {
		if ctxWin := detect.AutoContextWindow(ctx, prober.Probe, st.BaseURL, st.Model); ctxWin > 0 {
			opts.cfg.ContextWindow = ctxWin
			ui.Info(fmt.Sprintf("context window: %d", ctxWin))
		}
	}

	if opts.backend != "" && st.APIKey != "" {
		backend, err := keychain.Resolve(opts.backend)
		if err == nil && backend != "" {
			err = keychain.Store(backend, st.EnvKey, st.APIKey)
		}
		if err != nil {
			ui.Warn("keychain store failed: " + err.Error())
		} else if backend != "" {
			ui.OK("API key stored in " + backend + " keychain")
		}
	}

	opts.cfg.Model = model
	syncPreferences(&opts.cfg, &st)
	cfg := config.Build(st, opts.cfg)
	targets := []config.Target{{Path: iosafe.ConfigTOML(opts.home), Render: config.ToTOML}}
	if opts.emitJSON {
		targets = append(targets, config.Target{Path: iosafe.ConfigJSON(opts.home), Render: config.ToJSON})
	}
	if opts.emitYAML {
		targets = append(targets, config.Target{Path: iosafe.ConfigYAML(opts.home), Render: config.ToYAML})
	}

	results, err := config.WriteOutputs(logger, cfg, targets, config.WriteOpts{
		DryRun:   opts.dryRun,
		NoBackup: opts.noBackup,
	})
	if err != nil {
		return err
	}
	if opts.dryRun {
		for _, tgt := range targets {
			text, err := tgt.Render(cfg)
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n%s\n", tgt.Path, text)
		}
	} else {
		for _, res := range results {
			msg := "wrote " + res.Path
			if res.Backup != "" {
				msg += " (backup: " + res.Backup + ")"
			}
			ui.OK(msg)
		}
		if err := st.Save(iosafe.StatePath(opts.home)); err != nil {
			return err
		}
	}

	if opts.checkUpd {
		reportUpdates(ctx, opts.home)
	}

	if st.EnvKey != "" {
		ui.Info(fmt.Sprintf("export %s=<your key> before launching codex", st.EnvKey))
	}
	ui.Info("run: codex --profile " + cfg.Profile)
	logging.Event(logger, "link_complete", zap.String("provider", st.Provider), logging.Timed(start))
	return nil
}

// syncPreferences fills unset CLI options from the saved state and writes
// the effective choices back so the next run remembers them.
func syncPreferences(cfg *config.Options, st *state.State) {
	if cfg.ApprovalPolicy == "" {
		cfg.ApprovalPolicy = st.ApprovalPolicy
	}
	if cfg.SandboxMode == "" {
		cfg.SandboxMode = st.SandboxMode
	}
	if cfg.ReasoningEffort == "" {
		cfg.ReasoningEffort = st.ReasoningEffort
	}
	if cfg.ReasoningSummary == "" {
		cfg.ReasoningSummary = st.ReasoningSummary
	}
	if cfg.Verbosity == "" {
		cfg.Verbosity = st.Verbosity
	}
	if !cfg.NoHistory {
		cfg.NoHistory = st.NoHistory
	}
	if cfg.HistoryMaxBytes == 0 {
		cfg.HistoryMaxBytes = st.HistoryMaxBytes
	}
	st.ApprovalPolicy = cfg.ApprovalPolicy
	st.SandboxMode = cfg.SandboxMode
	st.ReasoningEffort = cfg.ReasoningEffort
	st.ReasoningSummary = cfg.ReasoningSummary
	st.Verbosity = cfg.Verbosity
	st.NoHistory = cfg.NoHistory
	st.HistoryMaxBytes = cfg.HistoryMaxBytes
}

func reportUpdates(ctx context.Context, home string) {
	res := updates.NewChecker().Check(ctx, home, version, false)
	if len(res.Newer) == 0 {
		ui.OK("codexlink " + version + " is up to date")
		return
	}
	for _, s := range res.Newer {
		ui.Warn(fmt.Sprintf("newer version %s available via %s (%s)", s.Version, s.Name, s.URL))
	}
}

func doctorCmd(args []string) {
	opts := doctor.Options{Timeout: 5 * time.Second}
	home := iosafe.Home()
	var logOpts logging.Options

	for i := 0; i < len(args); i++ {
		if consumed, next := parseLogFlag(args, i, &logOpts); consumed {
			i = next
			continue
		}
		switch args[i] {
		case "--base-url":
			opts.BaseURL = flagValue(args, &i)
		case "--model":
			opts.Model = flagValue(args, &i)
		case "--api-key":
			opts.APIKey = flagValue(args, &i)
		case "--codex-home":
			home = flagValue(args, &i)
		case "--timeout":
			opts.Timeout = secondsValue(args, &i)
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			os.Exit(1)
		}
	}
	opts.Home = home
	opts.Candidates = providerspec.CommonBaseURLs()

	logger, _, shutdown, err := logging.Setup(logOpts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer shutdown()

	start := time.Now()
	st := state.Load(iosafe.StatePath(home))
	report := doctor.Run(context.Background(), st, opts)

	for _, c := range report.Checks {
		line := c.Name
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		switch c.Status {
		case "pass":
			ui.OK(line)
		case "warn":
			ui.Warn(line)
		default:
			ui.Err(line)
		}
	}
	fmt.Printf("pass=%d warn=%d fail=%d\n", report.Summary.Pass, report.Summary.Warn, report.Summary.Fail)

	if path, err := doctor.WriteReport(home, report); err == nil {
		ui.Info("report written to " + path)
	} else {
		ui.Warn("could not write report: " + err.Error())
	}
	logging.Event(logger, "doctor_complete",
		zap.Int("failed", report.Summary.Fail), logging.Timed(start))

	if report.Failed() {
		shutdown()
		os.Exit(1)
	}
}

func clean(args []string) {
	home := iosafe.Home()
	backupsOnly := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--backups-only":
			backupsOnly = true
		case "--codex-home":
			home = flagValue(args, &i)
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			os.Exit(1)
		}
	}

	deleted, err := iosafe.DeleteAllBackups(home)
	if err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
	ui.OK(fmt.Sprintf("removed %d backup file(s)", deleted))

	if !backupsOnly {
		for _, p := range iosafe.RemoveConfigs(home) {
			ui.OK("removed " + p)
		}
	}
}

// parseLogFlag consumes one logging flag at args[i] if present, returning the
// new index. Shared by the subcommands so the flags behave identically.
func parseLogFlag(args []string, i int, opts *logging.Options) (bool, int) {
	switch args[i] {
	case "--verbose", "-v":
		opts.Verbose = true
	case "--log-json":
		opts.JSON = true
	case "--log-remote-sync":
		opts.RemoteSync = true
	case "--log-level":
		opts.Level = flagValue(args, &i)
	case "--log-file":
		opts.FilePath = flagValue(args, &i)
	case "--log-remote":
		opts.RemoteURL = flagValue(args, &i)
	default:
		return false, i
	}
	return true, i
}

func flagValue(args []string, i *int) string {
	flag := args[*i]
	*i++
	if *i >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
		os.Exit(1)
	}
	return args[*i]
}

func intValue(args []string, i *int) int {
	flag := args[*i]
	raw := flagValue(args, i)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		fmt.Fprintf(os.Stderr, "%s wants a non-negative integer, got %q\n", flag, raw)
		os.Exit(1)
	}
	return n
}

func secondsValue(args []string, i *int) time.Duration {
	raw := flagValue(args, i)
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		fmt.Fprintf(os.Stderr, "--timeout wants a positive integer of seconds, got %q\n", raw)
		os.Exit(1)
	}
	return time.Duration(secs) * time.Second
}
