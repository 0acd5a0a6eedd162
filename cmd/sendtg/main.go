// Package main is the entry point for the sendtg CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sendtg/sendtg/internal/config"
	"github.com/sendtg/sendtg/internal/media"
	"github.com/sendtg/sendtg/internal/security"
	"github.com/sendtg/sendtg/internal/telegram"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type runFlags struct {
	apiURL     string
	botToken   string
	chatID     string
	media      []string
	caption    string
	spoiler    bool
	noGroup    bool
	asFile     bool
	silent     bool
	check      bool
	verbose    bool
	buttons    []string
	buttonText string
	buttonURL  string
	threadID   int64
}

func rootCmd() *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:          "sendtg [message]",
		Short:        "Send text or media through the Telegram Bot API",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := ""
			if len(args) == 1 {
				message = args[0]
			}
			return run(cmd, flags, message)
		},
	}

	fs := root.Flags()
	fs.StringVarP(&flags.apiURL, "api-url", "a", "", "Override the Telegram API base URL")
	fs.StringVarP(&flags.botToken, "bot-token", "t", "", "Override the bot token")
	fs.StringVarP(&flags.chatID, "chat-id", "c", "", "Override the target chat ID")
	fs.StringArrayVarP(&flags.media, "media", "m", nil, "Attach a file to send as media (repeatable)")
	fs.StringVarP(&flags.caption, "caption", "C", "", "Caption for the first media item")
	fs.BoolVar(&flags.spoiler, "spoiler", false, "Flag photos and videos as spoilers")
	fs.BoolVar(&flags.noGroup, "no-group", false, "Send media one by one instead of an album")
	fs.BoolVarP(&flags.asFile, "as-file", "F", false, "Send media as documents")
	fs.BoolVar(&flags.silent, "silent", false, "Disable notifications for the message")
	fs.BoolVar(&flags.check, "check", false, "Check connectivity and credentials only")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	fs.StringArrayVar(&flags.buttons, "button", nil, `Inline link button as "Label|URL", one row each (repeatable)`)
	fs.StringVar(&flags.buttonText, "button-text", "", "Inline button label (deprecated, use --button)")
	fs.StringVar(&flags.buttonURL, "button-url", "", "URL the inline button opens (deprecated, use --button)")
	fs.Int64Var(&flags.threadID, "thread-id", 0, "Target message thread ID for forum topics")

	root.AddCommand(setupCmd(), configCmd(), versionCmd())
	return root
}

func run(cmd *cobra.Command, flags *runFlags, message string) error {
	cfg, fromConfig, err := mergedConfig(flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.BotToken, flags.verbose)
	ctx := cmd.Context()

	markup, err := telegram.ParseButtonLayout(flags.buttons, flags.buttonText, flags.buttonURL)
	if err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := telegram.NewClient(cfg.APIURL, cfg.BotToken)
	dispatcher := telegram.NewDispatcher(client, cfg.ChatID, flags.threadID,
		logger, newProgressRenderer(logger), rnd)

	if len(flags.media) == 0 && message == "" {
		if flags.check {
			return dispatcher.Check(ctx)
		}
		return errors.New("no message or media provided, use -h/--help for help")
	}

	logCredentialSource(logger, cfg, fromConfig)

	if len(flags.media) > 0 {
		prober := &media.ExecProber{Logger: logger, Rand: rnd}
		items := media.BuildItems(ctx, flags.media, media.BuildOptions{
			Caption: flags.caption,
			AsFile:  flags.asFile,
			Spoiler: flags.spoiler,
		}, prober, logger)
		if len(items) == 0 {
			// Every path was dropped; the errors are already reported.
			return nil
		}

		plan := media.Plan(items, flags.noGroup)
		outcomes := dispatcher.Dispatch(ctx, plan, markup, flags.caption, flags.silent)

		failed := 0
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			logger.Info("run finished with failed steps", "steps", len(outcomes), "failed", failed)
		}
		// Partial failures are reported above but do not change the exit
		// code; only input errors abort the run.
		return nil
	}

	return dispatcher.SendText(ctx, message, flags.silent, markup)
}

// mergedConfig loads the config file and overlays CLI flags. fromConfig
// reports whether both credentials came from the file rather than flags.
func mergedConfig(flags *runFlags) (*config.Config, bool, error) {
	path, err := config.Path()
	if err != nil {
		return nil, false, err
	}
	cfg, found, err := config.Load(path)
	if err != nil {
		return nil, false, err
	}
	if !found && (flags.botToken == "" || flags.chatID == "") {
		return nil, false, fmt.Errorf("configuration not found at %s, run `sendtg setup` first", path)
	}

	fromConfig := flags.botToken == "" && flags.chatID == ""
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.botToken != "" {
		cfg.BotToken = flags.botToken
	}
	if flags.chatID != "" {
		cfg.ChatID = flags.chatID
	}
	cfg.Defaults()
	return cfg, fromConfig, nil
}

// newLogger builds the process-wide logger: a text handler on stdout wrapped
// so the bot token never appears in any log line.
func newLogger(token string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	inner := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(security.NewRedactingHandler(inner, security.NewRedactor(token)))
}

func logCredentialSource(logger *slog.Logger, cfg *config.Config, fromConfig bool) {
	if !fromConfig {
		return
	}
	logger.Info("using credentials from config",
		"api_url", cfg.APIURL,
		"bot_token", security.DisplayToken(cfg.BotToken),
		"chat_id", cfg.ChatID,
	)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("sendtg %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
