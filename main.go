package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sketch-editor/tools/config"
	"sketch-editor/tools/llm"
	"sketch-editor/tools/logger"
)

var (
	configPath string
	inputPath  string
	outputName string
	overrides  StudioConfig

	rootCmd = &cobra.Command{
		Use:   "sketch-editor",
		Short: "Edit 2D drawings through validated assistant commands",
		Long: `sketch-editor applies drawing commands, written by a person or an
assistant, to a document of shapes with undo and redo.`,
		SilenceUsage: true,
	}
	checkCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "Validate command text from a file or stdin without applying it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	applyCmd = &cobra.Command{
		Use:   "apply [file...]",
		Short: "Apply command files in order and save the document",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApply,
	}
	askCmd = &cobra.Command{
		Use:   "ask [instruction]",
		Short: "Have the assistant carry out an instruction and save the document",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Edit interactively: instructions, :undo, :redo, :show, :save, :load, :raw",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&overrides.OutputDir, "output", "", "Output directory for saved documents")
	pf.StringVar(&overrides.Provider, "provider", "", "Assistant provider (anthropic, openai)")
	pf.StringVar(&overrides.Model, "model", "", "Model to use")
	pf.StringVar(&overrides.BaseURL, "base-url", "", "Provider base URL, e.g. a local OpenAI-compatible server")
	pf.StringVar(&overrides.AnthropicKey, "key", "", "API key (or set ANTHROPIC_API_KEY / OPENAI_API_KEY)")
	pf.IntVar(&overrides.HistoryLimit, "history", 0, "Undo history size")
	pf.IntVar(&overrides.MaxRetries, "retries", 0, "Assistant retries after a rejected reply")
	pf.BoolVar(&overrides.StrictReferences, "strict", false, "Reject mutate commands naming unknown ids")
	pf.BoolVar(&overrides.RevalidatePatches, "revalidate", false, "Reject patches that break the shape schema")
	pf.StringVar(&overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVarP(&overrides.VerboseLogging, "verbose", "v", false, "Verbose logging, same as --log-level debug")

	for _, c := range []*cobra.Command{applyCmd, askCmd, sessionCmd} {
		c.Flags().StringVar(&inputPath, "in", "", "Document file to start from")
	}
	for _, c := range []*cobra.Command{applyCmd, askCmd} {
		c.Flags().StringVarP(&outputName, "out", "o", "drawing.json", "File name to save under the output directory")
	}

	rootCmd.AddCommand(checkCmd, applyCmd, askCmd, sessionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and the
// flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (StudioConfig, error) {
	cfg := DefaultConfig()
	if err := config.Load(configPath, &cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("output", func() { cfg.OutputDir = overrides.OutputDir })
	set("provider", func() { cfg.Provider = overrides.Provider })
	set("model", func() { cfg.Model = overrides.Model })
	set("base-url", func() { cfg.BaseURL = overrides.BaseURL })
	set("key", func() {
		cfg.AnthropicKey = overrides.AnthropicKey
		cfg.OpenAIKey = overrides.AnthropicKey
	})
	set("history", func() { cfg.HistoryLimit = overrides.HistoryLimit })
	set("retries", func() { cfg.MaxRetries = overrides.MaxRetries })
	set("strict", func() { cfg.StrictReferences = overrides.StrictReferences })
	set("revalidate", func() { cfg.RevalidatePatches = overrides.RevalidatePatches })
	set("log-level", func() { cfg.LogLevel = overrides.LogLevel })
	set("verbose", func() { cfg.VerboseLogging = overrides.VerboseLogging })
	return cfg, nil
}

func newStudio(cmd *cobra.Command, withAssistant bool) (*Studio, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logLevel, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), logLevel, "")

	studio, err := NewStudio(cfg, log)
	if err != nil {
		return nil, err
	}

	if withAssistant {
		client, err := llm.NewClient(cfg.LLMConfig())
		if err != nil {
			return nil, fmt.Errorf("assistant: %w", err)
		}
		studio.WithAssistant(client, ProtocolReference)
	}

	if inputPath != "" {
		n, err := studio.Load(cmd.Context(), inputPath)
		if err != nil {
			return nil, err
		}
		log.Info("document loaded", "path", inputPath, "shapes", n)
	}
	return studio, nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	studio, err := newStudio(cmd, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	c, err := studio.Check(raw)
	if err != nil {
		data, jerr := rejectionJSON(err)
		if jerr != nil {
			return jerr
		}
		fmt.Fprintln(out, string(data))
		return err
	}
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	studio, err := newStudio(cmd, false)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range args {
		raw, err := readInput(cmd, []string{path})
		if err != nil {
			return err
		}
		res, err := studio.ApplyText(cmd.Context(), raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, describeError(err))
		}
		fmt.Fprintf(out, "%s: ", path)
		printResult(out, res)
	}
	return save(cmd, studio)
}

func runAsk(cmd *cobra.Command, args []string) error {
	studio, err := newStudio(cmd, true)
	if err != nil {
		return err
	}
	res, err := studio.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return describeError(err)
	}
	printResult(cmd.OutOrStdout(), res)
	return save(cmd, studio)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Without credentials the session still accepts raw command text.
	withAssistant := cfg.LLMConfig().APIKey != "" || cfg.BaseURL != ""
	studio, err := newStudio(cmd, withAssistant)
	if err != nil {
		return err
	}
	return studio.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

func save(cmd *cobra.Command, studio *Studio) error {
	res, err := studio.Save(outputName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d shapes to %s\n", res.Shapes, res.Path)
	return nil
}
