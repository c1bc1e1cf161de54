package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/assistant"
	"github.com/campus-buddy/backend/internal/auth"
	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/chatbot"
	"github.com/campus-buddy/backend/internal/complaints"
	"github.com/campus-buddy/backend/internal/faq"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/internal/storage/sqlite"
	"github.com/campus-buddy/backend/pkg/config"
	appLogger "github.com/campus-buddy/backend/pkg/logger"
)

var (
	formatFlag  string
	outputFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "campusctl",
	Short: "Operator tools for the Campus Buddy backend",
	Long: `campusctl runs the complaint classifier and the chatbot outside the API
server, and exports the complaint table.

Examples:
  campusctl classify "The hostel wifi is down, please help"
  campusctl ask "How do I reset my portal password?"
  campusctl export --format xlsx --output complaints.xlsx
  campusctl hash-password`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "error"
		if verboseFlag {
			level = "debug"
		}
		return appLogger.Init("campusctl", level, "console", "stderr")
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Print priority, sentiment, keywords and suggested category for text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		analyzer := nlp.NewAnalyzer(nlp.Options{
			Polarity:    cfg.NLP.Polarity,
			Linguistic:  cfg.NLP.Linguistic,
			KeywordsTop: cfg.NLP.KeywordsTop,
		})

		result := analyzer.Classify(strings.Join(args, " "), cat.All())
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question the way the chat endpoint does",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		adapter, err := assistant.New(ctx, cfg.Assistant)
		if err != nil {
			return err
		}

		dispatcher := chatbot.NewDispatcher(faq.NewMatcher(cat.Flatten()), adapter, nil)
		out := dispatcher.Respond(ctx, strings.Join(args, " "))

		fmt.Fprintln(cmd.OutOrStdout(), out.Source.Label())
		fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every complaint as CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatFlag != "csv" && formatFlag != "xlsx" {
			return fmt.Errorf("unknown format %q, want csv or xlsx", formatFlag)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		db, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if err := db.InitSchema(ctx); err != nil {
			return err
		}

		service := complaints.NewService(db, nil, nlp.NewAnalyzer(nlp.Options{}), cat)

		out := outputFlag
		if out == "" {
			out = complaints.ExportBaseName + "." + formatFlag
		}
		w, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer w.Close()

		n, err := export(ctx, service, w)
		if err != nil {
			return err
		}

		appLogger.Info("Export finished", zap.String("path", out), zap.Int("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d complaints to %s\n", n, out)
		return nil
	},
}

func export(ctx context.Context, service *complaints.Service, w io.Writer) (int, error) {
	if formatFlag == "xlsx" {
		return service.ExportXLSX(ctx, w)
	}
	return service.ExportCSV(ctx, w)
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for an auth.accounts entry",
	Long: `Print a bcrypt hash for an auth.accounts entry. With no argument the
password is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			password = strings.TrimRight(string(b), "\r\n")
		}
		if password == "" {
			return fmt.Errorf("password is empty")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")

	exportCmd.Flags().StringVarP(&formatFlag, "format", "f", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default campus_buddy_complaints.<format>)")

	rootCmd.AddCommand(classifyCmd, askCmd, exportCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
