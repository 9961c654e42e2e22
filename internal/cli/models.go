package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/providers"
	"github.com/gavelhq/gavel/internal/tokens"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect providers and models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known models and their context windows",
	Run: func(cmd *cobra.Command, args []string) {
		byProvider := make(map[string][]string)
		for _, m := range tokens.KnownModels() {
			p := providers.Resolve(m).String()
			byProvider[p] = append(byProvider[p], m)
		}

		for _, p := range []string{"openai", "google"} {
			models := byProvider[p]
			sort.Strings(models)
			fmt.Fprintf(os.Stdout, "%s:\n", p)
			for _, m := range models {
				fmt.Fprintf(os.Stdout, "  - %-24s %d tokens\n", m, tokens.ContextWindow(m))
			}
			fmt.Fprintln(os.Stdout)
		}

		fmt.Fprintf(os.Stdout, "Models not listed fall back to a %d-token context window.\n", tokens.DefaultContextWindow)
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials with a live request",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		p := providers.Resolve(cfg.Model)
		fmt.Fprintf(os.Stdout, "Checking %s (%s)...\n", p, cfg.Model)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := providers.New(ctx, p, cfg.Model, cfg.APIKey(p))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		_, err = client.Complete(ctx, providers.Request{
			System:    "Respond with exactly: ok",
			User:      "ping",
			MaxTokens: 10,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", p)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd, modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check (defaults to the configured model)")
}
