package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"growth_hub/internal/assistant"
	"growth_hub/internal/gateway"
)

// generate --type t --data '{...}': stream a generation to stdout.
func generateCmd(opts *options) *cobra.Command {
	var kind, data, dataFile string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Stream an AI generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return errors.New("no token: run growthctl login or set GROWTH_TOKEN")
			}
			raw := []byte(data)
			if dataFile != "" {
				b, err := os.ReadFile(dataFile)
				if err != nil {
					return err
				}
				raw = b
			}
			payload := map[string]any{}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &payload); err != nil {
					return fmt.Errorf("--data must be a JSON object: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			client := gateway.NewClient(opts.http, opts.endpoint("/ai/generate"), opts.token)
			err := client.Stream(cmd.Context(), gateway.GenerateRequest{Type: kind, Data: payload},
				func(text string) { fmt.Fprint(out, text) },
				func() { fmt.Fprintln(out) })

			var gerr *gateway.Error
			if errors.As(err, &gerr) {
				switch {
				case gerr.IsUnauthorized():
					return fmt.Errorf("token rejected, log in again: %w", err)
				case gerr.IsQuotaExhausted():
					return fmt.Errorf("AI quota exhausted: %w", err)
				case gerr.IsRateLimited():
					return fmt.Errorf("slow down: %w", err)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "", "generation type (see growthctl types)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "input fields as a JSON object")
	cmd.Flags().StringVarP(&dataFile, "data-file", "f", "", "read input fields from a JSON file")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	return cmd
}

// types: list the generation types the server accepts.
func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List generation types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range assistant.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	}
}
