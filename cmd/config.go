package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathstep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		cfg := *cm.Get()
		cfg.LLM.Anthropic.APIKey = mask(cfg.LLM.Anthropic.APIKey)
		cfg.LLM.OpenAI.APIKey = mask(cfg.LLM.OpenAI.APIKey)
		cfg.LLM.Gemini.APIKey = mask(cfg.LLM.Gemini.APIKey)
		cfg.LLM.OpenRouter.APIKey = mask(cfg.LLM.OpenRouter.APIKey)

		w := cmd.OutOrStdout()
		if f := cm.File(); f != "" {
			fmt.Fprintf(w, "# loaded from %s\n", f)
		} else {
			fmt.Fprintln(w, "# no config file found, showing defaults")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

// mask keeps the last four characters of a secret.
func mask(key string) string {
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
