package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haskel/gradecast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or validate the effective configuration",
	Long:  `Load the configuration (defaults merged with --config), validate it and print it.`,
	RunE:  runConfig,
}

var validateOnly bool

func init() {
	configCmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate config, don't print")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Load validates any named file.
	cfg, err := loadConfig()
	if err != nil {
		if jsonOut {
			fmt.Fprintf(out, `{"valid":false,"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(out, "Configuration invalid: %v\n", err)
		}
		return err
	}

	if validateOnly {
		if jsonOut {
			fmt.Fprintln(out, `{"valid":true}`)
		} else {
			fmt.Fprintln(out, "Configuration is valid")
		}
		return nil
	}

	cfg = redacted(cfg)

	if jsonOut {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

const secretMask = "****"

// redacted returns a copy of cfg with passwords masked.
func redacted(cfg *config.Config) *config.Config {
	c := *cfg
	if c.Auth.Password != "" {
		c.Auth.Password = secretMask
	}
	if c.Redis.Password != "" {
		c.Redis.Password = secretMask
	}
	if u, err := url.Parse(c.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), secretMask)
			c.Database.URL = u.String()
		}
	}
	return &c
}
