// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the configuration",
	Long: `Show or edit ~/.lexora/config.toml.

"show" and "get" print the effective values, after .env files and
LEXORA_<SECTION>_<KEY> environment variables are applied. "set" edits the
file only.

Examples:
  lexora config show
  lexora config get api.base_url
  lexora config set api.base_url http://10.0.0.5:8000
  lexora config set query.n_chunks 8`,
	Annotations: map[string]string{setupKey: setupConfig},
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{setupKey: setupNone},
	RunE:        runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with default values",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{setupKey: setupNone},
	RunE:        runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one effective value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Change one value in the config file",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{setupKey: setupNone},
	RunE:        runConfigSet,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// configTarget is the file config init and set write to.
func configTarget() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.ConfigPathTOML()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if jsonOutput {
		return printJSON(cmd, cfg)
	}
	fmt.Fprint(cmd.OutOrStdout(), cfg.String())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := configTarget()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := configTarget()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return NewValidationError("config file", path, "already exists, use --force to overwrite")
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess("Wrote "+path))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	val, err := cfg.Get(args[0])
	if err != nil {
		return NewValidationError("key", args[0], "unknown, valid keys: "+strings.Join(config.Keys(), ", "))
	}
	if jsonOutput {
		return printJSON(cmd, map[string]any{args[0]: val})
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := configTarget()
	if err != nil {
		return err
	}

	// Only file values are written back, never environment overrides.
	fileCfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			err = config.LoadJSON(fileCfg, path)
		} else {
			err = config.LoadTOML(fileCfg, path)
		}
		if err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if _, err := fileCfg.Get(args[0]); err != nil {
		return NewValidationError("key", args[0], "unknown, valid keys: "+strings.Join(config.Keys(), ", "))
	}
	if err := fileCfg.Set(args[0], args[1]); err != nil {
		return NewValidationError(args[0], args[1], err.Error())
	}
	if err := fileCfg.Validate(); err != nil {
		return err
	}

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = config.SaveJSON(fileCfg, path)
	} else {
		err = config.SaveTOML(fileCfg, path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(fmt.Sprintf("%s = %s", args[0], args[1])))
	return nil
}
