package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/cli"
	"github.com/newtron-network/astopo/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.astopo/settings.json.

Settings provide defaults for flags:
  - input_dir:  Input directory (-i)
  - output_dir: export output directory (-o)
  - redis_addr: publish target (--redis)

Examples:
  astopo settings show
  astopo settings set input_dir ./topology-data
  astopo settings clear`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}

			fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

			t := cli.NewTable("SETTING", "VALUE")
			printSetting := func(name, value string) {
				if value == "" {
					value = yellow("(not set)")
				}
				t.Row(name, value)
			}
			printSetting("input_dir", s.InputDir)
			printSetting("output_dir", s.OutputDir)
			printSetting("redis_addr", s.RedisAddr)
			t.Flush()
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <setting> <value>",
		Short: "Set a setting value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				s = &settings.Settings{}
			}
			if err := s.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := s.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Printf("%s set to: %s\n", args[0], args[1])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load()
			if err != nil {
				s = &settings.Settings{}
			}
			s.Clear()
			if err := s.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Println("Settings cleared")
			return nil
		},
	}

	cmd.AddCommand(showCmd, setCmd, clearCmd)
	return cmd
}
