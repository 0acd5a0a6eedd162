package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sendtg/sendtg/internal/config"
	"github.com/sendtg/sendtg/internal/security"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively write the sendtg configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg.Defaults()

			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("API URL").
					Description("Bot API base, token is appended directly").
					Value(&cfg.APIURL).
					Validate(huh.ValidateNotEmpty()),
				huh.NewInput().
					Title("Bot token").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.BotToken).
					Validate(huh.ValidateNotEmpty()),
				huh.NewInput().
					Title("Chat ID").
					Description("Numeric ID or @channelname").
					Value(&cfg.ChatID).
					Validate(huh.ValidateNotEmpty()),
			))
			if err := form.Run(); err != nil {
				return err
			}

			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Printf("Configuration saved to %s\n", path)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current configuration with the token redacted",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Printf("Configuration file: %s\n", path)

			cfg, found, err := config.Load(path)
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("No configuration found. Run `sendtg setup` to create one.")
				return nil
			}

			fmt.Printf("API URL   : %s\n", orNotSet(cfg.APIURL))
			token := "<not set>"
			if cfg.BotToken != "" {
				token = security.DisplayToken(cfg.BotToken)
			}
			fmt.Printf("Bot Token : %s\n", token)
			fmt.Printf("Chat ID   : %s\n", orNotSet(cfg.ChatID))
			return nil
		},
	})
	return cmd
}

func orNotSet(value string) string {
	if value == "" {
		return "<not set>"
	}
	return value
}
