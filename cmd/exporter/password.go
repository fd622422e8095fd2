package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobalert-exporter/internal/secrets"
)

func newPasswordCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the IMAP password in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the IMAP password (read from stdin) for the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Email.Username == "" {
				return errors.New("email.username is empty in " + a.cfgPath)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "IMAP password for %s: ", a.cfg.Email.Username)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			pw := strings.TrimRight(line, "\r\n")

			account := secrets.IMAPKeyringAccount(a.cfg)
			if err := secrets.SetIMAPPassword(account, pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password stored for %s\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored IMAP password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			account := secrets.IMAPKeyringAccount(a.cfg)
			if err := secrets.DeleteIMAPPassword(account); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password removed for %s\n", account)
			return nil
		},
	})

	return cmd
}
