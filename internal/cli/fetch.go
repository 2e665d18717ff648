package cli

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/gemtofu/internal/gemini"
)

func newFetchCmd() *cobra.Command {
	var (
		certFile string
		keyFile  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a gemini:// URL, optionally presenting a client certificate",
		Example: `  gemtofu fetch gemini://localhost/
  gemtofu fetch --client-cert me.pem --client-key me.key gemini://localhost/game/new`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &gemini.Client{Timeout: timeout}

			if certFile != "" || keyFile != "" {
				if certFile == "" || keyFile == "" {
					return errors.New("--client-cert and --client-key must be given together")
				}
				cert, err := tls.LoadX509KeyPair(certFile, keyFile)
				if err != nil {
					return fmt.Errorf("failed to load client certificate: %w", err)
				}
				c.Certificate = &cert
			}

			resp, err := c.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out.Print(FetchResultFrom(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&certFile, "client-cert", "", "PEM client certificate to present")
	cmd.Flags().StringVar(&keyFile, "client-key", "", "PEM private key for --client-cert")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}
