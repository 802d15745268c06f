package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"Soundlink/pkg/async"
	"Soundlink/pkg/license"
)

func newLicenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Issue, inspect and revoke credentials",
	}
	cmd.AddCommand(
		newLicenseIssueCmd(a),
		newLicenseVerifyCmd(a),
		newLicenseRevokeCmd(a),
		newLicenseServeCmd(a),
	)
	return cmd
}

func newLicenseIssueCmd(a *app) *cobra.Command {
	var (
		appKey     string
		maxPayload int
		save       bool
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a credential with the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.cfg.Manager()
			if err != nil {
				return err
			}
			if appKey == "" {
				appKey = a.cfg.App.Key
			}
			cred, err := m.Issue(appKey, maxPayload)
			if err != nil {
				return err
			}
			if save {
				path := a.cfg.App.LicenseFile
				if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
					return err
				}
				if err := license.WriteFile(path, cred); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), cred)
			return nil
		},
	}
	cmd.Flags().StringVar(&appKey, "app", "", "app key the credential is issued to (default app.key)")
	cmd.Flags().IntVar(&maxPayload, "max-payload", 0, "payload limit carried by the credential, 0 for none")
	cmd.Flags().BoolVar(&save, "save", false, "also write the credential to the license file")
	return cmd
}

func newLicenseVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [credential...]",
		Short: "Check credentials, read from the license file when omitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.cfg.Manager()
			if err != nil {
				return err
			}
			creds := make([]license.Credential, 0, len(args))
			for _, arg := range args {
				creds = append(creds, license.Credential(arg))
			}
			if len(creds) == 0 {
				cred, err := license.ReadFile(a.cfg.App.LicenseFile)
				if err != nil {
					return err
				}
				creds = append(creds, cred)
			}

			gate := license.NewGate(m, a.cfg.Revocations(), a.logger)
			pending := make([]<-chan license.Decision, len(creds))
			for i, cred := range creds {
				pending[i] = gate.Validate(cmd.Context(), cred)
			}
			decisions, err := async.Await(cmd.Context(), async.GatherN(pending...))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var rejected error
			for i, d := range decisions {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if !d.Approved {
					fmt.Fprintf(out, "rejected %v\n", d.Reason)
					rejected = errors.Join(rejected, d.Reason)
					continue
				}
				c := d.Claims
				fmt.Fprintf(out, "license  %s\napp      %s\nissuer   %s\n", c.ID, c.Subject, c.Issuer)
				if c.ExpiresAt != nil {
					fmt.Fprintf(out, "expires  %s\n", c.ExpiresAt.Time.Format(time.RFC3339))
				}
				if c.MaxPayloadLength > 0 {
					fmt.Fprintf(out, "payload  %d B\n", c.MaxPayloadLength)
				}
			}
			return rejected
		},
	}
}

func newLicenseRevokeCmd(a *app) *cobra.Command {
	var (
		reason string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "revoke <license-id>",
		Short: "Add a license ID to the revocation list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.License.Redis.Addr == "" {
				return errors.New("revocation needs a shared store: set license.redis.addr or --redis")
			}
			if err := a.cfg.Revocations().Revoke(cmd.Context(), args[0], reason, ttl); err != nil {
				return err
			}
			a.logger.Info("revoked", "license", args[0], "reason", reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "revoked", "reason reported to engines")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "how long the revocation lasts, 0 for ever")
	return cmd
}

func newLicenseServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the license authority over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			m, err := a.cfg.Manager()
			if err != nil {
				return err
			}
			authority := &license.LocalAuthority{
				Manager: m,
				Apps: map[string]license.App{
					a.cfg.App.Key: {Secret: a.cfg.App.Secret, MaxPayloadLength: a.cfg.App.MaxPayloadLength},
				},
			}

			mux := http.NewServeMux()
			mux.Handle("/license", license.Handler(authority, a.logger))
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			go func() {
				<-ctx.Done()
				shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				_ = srv.Shutdown(shutdown)
			}()

			a.logger.Info("license authority listening", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")
	return cmd
}
