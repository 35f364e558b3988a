package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/autosave"
	"github.com/localnerve/jam-build-rentals/internal/client"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/spf13/cobra"
)

func ApplicationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "application",
		Short: "Work with applications through a running service",
	}
	cmd.PersistentFlags().String("url", "http://localhost:3000", "Service base URL")
	cmd.PersistentFlags().String("session", "", "Session cookie value")
	cmd.PersistentFlags().String("token", "", "Bearer token")
	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")
	cmd.AddCommand(applicationSaveCmd())
	return cmd
}

func newClient(cmd *cobra.Command) *client.Client {
	url, _ := cmd.Flags().GetString("url")
	session, _ := cmd.Flags().GetString("session")
	token, _ := cmd.Flags().GetString("token")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	opts := []client.Option{client.WithTimeout(timeout)}
	if session != "" {
		opts = append(opts, client.WithSession(session))
	}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(url, opts...)
}

func applicationSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a draft application from a JSON form, optionally submitting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			id, _ := cmd.Flags().GetString("id")
			submit, _ := cmd.Flags().GetBool("submit")
			verbose, _ := cmd.Flags().GetBool("verbose")

			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open form: %w", err)
				}
				defer f.Close()
				in = f
			}
			var form api.ApplicationForm
			if err := json.NewDecoder(in).Decode(&form); err != nil {
				return fmt.Errorf("failed to read form: %w", err)
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			c := newClient(cmd)
			var saved *models.Application
			ctl := autosave.New(c, autosave.Options{
				ApplicationID: id,
				Log:           logging.New(cmd.ErrOrStderr(), level, "text"),
				OnSaved:       func(app *models.Application) { saved = app },
			})
			defer ctl.Close()

			ctl.Update(form)
			if err := ctl.Flush(cmd.Context()); err != nil {
				return err
			}
			if saved == nil {
				return fmt.Errorf("nothing was saved")
			}

			if submit {
				app, err := c.Submit(cmd.Context(), saved.ID)
				if err != nil {
					return err
				}
				saved = app
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", saved.ID, saved.Status)
			return nil
		},
	}

	cmd.Flags().String("file", "-", "Form JSON file, - for stdin")
	cmd.Flags().String("id", "", "Application id to update")
	cmd.Flags().Bool("submit", false, "Submit after saving")
	cmd.Flags().Bool("verbose", false, "Log each save")

	return cmd
}
