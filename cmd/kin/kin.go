// Package kincmder
package kincmder

import (
	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/kin/cmd/kin/serve"
	versioncmder "github.com/papercomputeco/kin/cmd/version"
)

const kinLongDesc string = `Kin is a persona-driven conversational companion.

It answers each message as text, a generated image, or a voice note, and
remembers durable facts about you across conversations.

Run the service using:
  kin serve            Run the webhook server`

const kinShortDesc string = "Kin - AI Companion"

func NewKinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kin",
		Short: kinShortDesc,
		Long:  kinLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
