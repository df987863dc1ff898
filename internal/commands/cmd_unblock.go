package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type UnblockCmd struct {
	flags *Flags
	rt    *Runtime
}

// NewUnblockCmd creates a new unblock command
func NewUnblockCmd(flags *Flags, rt *Runtime) *UnblockCmd {
	return &UnblockCmd{flags: flags, rt: rt}
}

// Register adds the unblock command to the application
func (cmd *UnblockCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "unblock",
		Usage:     "Remove focusflow's site blocks from the hosts file",
		UsageText: "focusflow unblock",
		Description: `Removes the focusflow section from the hosts file. Use this when a
session ended without cleaning up, for example after a crash or a kill -9.
Writing the system hosts file usually needs elevated privileges.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *UnblockCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	sites, err := cmd.rt.Focus.BlockedHosts()
	if err != nil {
		return fmt.Errorf("read hosts file: %w", err)
	}
	if len(sites) == 0 {
		_, _ = fmt.Fprintln(out, "No blocked sites found")
		return nil
	}

	if r := cmd.rt.Focus.UnblockSites(); !r.Success {
		return fmt.Errorf("unblock sites: %s", r.Error())
	}
	cmd.rt.Logger.Info().Int("sites", len(sites)).Msg("removed stale site block")
	_, _ = fmt.Fprintf(out, "Unblocked %d hosts\n", len(sites))
	return nil
}
