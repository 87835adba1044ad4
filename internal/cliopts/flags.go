package cliopts

import (
	"github.com/urfave/cli/v3"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// Flags renders the options offered for cmd as urfave/cli flags.
func Flags(cmd domain.Command) []cli.Flag {
	var flags []cli.Flag
	for _, opt := range Options() {
		if !opt.AppliesTo(cmd) {
			continue
		}
		switch opt.Kind {
		case domain.KindBool:
			flags = append(flags, &cli.BoolFlag{Name: opt.Name, Usage: opt.Usage})
		case domain.KindNumber:
			flags = append(flags, &cli.IntFlag{Name: opt.Name, Usage: opt.Usage})
		default:
			flags = append(flags, &cli.StringFlag{Name: opt.Name, Usage: opt.Usage})
		}
	}
	return flags
}

// Args collects the values of options explicitly given on the command
// line. Options left at their zero default are omitted so they do not
// override configuration.
func Args(c *cli.Command, cmd domain.Command) map[string]any {
	args := make(map[string]any)
	for _, opt := range Options() {
		if !opt.AppliesTo(cmd) || !c.IsSet(opt.Name) {
			continue
		}
		args[opt.Name] = c.Value(opt.Name)
	}
	return args
}
