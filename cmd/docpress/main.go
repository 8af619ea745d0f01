package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpress/cmd/docpress/commands"
	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("docpress"),
		kong.Description("Render a directory of markdown articles into a static site."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	if err != nil {
		return derrors.NewCLIErrorAdapter(false, nil).Handle(derrors.InternalError("build command line", err))
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	global := &commands.Global{Logger: cli.Logger()}
	err = ctx.Run(global, cli)
	return derrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).Handle(err)
}
