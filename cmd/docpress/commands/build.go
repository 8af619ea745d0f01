package commands

import "git.home.luguber.info/inful/docpress/internal/deploy"

// BuildCmd implements the 'build' command: a full rebuild.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, deploy.ModeFull, false)
}

// AddCmd implements the 'add' command: an incremental build.
type AddCmd struct {
	Prune bool `short:"p" help:"Back up and remove artifacts whose source is gone"`
}

func (a *AddCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, deploy.ModeIncremental, a.Prune)
}
