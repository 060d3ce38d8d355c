package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/optik-go/optik/internal/directive"
	"github.com/optik-go/optik/optikgen"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate class declarations for annotated packages."`
	List    ListCmd    `cmd:"" help:"List annotated types without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(versionString())
	return nil
}

type GenCmd struct {
	Packages []string `arg:"" optional:"" help:"Package patterns to scan."`
	Config   string   `help:"Path to a TOML config file (default: optik.toml when present)." short:"c"`
	Out      string   `help:"Name of the generated file." short:"o"`
	Dir      string   `help:"Working directory for package loading."`
}

func (c *GenCmd) Run() error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	res, err := optikgen.Generate(context.Background(), cfg)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", w.Code, w.Message)
	}
	fmt.Printf("declared %d classes across %d files\n", res.Classes, len(res.Files))
	return nil
}

// config merges the config file, if any, with command line flags. Flags win.
func (c *GenCmd) config() (*optikgen.Config, error) {
	cfg := &optikgen.Config{}

	path := c.Config
	if path == "" {
		if _, err := os.Stat("optik.toml"); err == nil {
			path = "optik.toml"
		}
	}
	if path != "" {
		loaded, err := optikgen.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(c.Packages) > 0 {
		cfg.Packages = c.Packages
	}
	if c.Out != "" {
		cfg.OutFile = c.Out
	}
	if c.Dir != "" {
		cfg.Dir = c.Dir
	}

	if len(cfg.Packages) == 0 {
		return nil, fmt.Errorf("no packages to scan; pass patterns or set packages in optik.toml")
	}
	return cfg, nil
}

type ListCmd struct {
	Packages []string `arg:"" optional:"" help:"Single-package patterns to inspect."`
}

func (c *ListCmd) Run() error {
	patterns := c.Packages
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	for _, pattern := range patterns {
		res, err := directive.Parse(pattern)
		if err != nil {
			return err
		}
		for _, d := range res.Classes {
			fmt.Printf("%s: %s -> %s\n", res.PackagePath, d.TypeName, d.ClassName())
		}
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("optik"),
		kong.Description("Optik CLI for class declaration generation."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
