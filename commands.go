package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/menghanl/release-runner/formula"
	"github.com/menghanl/release-runner/ghclient"
	"github.com/menghanl/release-runner/internal/build"
	"github.com/menghanl/release-runner/internal/config"
	"github.com/menghanl/release-runner/internal/editor"
	"github.com/menghanl/release-runner/internal/git"
	"github.com/menghanl/release-runner/internal/logging"
	"github.com/menghanl/release-runner/internal/notesfile"
	"github.com/menghanl/release-runner/notes"
	"github.com/menghanl/release-runner/release"
	"github.com/menghanl/release-runner/server"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	cfgFile string
	dir     string
	token   string
	owner   string
	repo    string
	verbose bool
	noColor bool

	dryRun    bool
	editorCmd string
	addr      string
)

var rootCmd = &cobra.Command{
	Use:           "release-runner",
	Short:         "Publish a release to GitHub with synthesized release notes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Test, build, tag and publish the version found in the build file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd.Context())
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Print the release notes synthesized since the previous tag.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()
		contents, err := a.synthesizer().BuildDefault(cmd.Context())
		if err != nil {
			return err
		}
		a.log.Banner("generated notes for %s/%s", a.cfg.Owner, a.cfg.Repo)
		a.log.Infof("%s", contents)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the synthesized release notes over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()
		a.log.Infof("Serving release notes preview on %s", addr)
		return errors.WithStack(server.New(a.synthesizer(), a.log).Run(addr))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the release-runner version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	pf.StringVar(&dir, "dir", ".", "project directory")
	pf.StringVar(&token, "token", "", "github token (default $GITHUB_TOKEN or ./"+config.TokenFile+")")
	pf.StringVar(&owner, "owner", "", "github repo owner")
	pf.StringVar(&repo, "repo", "", "github repo")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print debug output and stack traces")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	releaseCmd.Flags().BoolVar(&dryRun, "dry-run", false, "stop before tagging and publishing")
	releaseCmd.Flags().StringVar(&editorCmd, "editor", "", "editor command (default $VISUAL, $EDITOR or vi)")
	previewCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(releaseCmd, notesCmd, previewCmd, versionCmd)
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	}
}

// app holds the collaborators shared by the commands.
type app struct {
	cfg *config.Config
	log *logging.Logger
	git *git.Repo
	gh  *ghclient.Client
}

func newApp(needToken bool) (*app, error) {
	cfg, err := config.Load(dir, cfgFile)
	if err != nil {
		return nil, err
	}
	if owner != "" {
		cfg.Owner = owner
	}
	if repo != "" {
		cfg.Repo = repo
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	log := logging.New(nil, verbose)
	if err := log.OpenFile(cfg.Resolve(cfg.LogFile)); err != nil {
		return nil, err
	}
	tok := cfg.Token(token)
	if needToken && tok == "" {
		log.Close()
		return nil, errors.Errorf("a github token is required: use --token, $GITHUB_TOKEN or %s", config.TokenFile)
	}
	tc := ghclient.NewHTTPClient(context.Background(), tok)
	return &app{
		cfg: cfg,
		log: log,
		git: git.New(cfg.Dir),
		gh:  ghclient.New(tc, cfg.Owner, cfg.Repo).WithLogger(log),
	}, nil
}

func (a *app) close() {
	a.log.Close()
}

func (a *app) synthesizer() *notes.Synthesizer {
	categories := make([]notes.Category, 0, len(a.cfg.Categories))
	for _, c := range a.cfg.Categories {
		categories = append(categories, notes.Category{Label: c.Label, Title: c.Title})
	}
	var filters notes.Filters
	if a.cfg.ExcludePullRequests {
		filters.Ignore = notes.IgnorePullRequests
	}
	return &notes.Synthesizer{
		Org:        a.cfg.Owner,
		Repo:       a.cfg.Repo,
		History:    a.git,
		Tracker:    a.gh,
		Categories: categories,
		Excludes:   a.cfg.CommitExcludes,
		Filters:    filters,
		Log:        a.log,
	}
}

func (a *app) formulaUpdater() release.FormulaUpdater {
	f := a.cfg.Formula
	if !f.Enabled {
		return nil
	}
	return &formula.Updater{
		Files:  a.gh.ForRepo(f.Owner, f.Repo),
		Path:   a.cfg.Expand(f.Path, ""),
		Branch: f.Branch,
		URL: func(version string) string {
			return a.cfg.Expand(f.URLTemplate, version)
		},
		Strict: f.Strict,
		Log:    a.log,
	}
}

func runRelease(ctx context.Context) error {
	a, err := newApp(!dryRun)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	opts := release.Options{
		BuildFile:      cfg.Resolve(cfg.BuildFile),
		VersionPattern: cfg.VersionPattern,
		TagPrefix:      cfg.TagPrefix,
		ArtifactPath: func(version string) string {
			return cfg.Resolve(cfg.Expand(cfg.ArtifactPath, version))
		},
		TestTask:    cfg.Build.TestTask,
		PackageTask: cfg.Build.PackageTask,
		Remote:      cfg.Remote,
		ContentType: cfg.AssetContentType,
		DryRun:      dryRun,
	}
	deps := release.Deps{
		Repo:      a.git,
		Builder:   build.New(cfg.Dir, cfg.Build.Command),
		Publisher: a.gh,
		Notes:     a.synthesizer(),
		NotesFile: notesfile.New(cfg.Resolve(cfg.NotesFile)),
		Editor:    editor.New(editorCmd),
		Log:       a.log,
	}
	if u := a.formulaUpdater(); u != nil {
		deps.Formula = u
	} else {
		a.log.Debugf("formula update disabled in %s", config.DefaultFile)
	}
	_, err = release.New(opts, deps).Run(ctx)
	return err
}
