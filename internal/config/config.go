// Package config loads the release configuration from .release.yaml.
// A missing file is not an error: every key has a default that matches the
// layout of a Gradle project publishing a single jar.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = ".release.yaml"

	// TokenFile is the fallback location of the GitHub API token.
	TokenFile = ".github.token"

	// DefaultCategory is the label of the catch-all notes section.
	DefaultCategory = "_default"
)

// Category is one notes section: issues carrying Label are listed under Title.
type Category struct {
	Label string `yaml:"label"`
	Title string `yaml:"title"`
}

// Build describes how the build tool is invoked.
type Build struct {
	Command     string `yaml:"command"`
	TestTask    string `yaml:"test_task"`
	PackageTask string `yaml:"package_task"`
}

// Formula describes the downstream package-manager formula to update.
type Formula struct {
	Enabled     bool   `yaml:"enabled"`
	Owner       string `yaml:"owner"`
	Repo        string `yaml:"repo"`
	Path        string `yaml:"path"`
	Branch      string `yaml:"branch,omitempty"`
	URLTemplate string `yaml:"url_template"`
	// Strict makes a missing url or sha256 field abort the release instead
	// of leaving the field untouched.
	Strict bool `yaml:"strict"`
}

// Config models .release.yaml.
type Config struct {
	Owner               string     `yaml:"owner"`
	Repo                string     `yaml:"repo"`
	BuildFile           string     `yaml:"build_file"`
	VersionPattern      string     `yaml:"version_pattern"`
	TagPrefix           string     `yaml:"tag_prefix,omitempty"`
	ArtifactPath        string     `yaml:"artifact_path"`
	NotesFile           string     `yaml:"notes_file"`
	Remote              string     `yaml:"remote"`
	AssetContentType    string     `yaml:"asset_content_type"`
	ExcludePullRequests bool       `yaml:"exclude_pull_requests"`
	Categories          []Category `yaml:"categories"`
	CommitExcludes      []string   `yaml:"commit_excludes"`
	Build               Build      `yaml:"build"`
	Formula             Formula    `yaml:"formula"`
	LogFile             string     `yaml:"log_file,omitempty"`

	// Dir is the project directory every relative path is resolved against.
	Dir string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BuildFile:        "build.gradle",
		VersionPattern:   `version: '(.*)'`,
		ArtifactPath:     "build/libs/{repo}-{version}.jar",
		NotesFile:        ".last-release-notes",
		Remote:           "origin",
		AssetContentType: "application/octet-stream",
		Categories: []Category{
			{Label: "feature", Title: "New Features"},
			{Label: "enhancement", Title: "Enhancements"},
			{Label: "bug", Title: "Bug Fixes"},
			{Label: DefaultCategory, Title: "Other resolved tickets"},
		},
		CommitExcludes: []string{"Fix #", "Fixes #", "Closes #"},
		Build: Build{
			Command:     "./gradlew",
			TestTask:    "test",
			PackageTask: "jar",
		},
		Formula: Formula{
			Path:        "Formula/{repo}.rb",
			URLTemplate: "https://github.com/{owner}/{repo}/releases/download/{version}/{repo}-{version}.jar",
		},
		Dir: ".",
	}
}

// Load reads path on top of the defaults. When path is empty DefaultFile in
// dir is used, and its absence is not an error.
func Load(dir, path string) (*Config, error) {
	cfg := Default()
	cfg.Dir = dir
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, DefaultFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "unable to read config file %q", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to parse config file %q", path)
	}
	cfg.Dir = dir
	return cfg, nil
}

// Validate checks the fields the release cannot run without.
func (c *Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return errors.New("owner and repo must be set")
	}
	re, err := regexp.Compile(c.VersionPattern)
	if err != nil {
		return errors.Wrapf(err, "invalid version_pattern %q", c.VersionPattern)
	}
	if re.NumSubexp() < 1 {
		return errors.Errorf("version_pattern %q needs a capture group for the version", c.VersionPattern)
	}
	if len(c.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	for _, p := range c.CommitExcludes {
		if _, err := regexp.Compile(p); err != nil {
			return errors.Wrapf(err, "invalid commit_excludes pattern %q", p)
		}
	}
	if !strings.Contains(c.ArtifactPath, "{version}") {
		return errors.Errorf("artifact_path %q must contain {version}", c.ArtifactPath)
	}
	if c.Formula.Enabled {
		if c.Formula.Owner == "" || c.Formula.Repo == "" || c.Formula.Path == "" {
			return errors.New("formula owner, repo and path must be set when formula is enabled")
		}
		if !strings.Contains(c.Formula.URLTemplate, "{version}") {
			return errors.Errorf("formula url_template %q must contain {version}", c.Formula.URLTemplate)
		}
	}
	return nil
}

// Expand fills {owner}, {repo} and {version} placeholders in a template.
func (c *Config) Expand(template, version string) string {
	return strings.NewReplacer(
		"{owner}", c.Owner,
		"{repo}", c.Repo,
		"{version}", version,
	).Replace(template)
}

// Resolve returns p relative to the project directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Token returns the GitHub token: flag value first, then $GITHUB_TOKEN, then
// the token file in the project directory.
func (c *Config) Token(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		return env
	}
	data, err := os.ReadFile(c.Resolve(TokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
