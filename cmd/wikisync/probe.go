package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slurpgg/bloom-wikisync/internal/config"
	"github.com/slurpgg/bloom-wikisync/internal/retry"
	"github.com/slurpgg/bloom-wikisync/internal/wiki"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check wiki API access",
	Long:  "Lists the projects visible to the configured token and whether their wiki is enabled. Use it to find the project id to put in GITLAB_PROJECT_ID.",
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if strings.TrimSpace(a.cfg.GitLabToken) == "" {
		return &config.ConfigurationError{Problems: []string{fmt.Sprintf("missing access token (set %s)", config.EnvGitLabToken)}}
	}
	client, err := wiki.NewClient(a.cfg.GitLabHost, a.cfg.GitLabToken, &wiki.Options{Timeout: a.cfg.HTTPTimeout()})
	if err != nil {
		return err
	}

	projects, _, err := retry.Do(cmd.Context(), a.newExecutor(), "projects", func(ctx context.Context) ([]wiki.Project, error) {
		return client.ListProjects(ctx)
	})
	if err != nil {
		return err
	}

	a.printf("Host: %s\n", a.cfg.GitLabHost)
	if len(projects) == 0 {
		a.printf("No projects visible to this token\n")
		return nil
	}
	for _, p := range projects {
		wikiState := "disabled"
		if p.WikiEnabled {
			wikiState = "enabled"
		}
		marker := " "
		if fmt.Sprint(p.ID) == a.cfg.ProjectID || p.PathWithNamespace == a.cfg.ProjectID {
			marker = "*"
		}
		a.printf("%s %6d  %-50s wiki %s\n", marker, p.ID, p.PathWithNamespace, wikiState)
	}
	return nil
}
