package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"otaku-manga/internal/manifest"

	"github.com/spf13/cobra"
)

var (
	contentDir string
	outputPath string
	repoDir    string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "update-manifest",
	Short: "Write the chapter timestamp manifest from git history",
	Long: `Scans <content>/<manga>/<chapter> directories and records the last commit
time of every chapter in the timestamp manifest (default <content>/_updated.yml).
Chapters without a commit of their own get the repository's latest commit time,
or the current time outside a repository.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if outputPath == "" {
			outputPath = filepath.Join(contentDir, manifest.DefaultFilename)
		}

		g := &generator{
			contentDir: contentDir,
			commitTime: gitCommitTime(cmd.Context(), repoDir),
			now:        time.Now,
		}

		m, err := g.build()
		if err != nil {
			return err
		}

		if dryRun {
			return writeTo(cmd.OutOrStdout(), m)
		}
		if err := manifest.Write(outputPath, m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d entries.\n", outputPath, m.Entries())
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&contentDir, "content", "c", "content", "content root directory")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "manifest path (default <content>/_updated.yml)")
	rootCmd.Flags().StringVar(&repoDir, "repo", ".", "git repository the content lives in")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the manifest instead of writing it")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
