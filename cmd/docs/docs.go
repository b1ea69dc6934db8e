package docs

import (
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	generator "github.com/iCardioAI/encephalon-examples/pkg/docs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serve bool
var outputDir string
var rootCmd *cobra.Command

func NewDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate CLI documentation",
		Long:  "Generate markdown documentation for every command plus a mkdocs.yml. Building and serving the site with --serve requires 'mkdocs' and the material theme on the PATH.",
		Example: `
# Generate the markdown tree only
encephalon docs

# Generate docs and serve them at http://localhost:8000
encephalon docs --serve
		`,
		Run: Docs,
	}

	cmd.Flags().BoolVarP(&serve, "serve", "s", false, "Run 'mkdocs build' and serve the site after generating docs")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./cli-docs", "Directory the markdown tree is written to")
	rootCmd = root
	return cmd
}

func Docs(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(outputDir); err == nil {
		log.Info().Str("folder", outputDir).Msg("Output directory exists, deleting")
		if err := os.RemoveAll(outputDir); err != nil {
			log.Fatal().Err(err).Msg("Failed deleting existing output directory")
		}
	}

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		log.Fatal().Err(err).Msg("Failed creating output directory")
	}

	if err := generator.Generate(rootCmd, outputDir); err != nil {
		log.Fatal().Err(err).Msg("Failed generating CLI docs")
	}

	if err := generator.WriteMkdocsYaml(rootCmd, outputDir); err != nil {
		log.Fatal().Err(err).Msg("Failed writing mkdocs.yml")
	}

	log.Info().Str("folder", outputDir).Msg("Markdown generated")

	if !serve {
		return
	}

	log.Info().Msg("Running 'mkdocs build' in the output folder")
	build := exec.Command("mkdocs", "build")
	build.Dir = outputDir
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed running mkdocs build")
	}

	siteDir := filepath.Join(outputDir, "site")
	log.Info().Msgf("Serving docs %s at http://localhost:8000 ... (Ctrl+C to quit)", siteDir)
	http.Handle("/", http.FileServer(http.Dir(siteDir)))
	if err := http.ListenAndServe(":8000", nil); err != nil {
		log.Fatal().Err(err).Msg("Failed starting HTTP server")
	}
}
