// Package docs renders the cobra command tree into a mkdocs compatible
// markdown site.
package docs

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"gopkg.in/yaml.v3"
)

func getFileName(cmd *cobra.Command, level int) string {
	switch level {
	case 1:
		if cmd.GroupID != "" {
			return cmd.GroupID + ".md"
		}
		return cmd.Name() + ".md"
	default:
		return cmd.Name() + ".md"
	}
}

func displayName(cmd *cobra.Command, level int) string {
	titleCaser := cases.Title(language.Und, cases.NoLower)
	switch level {
	case 1:
		if cmd.GroupID != "" {
			return titleCaser.String(cmd.GroupID)
		}
		return titleCaser.String(cmd.Name())
	default:
		return titleCaser.String(cmd.Name())
	}
}

// Generate writes one markdown file per command below outputDir. Commands
// with subcommands become a folder with an index.md so mkdocs nesting matches
// the command tree.
func Generate(rootCmd *cobra.Command, outputDir string) error {
	rootCmd.DisableAutoGenTag = true
	return generateDocs(rootCmd, outputDir, 0)
}

func generateDocs(cmd *cobra.Command, dir string, level int) error {
	var filename string

	if len(cmd.Commands()) > 0 {
		dir = filepath.Join(dir, cmd.Name())
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
		filename = filepath.Join(dir, "index.md")
	} else {
		filename = filepath.Join(dir, getFileName(cmd, level))
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	customLinkHandler := func(s string) string {
		if s == "encephalon.md" {
			return "/"
		}

		s = strings.TrimPrefix(s, "encephalon_")
		s = strings.TrimSuffix(s, ".md")
		s = strings.ReplaceAll(s, "_", "/")
		return "/" + s
	}

	if err := doc.GenMarkdownCustom(cmd, f, customLinkHandler); err != nil {
		return err
	}

	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if err := generateDocs(c, dir, level+1); err != nil {
			return err
		}
	}

	return nil
}

type NavEntry struct {
	Label    string
	FilePath string
	Children []*NavEntry
}

func buildNav(cmd *cobra.Command, level int, parentPath string) *NavEntry {
	entry := &NavEntry{
		Label: displayName(cmd, level),
	}

	if len(cmd.Commands()) > 0 {
		folder := filepath.Join(parentPath, cmd.Name())
		entry.FilePath = filepath.ToSlash(filepath.Join(folder, "index.md"))
		entry.Children = []*NavEntry{}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
				continue
			}
			entry.Children = append(entry.Children, buildNav(c, level+1, folder))
		}
	} else {
		entry.FilePath = filepath.ToSlash(filepath.Join(parentPath, getFileName(cmd, level)))
	}

	return entry
}

// convertNavToYaml flattens NavEntries into the mkdocs nav list. Paths are
// relative to docs_dir, so the root folder prefix and the .md suffix go away.
func convertNavToYaml(entries []*NavEntry) []map[string]interface{} {
	yamlList := []map[string]interface{}{}
	for _, e := range entries {
		navPath := strings.TrimPrefix(e.FilePath, "encephalon/")
		if len(e.Children) == 0 {
			navPath = strings.TrimSuffix(navPath, ".md")
			yamlList = append(yamlList, map[string]interface{}{
				e.Label: navPath,
			})
		} else {
			yamlList = append(yamlList, map[string]interface{}{
				e.Label: convertNavToYaml(e.Children),
			})
		}
	}
	return yamlList
}

// WriteMkdocsYaml writes a mkdocs.yml next to the generated markdown with a
// nav matching the command tree.
func WriteMkdocsYaml(rootCmd *cobra.Command, outputDir string) error {
	rootEntry := buildNav(rootCmd, 0, "")
	nav := convertNavToYaml(rootEntry.Children)

	mkdocs := map[string]interface{}{
		"site_name": "Encephalon CLI Docs",
		"docs_dir":  "encephalon",
		"site_dir":  "site",
		"theme": map[string]interface{}{
			"name": "material",
			"palette": map[string]string{
				"scheme":  "slate",
				"primary": "red",
			},
		},
		"extra": map[string]interface{}{
			"highlightjs": true,
		},
		"nav": nav,
	}

	yamlData, err := yaml.Marshal(mkdocs)
	if err != nil {
		return err
	}

	filename := filepath.Join(outputDir, "mkdocs.yml")
	return os.WriteFile(filename, yamlData, format.FilePublicRead)
}
