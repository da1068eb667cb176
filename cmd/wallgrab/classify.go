package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wallgrab/pkg/classifier"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/ui"
)

var (
	// Classify command flags
	linkFiles   bool
	classifyDir string
	manifestDir string
	linkRoot    string
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Sort downloaded wallpapers into mobile, square and landscape",
	Long: `Walk the wallpapers directory recursively and classify every image by its
width/height ratio:

  ratio <= 0.7         mobile
  0.7 < ratio <= 1.3   square
  ratio > 1.3          landscape

The result is written to mobile.txt, square.txt and landscape.txt, one path
per line. GIFs and MP4s are skipped, as is anything that cannot be decoded.
With --link-files each image is also hardlinked into a mobile/, square/ or
landscape/ directory.`,
	Example: `  # Write the three manifests
  wallgrab classify

  # Also hardlink files into per-bucket directories
  wallgrab classify --link-files`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&linkFiles, "link-files", false, "hardlink each file into its own bucket directory (mobile/square/landscape)")
	classifyCmd.Flags().StringVar(&classifyDir, "root", "", "directory to classify (default: the wallpapers directory)")
	classifyCmd.Flags().StringVar(&manifestDir, "manifest-dir", "", "where to write the manifests (default: current directory)")
	classifyCmd.Flags().StringVar(&linkRoot, "link-root", "", "where to create the bucket directories (default: current directory)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(map[string]interface{}{
		"manifest-dir": manifestDir,
		"link-root":    linkRoot,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.GetLogger()

	root := classifyDir
	if root == "" {
		root = cfg.Output.WallpapersDir
	}

	c := classifier.New(&cfg.Classify, log)
	c.SetNotifier(func(msg string) { console.PrintWarning(msg) })

	result, err := c.Classify(root)
	if err != nil {
		return err
	}

	console.PrintStats("Classification", []ui.Stat{
		{Label: "Mobile", Value: result.Count(classifier.Mobile)},
		{Label: "Square", Value: result.Count(classifier.Square)},
		{Label: "Landscape", Value: result.Count(classifier.Landscape)},
	})

	written, err := classifier.WriteManifests(cfg.Output.ManifestDir, result)
	if err != nil {
		return err
	}
	for _, path := range written {
		console.PrintInfo("Manifest", path)
	}

	if linkFiles {
		created, err := classifier.NewLinker(cfg.Output.LinkRoot).Materialize(result)
		if err != nil {
			return err
		}
		console.PrintSuccess(fmt.Sprintf("Created %d hardlink(s) under %s", created, cfg.Output.LinkRoot))
	}
	return nil
}
