// Command pdfimages extracts the RGB images of PDF files offline, without a
// vision model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "pdfimages",
		Usage: "extract embedded RGB images from PDF files",
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "write every decodable image as PNG",
				ArgsUsage: "FILE.pdf...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Value:   ".",
						Usage:   "output directory",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "log skipped images",
					},
				},
				Action: runExtract,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runExtract(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("no input files", 2)
	}

	log := zap.NewNop()
	if c.Bool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync()
		log = l
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	svc := pdf.NewPDFService(pdf.NewPdfcpuExtractor(log), 0)

	bar := progressbar.NewOptions(
		len(files),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	var reports []fileReport
	for _, path := range files {
		rep := extractFile(c.Context, svc, path, outDir)
		reports = append(reports, rep)
		bar.Add(1)
	}

	failed := 0
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
			fmt.Printf("%s: %v\n", rep.Path, rep.Err)
			continue
		}
		fmt.Printf("%s: %d extracted, %d skipped, %s written\n",
			rep.Path, rep.Summary.Extracted, rep.Summary.Skipped, humanize.IBytes(uint64(rep.Bytes)))
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, len(files)), 1)
	}
	return nil
}
