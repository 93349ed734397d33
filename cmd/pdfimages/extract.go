package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

type fileReport struct {
	Path    string
	Summary pdf.Summary
	Written []string
	Bytes   int64
	Err     error
}

func extractFile(ctx context.Context, svc *pdf.PDFService, path, outDir string) fileReport {
	rep := fileReport{Path: path}

	f, err := os.Open(path)
	if err != nil {
		rep.Err = err
		return rep
	}
	defer f.Close()

	res, err := svc.Extract(ctx, f)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Summary = res.Summary()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, img := range res.Images {
		data, err := pdf.EncodePNG(img.RGB)
		if err != nil {
			rep.Err = fmt.Errorf("encode page %d %s: %w", img.Page, img.Name, err)
			return rep
		}

		name := filepath.Join(outDir, outputName(base, img))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			rep.Err = err
			return rep
		}
		rep.Written = append(rep.Written, name)
		rep.Bytes += int64(len(data))
	}
	return rep
}

// outputName is BASE-page-N-NAME.png. Resource names may contain bytes that
// are not valid in file names.
func outputName(base string, img pdf.Image) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, img.Name)
	return fmt.Sprintf("%s-page-%d-%s.png", base, img.Page, name)
}
