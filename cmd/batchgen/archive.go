package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/pkg/zip"
)

// resultReader loads a persisted result by its durable URL.
type resultReader interface {
	Read(ctx context.Context, url string) ([]byte, error)
}

// archiveReport collects every successful outcome of report into zip assets
// named <record>/v<NN><ext>. Unreadable results are skipped and counted.
func archiveReport(ctx context.Context, store resultReader, report *orchestrator.Report) ([]zip.Asset, int) {
	var (
		assets  []zip.Asset
		skipped int
	)
	for _, o := range report.Outcomes {
		if !o.Succeeded() {
			continue
		}
		data, err := store.Read(ctx, o.URL)
		if err != nil {
			skipped++
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("%s/v%02d%s", o.RecordID, o.Variation, path.Ext(o.URL)),
			Data:     data,
			Modified: o.At,
		})
	}
	return assets, skipped
}

func writeArchive(ctx context.Context, store resultReader, report *orchestrator.Report, dest string) (int, int, error) {
	assets, skipped := archiveReport(ctx, store, report)
	f, err := os.Create(dest)
	if err != nil {
		return 0, skipped, err
	}
	if err := zip.Write(f, assets); err != nil {
		f.Close()
		return 0, skipped, err
	}
	return len(assets), skipped, f.Close()
}
