package reports

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gridmix/internal/charts"
	"gridmix/internal/logger"
	"gridmix/internal/storage"
)

// GeneratedFiles contains all files of one dashboard snapshot
type GeneratedFiles struct {
	HTMLContent string
	JSONFiles   map[string][]byte
	AssetFiles  map[string][]byte // static PNG charts
	FolderPath  string
}

// FileGenerator renders a built dashboard into snapshot files
type FileGenerator struct {
	htmlBuilder *HTMLBuilder
	log         *logger.Logger
}

// NewFileGenerator creates a new file generator
func NewFileGenerator() *FileGenerator {
	return &FileGenerator{
		htmlBuilder: NewHTMLBuilder(),
		log:         logger.For(logger.ComponentReports),
	}
}

// GenerateAllFiles renders one PNG and one JSON file per charted section and
// the index page linking them. A chart that fails to render is logged and
// left out; the interactive chart stays on the page.
func (fg *FileGenerator) GenerateAllFiles(dash *Dashboard) (*GeneratedFiles, error) {
	files := &GeneratedFiles{
		JSONFiles:  make(map[string][]byte),
		AssetFiles: make(map[string][]byte),
		FolderPath: storage.GenerateReportFolderPath(dash.GeneratedAt),
	}

	images := make(map[string]string)
	for _, s := range dash.Sections {
		if !s.OK() {
			continue
		}
		png, data, err := fg.renderSection(s)
		if err != nil {
			fg.log.Warn("Failed to render static chart", logger.Fields{"section": s.Key, "error": err.Error()})
			continue
		}
		name := s.Key + ".png"
		files.AssetFiles[name] = png
		files.JSONFiles[s.Key+".json"] = data
		images[s.Key] = name
	}

	if len(dash.Summary) > 0 {
		data, err := json.MarshalIndent(dash.Summary, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", SummaryFile, err)
		}
		files.JSONFiles[SummaryFile] = data
	}

	page, err := fg.htmlBuilder.BuildCompleteHTML(dash, images)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTML: %w", err)
	}
	files.HTMLContent = page

	fg.log.Info("Snapshot files generated", logger.Fields{
		"folder": files.FolderPath,
		"images": len(files.AssetFiles),
	})
	return files, nil
}

func (fg *FileGenerator) renderSection(s Section) ([]byte, []byte, error) {
	var buf bytes.Buffer
	var payload interface{}

	switch {
	case s.Table != nil:
		if err := charts.RenderLinePNG(&buf, s.Title, s.Unit, s.Table); err != nil {
			return nil, nil, err
		}
		payload = s.Table
	case s.Share != nil:
		if err := charts.RenderPiePNG(&buf, s.Title, *s.Share); err != nil {
			return nil, nil, err
		}
		payload = s.Share
	default:
		return nil, nil, fmt.Errorf("section %s has nothing to render", s.Key)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", s.Key, err)
	}
	return buf.Bytes(), data, nil
}
