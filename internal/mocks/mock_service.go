package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gridmix/internal/logger"
	"gridmix/internal/models"
)

// MockService serves recorded Ember payloads from disk in place of the live API
type MockService struct {
	mocksDir string
	log      *logger.Logger
}

// NewMockService creates a mock service reading fixtures from mocksDir
func NewMockService(mocksDir string) *MockService {
	return &MockService{
		mocksDir: mocksDir,
		log:      logger.For(logger.ComponentFixtures),
	}
}

// FixtureName returns the file holding the payload for q, for example
// electricity-generation_yearly_aggregate.json
func FixtureName(q models.Query) string {
	name := fmt.Sprintf("%s_%s", q.Dataset, q.Granularity.Endpoint())
	if q.AggregateSeries {
		name += "_aggregate"
	}
	return name + ".json"
}

// Fetch loads the fixture for q and applies the entity and start date filters
// the API would apply
func (m *MockService) Fetch(ctx context.Context, q models.Query) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var envelope models.EmberResponse
	if err := m.loadTypedJSONFile(FixtureName(q), &envelope); err != nil {
		return nil, &models.FetchError{Endpoint: FixtureName(q), Err: err}
	}

	records := make([]models.RawRecord, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		if code, ok := rec["entity_code"].(string); ok && q.EntityCode != "" && code != q.EntityCode {
			continue
		}
		// ISO dates compare correctly as strings
		if date, ok := rec["date"].(string); ok && q.StartDate != "" && date < q.StartDate {
			continue
		}
		records = append(records, rec)
	}

	m.log.Info("Loaded fixture", logger.Fields{
		"file":    FixtureName(q),
		"records": len(records),
	})
	return records, nil
}

// loadTypedJSONFile loads a JSON file and unmarshals it into the provided type
func (m *MockService) loadTypedJSONFile(filename string, target interface{}) error {
	filePath := filepath.Join(m.mocksDir, filename)
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("failed to unmarshal file %s: %w", filename, err)
	}
	return nil
}
