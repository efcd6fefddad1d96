package reporter

import (
	"github.com/lambdaspectre/lambdaspectre/internal/models"
	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

// Reporter interface for generating reports
type Reporter interface {
	Generate(report *models.Report) error
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
}

// New creates a new reporter instance
func New(cfg *config.Config) Reporter {
	return &reporter{
		config: cfg,
	}
}

// Generate writes the report in the configured format. JSON always lands on
// disk for machine consumption; the text rendering additionally goes to
// stdout so a one-shot run is readable without opening files.
func (r *reporter) Generate(report *models.Report) error {
	if err := WriteJSON(report, r.config); err != nil {
		return err
	}

	if r.config.Format == "text" {
		if err := WriteText(report, r.config); err != nil {
			return err
		}
	}

	return nil
}
