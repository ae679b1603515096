// Package excel writes collected study answers to a workbook for analysts.
package excel

import (
	"context"
	"fmt"

	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/ports"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

const (
	answerSheet  = "Answers"
	summarySheet = "Summary"
)

// AnswerExporter dumps answers from a store into an xlsx workbook.
type AnswerExporter struct {
	store ports.AnswerStore
}

// NewAnswerExporter creates an exporter over the given answer store.
func NewAnswerExporter(store ports.AnswerStore) *AnswerExporter {
	return &AnswerExporter{store: store}
}

// Export writes all stored answers to filePath: one row per answer plus a
// summary sheet with aggregates over the reported slider values.
func (e *AnswerExporter) Export(ctx context.Context, filePath string) error {
	answers, err := e.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", answerSheet)
	if err := e.writeAnswers(f, answers); err != nil {
		return err
	}
	if err := e.writeSummary(f, answers); err != nil {
		return err
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (e *AnswerExporter) writeAnswers(f *excelize.File, answers []stimulus.Answer) error {
	headers := []interface{}{
		"answer_id", "session_id", "stimulus_id",
		"correlation_strength", "displayed_r", "user_point_count",
		"elapsed_ms", "submitted_at",
	}
	if err := f.SetSheetRow(answerSheet, "A1", &headers); err != nil {
		return err
	}

	for i, a := range answers {
		var displayed interface{}
		if a.DisplayedR != nil {
			displayed = *a.DisplayedR
		}
		row := []interface{}{
			a.ID.String(), a.SessionID.String(), a.StimulusID.String(),
			a.CorrelationStrength, displayed, len(a.UserPoints),
			a.ElapsedMs, a.SubmittedAt.Time(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(answerSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *AnswerExporter) writeSummary(f *excelize.File, answers []stimulus.Answer) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	strengths := make([]float64, 0, len(answers))
	for _, a := range answers {
		strengths = append(strengths, a.CorrelationStrength)
	}

	rows := [][]interface{}{
		{"metric", "value"},
		{"answer_count", len(answers)},
	}

	if len(strengths) > 0 {
		mean, _ := stats.Mean(strengths)
		median, _ := stats.Median(strengths)
		stdDev, _ := stats.StandardDeviationSample(strengths)
		min, _ := stats.Min(strengths)
		max, _ := stats.Max(strengths)

		rows = append(rows,
			[]interface{}{"reported_r_mean", mean},
			[]interface{}{"reported_r_median", median},
			[]interface{}{"reported_r_stddev", stdDev},
			[]interface{}{"reported_r_min", min},
			[]interface{}{"reported_r_max", max},
		)
	}

	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
