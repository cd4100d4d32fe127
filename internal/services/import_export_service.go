package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

const resultsSheet = "Results"

// QuizImportDocument is the YAML layout accepted by ImportQuizzes
type QuizImportDocument struct {
	Quizzes []CreateQuizRequest `yaml:"quizzes"`
}

type importExportService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	quizService QuizService
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger, quizService QuizService) ImportExportService {
	return &importExportService{
		repo:        repo,
		logger:      logger,
		quizService: quizService,
	}
}

// ImportQuizzes creates every quiz of a YAML document. A failing quiz does not stop the others.
func (s *importExportService) ImportQuizzes(ctx context.Context, r io.Reader, instructorID string) (*ImportResult, error) {
	var doc QuizImportDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty import document", ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: failed to parse import document: %v", ErrInvalidArgument, err)
	}

	s.logger.Info("Importing quizzes", "count", len(doc.Quizzes), "instructor_id", instructorID)

	result := &ImportResult{Created: make([]uint, 0, len(doc.Quizzes))}
	for i := range doc.Quizzes {
		req := &doc.Quizzes[i]
		quiz, err := s.quizService.CreateQuiz(ctx, req, instructorID)
		if err != nil {
			s.logger.Warn("Quiz import failed", "index", i, "title", req.Title, "error", err)
			result.Failed = append(result.Failed, ImportError{Index: i, Title: req.Title, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, quiz.ID)
	}

	return result, nil
}

// ExportQuizResults writes the submissions of a quiz as an xlsx workbook
func (s *importExportService) ExportQuizResults(ctx context.Context, quizID uint, w io.Writer) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		return mapQuizError(err)
	}

	submissions, _, err := s.repo.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{SortOrder: "asc"})
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Submission ID", "Student ID", "Score", "Submitted At"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(resultsSheet, "A1", "D1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, submission := range submissions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			submission.ID,
			submission.StudentID,
			submission.Score,
			submission.SubmissionDate.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(resultsSheet, "A", "D", 22); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	s.logger.Info("Exporting quiz results", "quiz_id", quiz.ID, "rows", len(submissions))
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
