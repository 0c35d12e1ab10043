package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/liguebillard/federation-admin/repositories"
	"github.com/xuri/excelize/v2"
)

type ExportService interface {
	// RankingsWorkbook renders the (category, season) ranking table as a
	// styled xlsx workbook, ready to stream to the client.
	RankingsWorkbook(ctx context.Context, categoryID int, season string) (*bytes.Buffer, string, error)
}

type exportService struct {
	rankingRepo  repositories.RankingRepository
	categoryRepo repositories.CategoryRepository
}

func NewExportService(rankingRepo repositories.RankingRepository, categoryRepo repositories.CategoryRepository) ExportService {
	return &exportService{rankingRepo: rankingRepo, categoryRepo: categoryRepo}
}

var exportHeaders = []string{
	"Classement", "Licence", "Joueur", "T1", "T2", "T3",
	"Points de match", "Moyenne", "Meilleure série",
}

func (s *exportService) RankingsWorkbook(ctx context.Context, categoryID int, season string) (*bytes.Buffer, string, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, "", ErrCategoryNotFound
		}
		return nil, "", err
	}
	rankings, err := s.rankingRepo.ListByCategorySeason(ctx, categoryID, season)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Classement"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	title := fmt.Sprintf("%s - Saison %s", category.Name, season)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, "", err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", err
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 2)
	if err := f.SetCellStyle(sheet, "A2", lastHeaderCell, headerStyle); err != nil {
		return nil, "", err
	}

	for i, rk := range rankings {
		row := i + 3
		values := []interface{}{
			rk.RankPosition, rk.Licence, rk.PlayerName,
			rk.T1Points, rk.T2Points, rk.T3Points,
			rk.TotalMatchPoints, rk.AvgMoyenne, rk.BestSerie,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "C", 22); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(sheet, "G", "I", 16); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("classement-%s-%s.xlsx",
		sanitizeFilename(category.Name), sanitizeFilename(season))
	return buf, filename, nil
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
