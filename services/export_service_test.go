package services

import (
	"context"
	"testing"

	"github.com/liguebillard/federation-admin/models"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRankingsWorkbook(t *testing.T) {
	rankingRepo := &fakeRankingRepo{rankings: []models.Ranking{
		{
			RankPosition: 1, Licence: "0123456", PlayerName: "DUPONT Jean",
			T1Points: 100, T2Points: 90, T3Points: 0,
			TotalMatchPoints: 24, AvgMoyenne: 1.234, BestSerie: 7,
		},
		{
			RankPosition: 2, Licence: "0234567", PlayerName: "MARTIN Paul",
			TotalMatchPoints: 20, AvgMoyenne: 0.987, BestSerie: 5,
		},
	}}
	svc := NewExportService(rankingRepo, newFakeCategoryRepo(models.Category{ID: 1, Name: "Libre R1"}))

	buf, filename, err := svc.RankingsWorkbook(context.Background(), 1, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, "classement-Libre-R1-2024-2025.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Classement", "A1")
	require.NoError(t, err)
	require.Equal(t, "Libre R1 - Saison 2024-2025", title)

	header, err := f.GetCellValue("Classement", "A2")
	require.NoError(t, err)
	require.Equal(t, "Classement", header)

	name, err := f.GetCellValue("Classement", "C3")
	require.NoError(t, err)
	require.Equal(t, "DUPONT Jean", name)

	licence, err := f.GetCellValue("Classement", "B4")
	require.NoError(t, err)
	require.Equal(t, "0234567", licence)
}

func TestRankingsWorkbookUnknownCategory(t *testing.T) {
	svc := NewExportService(&fakeRankingRepo{}, newFakeCategoryRepo())

	_, _, err := svc.RankingsWorkbook(context.Background(), 42, "2024-2025")
	require.ErrorIs(t, err, ErrCategoryNotFound)
}
