package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler produces operator exports of the account list.
type ExportHandler struct {
	Accounts store.AccountStore
}

func NewExportHandler(accounts store.AccountStore) *ExportHandler {
	return &ExportHandler{Accounts: accounts}
}

var exportHeaders = []string{"ID", "Email", "Plateforme", "Accès", "Accès accordé le", "Créé le"}

func exportRow(a *models.Account) []string {
	grantedAt := ""
	if a.AccessGrantedAt != nil {
		grantedAt = a.AccessGrantedAt.Format("2006-01-02 15:04")
	}
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		a.Email,
		a.Platform,
		a.AccessState,
		grantedAt,
		a.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// ExportCSV streams the account list as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	accounts, err := h.Accounts.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Erreur lors de l'export")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"comptes_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so Excel reads the accents
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range accounts {
		writer.Write(exportRow(&accounts[i]))
	}
}

// ExportXLSX writes the account list as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	accounts, err := h.Accounts.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Erreur lors de l'export")
		return
	}

	f := excelize.NewFile()
	sheetName := "Comptes"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Erreur lors de l'export")
		return
	}
	f.SetActiveSheet(index)

	for i, hd := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx := range accounts {
		row := idx + 2
		for col, val := range exportRow(&accounts[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "D", 16)
	f.SetColWidth(sheetName, "E", "F", 18)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"comptes_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "Erreur lors de l'export")
	}
}
