package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

// BlobFetcher retrieves externally stored attachment blobs.
type BlobFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// httpBlobFetcher fetches blobs over HTTP
type httpBlobFetcher struct {
	client *http.Client
}

// NewHTTPBlobFetcher creates a blob fetcher backed by an HTTP client
func NewHTTPBlobFetcher() BlobFetcher {
	return &httpBlobFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *httpBlobFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from blob store", domain.ErrUpstreamFetch, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ExportFile is one export payload ready to be sent as an attachment.
type ExportFile struct {
	Data        []byte
	FileName    string
	ContentType string
}

// ExportService produces CSV/workbook exports and attachment downloads. All
// exports reuse the same filter/sort pipeline as the listings, pagination
// disabled.
type ExportService struct {
	transactionRepo *repositories.TransactionRepository
	attachmentRepo  *repositories.AttachmentRepository
	fetcher         BlobFetcher
}

// NewExportService creates a new export service
func NewExportService(
	transactionRepo *repositories.TransactionRepository,
	attachmentRepo *repositories.AttachmentRepository,
	fetcher BlobFetcher,
) *ExportService {
	return &ExportService{
		transactionRepo: transactionRepo,
		attachmentRepo:  attachmentRepo,
		fetcher:         fetcher,
	}
}

var exportHeader = []string{
	"Transaction Number", "Date", "Type", "Category",
	"Payment Method", "Amount", "Description", "Client",
}

// ExportCSV exports the full matching set as CSV
func (s *ExportService) ExportCSV(ctx context.Context, q *repositories.TransactionQuery) (*ExportFile, error) {
	if q.SortBy != "" && !repositories.IsTransactionSortKey(q.SortBy) {
		return nil, ErrInvalidSortKey
	}

	transactions, err := s.transactionRepo.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, tx := range transactions {
		if err := w.Write(exportRow(tx)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		FileName:    exportFileName("csv"),
		ContentType: "text/csv",
	}, nil
}

// ExportXLSX exports the full matching set as a styled workbook with a
// grand-total row. The styling carries no semantics; it reproduces the
// spreadsheet users download.
func (s *ExportService) ExportXLSX(ctx context.Context, q *repositories.TransactionQuery) (*ExportFile, error) {
	if q.SortBy != "" && !repositories.IsTransactionSortKey(q.SortBy) {
		return nil, ErrInvalidSortKey
	}

	transactions, err := s.transactionRepo.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return nil, err
	}

	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	f.SetCellStyle(sheet, "A1", "H1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "E", 15)
	f.SetColWidth(sheet, "G", "H", 30)

	var grandTotal float64
	for i, tx := range transactions {
		row := i + 2
		signed := tx.Amount
		if tx.Type == models.TxTypeExpense {
			signed = -tx.Amount
		}
		grandTotal += signed

		values := []interface{}{
			tx.TransactionNumber,
			tx.Date.Format("2006-01-02"),
			tx.Type,
			tx.Category,
			tx.PaymentMethod,
			tx.Amount,
			tx.Description,
			clientName(tx),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	totalRow := len(transactions) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	f.SetCellValue(sheet, labelCell, "Net Total")
	f.SetCellValue(sheet, valueCell, grandTotal)
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeader), totalRow)
	f.SetCellStyle(sheet, labelCell, endCell, totalStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		FileName:    exportFileName("xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// DownloadAttachments fetches a transaction's attachment blobs. Exactly one
// attachment streams through directly; two or more are bundled into a zip.
// Zero attachments is NotFound. Inside a bundle a failed fetch is logged and
// skipped; only a bundle with no successful entry fails outright.
func (s *ExportService) DownloadAttachments(ctx context.Context, userID, transactionID uint) (*ExportFile, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	if transaction.UserID != userID {
		return nil, domain.ErrForbidden
	}

	attachments, err := s.attachmentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(attachments) == 0 {
		return nil, domain.ErrNotFound
	}

	if len(attachments) == 1 {
		att := attachments[0]
		data, err := s.fetcher.Fetch(ctx, att.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFetch, att.FileName)
		}
		return &ExportFile{
			Data:        data,
			FileName:    att.FileName,
			ContentType: contentTypeFor(att.FileName),
		}, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	bundled := 0
	for _, att := range attachments {
		data, err := s.fetcher.Fetch(ctx, att.URL)
		if err != nil {
			log.Printf("skipping attachment %q in bundle: %v", att.FileName, err)
			continue
		}
		entry, err := zw.Create(att.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(data); err != nil {
			return nil, err
		}
		bundled++
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if bundled == 0 {
		return nil, domain.ErrUpstreamFetch
	}

	return &ExportFile{
		Data:        buf.Bytes(),
		FileName:    fmt.Sprintf("%s-attachments.zip", transaction.TransactionNumber),
		ContentType: "application/zip",
	}, nil
}

func exportRow(tx *models.Transaction) []string {
	return []string{
		tx.TransactionNumber,
		tx.Date.Format("2006-01-02"),
		tx.Type,
		tx.Category,
		tx.PaymentMethod,
		strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		tx.Description,
		clientName(tx),
	}
}

func clientName(tx *models.Transaction) string {
	if tx.Client != nil {
		return tx.Client.Name
	}
	return ""
}

// exportFileName stamps the export with the current date
func exportFileName(ext string) string {
	return fmt.Sprintf("transactions-%s.%s", time.Now().Format("2006-01-02"), ext)
}

func contentTypeFor(fileName string) string {
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if ctype == "" {
		return "application/octet-stream"
	}
	return ctype
}
