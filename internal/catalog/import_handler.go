package catalog

import (
	"log"
	"strconv"
	"strings"

	"batchworks-backend/internal/audit"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type ImportCostsResponse struct {
	Updated   int      `json:"updated"`
	Unmatched []string `json:"unmatched"`
	Errors    []string `json:"errors"`
}

// POST /api/products/import-costs
// Multipart upload of an .xlsx price list: column A = SKU, column B =
// purchase cost excl. tax, optional column C = density (kg/L). A header row
// is detected and skipped.
func ImportCostsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open file: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read Excel file: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file has no sheets")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read sheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file is empty")
		}

		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "SKU") || strings.Contains(firstCell, "PRODUCT") || strings.Contains(firstCell, "CODE") {
				startIndex = 1
			}
		}

		resp := ImportCostsResponse{Unmatched: []string{}, Errors: []string{}}
		userID, userName := currentUser(c)

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 2 {
				continue
			}

			sku := strings.TrimSpace(row[0])
			if sku == "" {
				continue
			}

			cost, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", "."), 64)
			if err != nil || cost < 0 {
				resp.Errors = append(resp.Errors, "row "+strconv.Itoa(i+1)+": invalid cost value")
				continue
			}

			var product models.Product
			if err := database.DB.Where("sku = ?", sku).First(&product).Error; err != nil {
				resp.Unmatched = append(resp.Unmatched, sku)
				continue
			}
			before := product

			product.PurchaseCostExTax = &cost
			if len(row) >= 3 {
				if density, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[2]), ",", "."), 64); err == nil && density > 0 {
					product.Density = &density
				}
			}

			if err := database.DB.Save(&product).Error; err != nil {
				resp.Errors = append(resp.Errors, "row "+strconv.Itoa(i+1)+": could not update "+sku)
				continue
			}

			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionUpdate,
				Description: "Cost imported for " + sku,
				Before:      before,
				After:       product,
			})
			resp.Updated++
		}

		log.Printf("Cost import finished: %d updated, %d unmatched, %d errors",
			resp.Updated, len(resp.Unmatched), len(resp.Errors))

		return c.JSON(resp)
	}
}
