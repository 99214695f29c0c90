package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/selhani/parfumo-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Imports a catalog workbook. The first sheet holds one product per row:
// name, brand, category, sku, price, discount_price, volume_ml, gender,
// stock, description, image_url, featured. Brands and categories are
// created on first sight.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	brandRepo := repository.NewBrandRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readCatalogRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imp := importer{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		brands:       make(map[string]uint),
		categories:   make(map[string]uint),
	}

	imported := 0
	skipped := 0
	for i, row := range rows {
		if err := imp.importRow(row); err != nil {
			fmt.Printf("Row %d skipped: %v\n", i+2, err)
			skipped++
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Imported: %d, skipped: %d\n", imported, skipped)
}

type catalogRow struct {
	Name          string
	Brand         string
	Category      string
	SKU           string
	Price         float64
	DiscountPrice *float64
	VolumeML      int
	Gender        string
	Stock         int
	Description   string
	ImageURL      string
	Featured      bool
}

func readCatalogRows(filePath string) ([]catalogRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in XLSX file")
	}

	var out []catalogRow
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 5 {
			continue
		}

		r := catalogRow{
			Name:     strings.TrimSpace(cell(row, 0)),
			Brand:    strings.TrimSpace(cell(row, 1)),
			Category: strings.TrimSpace(cell(row, 2)),
			SKU:      strings.TrimSpace(cell(row, 3)),
			Gender:   strings.ToLower(strings.TrimSpace(cell(row, 7))),
		}
		if r.Name == "" || r.Brand == "" || r.Category == "" {
			continue
		}

		r.Price, _ = strconv.ParseFloat(cell(row, 4), 64)
		if discount := cell(row, 5); discount != "" {
			if v, err := strconv.ParseFloat(discount, 64); err == nil && v > 0 {
				r.DiscountPrice = &v
			}
		}
		r.VolumeML, _ = strconv.Atoi(cell(row, 6))
		r.Stock, _ = strconv.Atoi(cell(row, 8))
		r.Description = strings.TrimSpace(cell(row, 9))
		r.ImageURL = strings.TrimSpace(cell(row, 10))
		r.Featured = strings.EqualFold(cell(row, 11), "true") || cell(row, 11) == "1"

		out = append(out, r)
	}

	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

type importer struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	brands       map[string]uint
	categories   map[string]uint
}

func (imp *importer) importRow(row catalogRow) error {
	if row.Price <= 0 {
		return fmt.Errorf("invalid price for %q", row.Name)
	}

	brandID, err := imp.brandID(row.Brand)
	if err != nil {
		return err
	}
	categoryID, err := imp.categoryID(row.Category)
	if err != nil {
		return err
	}

	slug, err := util.UniqueSlug(row.Name, imp.productRepo.SlugExists)
	if err != nil {
		return err
	}

	sku := row.SKU
	if sku == "" {
		sku = strings.ToUpper(util.Slugify(row.Brand + "-" + row.Name))
	}

	gender := model.ProductGender(row.Gender)
	switch gender {
	case model.GenderMen, model.GenderWomen, model.GenderUnisex:
	default:
		gender = model.GenderUnisex
	}

	product := &model.Product{
		Name:          row.Name,
		Slug:          slug,
		SKU:           sku,
		Description:   row.Description,
		BrandID:       brandID,
		CategoryID:    categoryID,
		Price:         row.Price,
		DiscountPrice: row.DiscountPrice,
		VolumeML:      row.VolumeML,
		Gender:        gender,
		StockQuantity: row.Stock,
		ImageURL:      row.ImageURL,
		Featured:      row.Featured,
	}

	return imp.productRepo.Create(product)
}

func (imp *importer) brandID(name string) (uint, error) {
	if id, ok := imp.brands[name]; ok {
		return id, nil
	}

	slug := util.Slugify(name)
	if existing, err := imp.brandRepo.FindBySlug(slug); err == nil {
		imp.brands[name] = existing.ID
		return existing.ID, nil
	}

	brand := &model.Brand{Name: name, Slug: slug}
	if err := imp.brandRepo.Create(brand); err != nil {
		return 0, fmt.Errorf("failed to create brand %q: %w", name, err)
	}
	imp.brands[name] = brand.ID
	return brand.ID, nil
}

func (imp *importer) categoryID(name string) (uint, error) {
	if id, ok := imp.categories[name]; ok {
		return id, nil
	}

	slug := util.Slugify(name)
	if existing, err := imp.categoryRepo.FindBySlug(slug); err == nil {
		imp.categories[name] = existing.ID
		return existing.ID, nil
	}

	category := &model.Category{Name: name, Slug: slug}
	if err := imp.categoryRepo.Create(category); err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	imp.categories[name] = category.ID
	return category.ID, nil
}
