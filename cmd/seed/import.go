package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{"company_id", "item_id", "lot_code", "quantity", "location", "received_date"}

// lotRecord fila del CSV de recepción de lotes.
type lotRecord struct {
	CompanyID         string
	ItemID            string
	SKU               string
	Name              string
	UnitOfMeasure     string
	LotCode           string
	Quantity          decimal.Decimal
	Location          string
	ReceivedDate      time.Time
	ExpiryDate        *time.Time
	CostPerUnit       *decimal.Decimal
	SupplierID        string
	SupplierLotNumber string
	ComplianceUID     string
}

// parseLots lee el CSV; charset "latin1" decodifica exportaciones ISO-8859-1.
func parseLots(r io.Reader, charset string) ([]lotRecord, error) {
	switch strings.ToLower(charset) {
	case "", "utf8", "utf-8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV vacío")
	}
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}

	var out []lotRecord
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		rec, err := buildRecord(get)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func buildRecord(get func(string) string) (lotRecord, error) {
	rec := lotRecord{
		CompanyID:         get("company_id"),
		ItemID:            get("item_id"),
		SKU:               get("sku"),
		Name:              get("name"),
		UnitOfMeasure:     get("unit_of_measure"),
		LotCode:           get("lot_code"),
		Location:          get("location"),
		SupplierID:        get("supplier_id"),
		SupplierLotNumber: get("supplier_lot_number"),
		ComplianceUID:     get("compliance_package_uid"),
	}
	for _, name := range requiredColumns {
		if get(name) == "" {
			return rec, fmt.Errorf("%s vacío", name)
		}
	}

	q, err := decimal.NewFromString(get("quantity"))
	if err != nil || !q.GreaterThan(decimal.Zero) || !entity.WithinScale(q) {
		return rec, fmt.Errorf("quantity inválida %q", get("quantity"))
	}
	rec.Quantity = q

	if rec.ReceivedDate, err = time.Parse(dateLayout, get("received_date")); err != nil {
		return rec, fmt.Errorf("received_date: %w", err)
	}
	if s := get("expiry_date"); s != "" {
		exp, err := time.Parse(dateLayout, s)
		if err != nil {
			return rec, fmt.Errorf("expiry_date: %w", err)
		}
		rec.ExpiryDate = &exp
	}
	if s := get("cost_per_unit"); s != "" {
		c, err := decimal.NewFromString(s)
		if err != nil || c.IsNegative() || !entity.WithinScale(c) {
			return rec, fmt.Errorf("cost_per_unit inválido %q", s)
		}
		rec.CostPerUnit = &c
	}
	return rec, nil
}

// loadSummary resultado de una carga.
type loadSummary struct {
	ItemsCreated int
	LotsCreated  int
}

// loadLots registra cada lote con su movimiento receive en una transacción propia.
func loadLots(ctx context.Context, runner inventory.TxRunner, records []lotRecord, performedBy string) (loadSummary, error) {
	var sum loadSummary
	for i, rec := range records {
		newItem := false
		err := runner.Run(ctx, func(
			items repository.ItemRepository,
			lots repository.LotRepository,
			movs repository.MovementRepository,
		) error {
			item, err := items.GetByID(ctx, rec.CompanyID, rec.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				item = &entity.Item{
					ID:              rec.ItemID,
					CompanyID:       rec.CompanyID,
					SKU:             rec.SKU,
					Name:            rec.Name,
					UnitOfMeasure:   rec.UnitOfMeasure,
					StorageLocation: rec.Location,
					IsActive:        true,
				}
				if err := items.Create(ctx, item); err != nil {
					return err
				}
				newItem = true
			}

			lot := &entity.Lot{
				CompanyID:            rec.CompanyID,
				ItemID:               item.ID,
				LotCode:              rec.LotCode,
				QuantityReceived:     rec.Quantity,
				QuantityRemaining:    rec.Quantity,
				UnitOfMeasure:        firstNonEmpty(rec.UnitOfMeasure, item.UnitOfMeasure),
				StorageLocation:      rec.Location,
				ReceivedDate:         rec.ReceivedDate,
				ExpiryDate:           rec.ExpiryDate,
				SupplierID:           rec.SupplierID,
				SupplierLotNumber:    rec.SupplierLotNumber,
				CostPerUnit:          rec.CostPerUnit,
				CompliancePackageUID: rec.ComplianceUID,
				IsActive:             true,
			}
			if err := lots.Create(ctx, lot); err != nil {
				return err
			}

			unit := lot.UnitCost()
			return movs.Create(ctx, &entity.Movement{
				TransactionID: uuid.New().String(),
				CompanyID:     rec.CompanyID,
				ItemID:        item.ID,
				LotID:         lot.ID,
				Type:          entity.MovementTypeReceive,
				Quantity:      rec.Quantity,
				UnitCost:      unit,
				TotalCost:     rec.Quantity.Mul(unit),
				ToLocation:    rec.Location,
				Reason:        "carga inicial",
				PerformedBy:   performedBy,
				CreatedAt:     time.Now().UTC(),
			})
		})
		if err != nil {
			return sum, fmt.Errorf("registro %d (%s/%s): %w", i+1, rec.ItemID, rec.LotCode, err)
		}
		if newItem {
			sum.ItemsCreated++
		}
		sum.LotsCreated++
	}
	return sum, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
