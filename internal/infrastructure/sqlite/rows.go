package sqlite

import (
	"database/sql"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type itemRow struct {
	ID               string          `db:"id"`
	CompanyID        string          `db:"company_id"`
	SKU              string          `db:"sku"`
	Name             string          `db:"name"`
	UnitOfMeasure    string          `db:"unit_of_measure"`
	CurrentQuantity  decimal.Decimal `db:"current_quantity"`
	ReservedQuantity decimal.Decimal `db:"reserved_quantity"`
	StorageLocation  string          `db:"storage_location"`
	IsActive         bool            `db:"is_active"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r itemRow) entity() *entity.Item {
	return &entity.Item{
		ID:               r.ID,
		CompanyID:        r.CompanyID,
		SKU:              r.SKU,
		Name:             r.Name,
		UnitOfMeasure:    r.UnitOfMeasure,
		CurrentQuantity:  r.CurrentQuantity,
		ReservedQuantity: r.ReservedQuantity,
		StorageLocation:  r.StorageLocation,
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type lotRow struct {
	ID                   string              `db:"id"`
	Seq                  int64               `db:"seq"`
	CompanyID            string              `db:"company_id"`
	ItemID               string              `db:"item_id"`
	ParentLotID          sql.NullString      `db:"parent_lot_id"`
	LotCode              string              `db:"lot_code"`
	QuantityReceived     decimal.Decimal     `db:"quantity_received"`
	QuantityRemaining    decimal.Decimal     `db:"quantity_remaining"`
	UnitOfMeasure        string              `db:"unit_of_measure"`
	StorageLocation      string              `db:"storage_location"`
	ReceivedDate         time.Time           `db:"received_date"`
	ExpiryDate           sql.NullTime        `db:"expiry_date"`
	ManufactureDate      sql.NullTime        `db:"manufacture_date"`
	SupplierID           sql.NullString      `db:"supplier_id"`
	SupplierLotNumber    sql.NullString      `db:"supplier_lot_number"`
	CostPerUnit          decimal.NullDecimal `db:"cost_per_unit"`
	CompliancePackageUID sql.NullString      `db:"compliance_package_uid"`
	IsActive             bool                `db:"is_active"`
	CreatedAt            time.Time           `db:"created_at"`
	UpdatedAt            time.Time           `db:"updated_at"`
}

func (r lotRow) entity() *entity.Lot {
	l := &entity.Lot{
		ID:                   r.ID,
		CompanyID:            r.CompanyID,
		ItemID:               r.ItemID,
		ParentLotID:          r.ParentLotID.String,
		LotCode:              r.LotCode,
		QuantityReceived:     r.QuantityReceived,
		QuantityRemaining:    r.QuantityRemaining,
		UnitOfMeasure:        r.UnitOfMeasure,
		StorageLocation:      r.StorageLocation,
		ReceivedDate:         r.ReceivedDate,
		ExpiryDate:           timePtr(r.ExpiryDate),
		ManufactureDate:      timePtr(r.ManufactureDate),
		SupplierID:           r.SupplierID.String,
		SupplierLotNumber:    r.SupplierLotNumber.String,
		CompliancePackageUID: r.CompliancePackageUID.String,
		IsActive:             r.IsActive,
		Sequence:             r.Seq,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.CostPerUnit.Valid {
		c := r.CostPerUnit.Decimal
		l.CostPerUnit = &c
	}
	return l
}

type movementRow struct {
	ID               string          `db:"id"`
	TransactionID    string          `db:"transaction_id"`
	CompanyID        string          `db:"company_id"`
	ItemID           string          `db:"item_id"`
	LotID            sql.NullString  `db:"lot_id"`
	DestinationLotID sql.NullString  `db:"destination_lot_id"`
	MovementType     string          `db:"movement_type"`
	Quantity         decimal.Decimal `db:"quantity"`
	UnitCost         decimal.Decimal `db:"unit_cost"`
	TotalCost        decimal.Decimal `db:"total_cost"`
	FromLocation     sql.NullString  `db:"from_location"`
	ToLocation       sql.NullString  `db:"to_location"`
	BatchID          sql.NullString  `db:"batch_id"`
	TaskID           sql.NullString  `db:"task_id"`
	Reason           sql.NullString  `db:"reason"`
	Notes            sql.NullString  `db:"notes"`
	PerformedBy      string          `db:"performed_by"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (r movementRow) entity() *entity.Movement {
	return &entity.Movement{
		ID:               r.ID,
		TransactionID:    r.TransactionID,
		CompanyID:        r.CompanyID,
		ItemID:           r.ItemID,
		LotID:            r.LotID.String,
		DestinationLotID: r.DestinationLotID.String,
		Type:             entity.MovementType(r.MovementType),
		Quantity:         r.Quantity,
		UnitCost:         r.UnitCost,
		TotalCost:        r.TotalCost,
		FromLocation:     r.FromLocation.String,
		ToLocation:       r.ToLocation.String,
		BatchID:          r.BatchID.String,
		TaskID:           r.TaskID.String,
		Reason:           r.Reason.String,
		Notes:            r.Notes.String,
		PerformedBy:      r.PerformedBy,
		CreatedAt:        r.CreatedAt,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
