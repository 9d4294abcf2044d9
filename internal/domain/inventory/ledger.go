package inventory

import (
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LotBalance compara lo recibido menos lo restante contra lo que registra el libro.
type LotBalance struct {
	LotID         string
	LotCode       string
	Received      decimal.Decimal
	Remaining     decimal.Decimal
	LedgerOutflow decimal.Decimal
	Discrepancy   decimal.Decimal // (Received - Remaining) - LedgerOutflow; cero si cuadra
}

// Balanced indica si el lote cumple la ley de conservación.
func (b LotBalance) Balanced() bool { return b.Discrepancy.IsZero() }

// BalanceLot calcula el balance de un lote a partir de sus movimientos.
// Solo cuentan los movimientos cuyo LotID es el del lote: el lote nacido de un split
// no tiene salidas propias hasta que se consume.
func BalanceLot(lot *entity.Lot, movements []*entity.Movement) LotBalance {
	outflow := decimal.Zero
	for _, m := range movements {
		if m.LotID != lot.ID {
			continue
		}
		outflow = outflow.Add(m.Outflow())
	}
	consumed := lot.QuantityReceived.Sub(lot.QuantityRemaining)
	return LotBalance{
		LotID:         lot.ID,
		LotCode:       lot.LotCode,
		Received:      lot.QuantityReceived,
		Remaining:     lot.QuantityRemaining,
		LedgerOutflow: outflow,
		Discrepancy:   consumed.Sub(outflow),
	}
}
