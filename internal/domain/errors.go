package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInsufficientLotQuantity = errors.New("cantidad insuficiente en el lote")
	ErrLotNotFound             = errors.New("lote no encontrado")
	ErrItemNotFound            = errors.New("ítem no encontrado")
	ErrConcurrencyConflict     = errors.New("conflicto de concurrencia")
	ErrPersistence             = errors.New("error de persistencia")
)

// ErrorKind clasifica los fallos del motor de asignación para que el caller pueda ramificar.
type ErrorKind string

const (
	KindValidation              ErrorKind = "VALIDATION"
	KindInsufficientStock       ErrorKind = "INSUFFICIENT_STOCK"
	KindInsufficientLotQuantity ErrorKind = "INSUFFICIENT_LOT_QUANTITY"
	KindLotNotFound             ErrorKind = "LOT_NOT_FOUND"
	KindItemNotFound            ErrorKind = "ITEM_NOT_FOUND"
	KindConcurrencyConflict     ErrorKind = "CONCURRENCY_CONFLICT"
	KindPersistence             ErrorKind = "PERSISTENCE"
)

var sentinelByKind = map[ErrorKind]error{
	KindValidation:              ErrInvalidInput,
	KindInsufficientStock:       ErrInsufficientStock,
	KindInsufficientLotQuantity: ErrInsufficientLotQuantity,
	KindLotNotFound:             ErrLotNotFound,
	KindItemNotFound:            ErrItemNotFound,
	KindConcurrencyConflict:     ErrConcurrencyConflict,
	KindPersistence:             ErrPersistence,
}

// IssueError error estructurado del motor: tipo, etapa donde falló y campos de contexto.
// errors.Is(err, ErrInsufficientStock) funciona según Kind.
type IssueError struct {
	Kind      ErrorKind
	Stage     string
	ItemID    string
	LotID     string
	Shortfall decimal.Decimal
	Detail    string
	Err       error
}

func (e *IssueError) Error() string {
	var b strings.Builder
	b.WriteString(sentinelByKind[e.Kind].Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.LotID != "" {
		fmt.Fprintf(&b, " (lote %s)", e.LotID)
	}
	if e.Kind == KindInsufficientStock {
		fmt.Fprintf(&b, " (faltante %s)", e.Shortfall.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is compara contra el sentinel correspondiente al Kind.
func (e *IssueError) Is(target error) bool {
	return sentinelByKind[e.Kind] == target
}

func (e *IssueError) Unwrap() error { return e.Err }

// Retryable indica si el caller puede reintentar la misma solicitud sin cambios.
func (e *IssueError) Retryable() bool {
	return e.Kind == KindConcurrencyConflict || e.Kind == KindPersistence
}

// Validation construye un error de validación.
func Validation(format string, args ...any) *IssueError {
	return &IssueError{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// InsufficientStock construye el error con el faltante.
func InsufficientStock(itemID string, shortfall decimal.Decimal) *IssueError {
	return &IssueError{Kind: KindInsufficientStock, ItemID: itemID, Shortfall: shortfall}
}

// InsufficientLotQuantity construye el error nombrando el lote.
func InsufficientLotQuantity(lotID string, shortfall decimal.Decimal) *IssueError {
	return &IssueError{Kind: KindInsufficientLotQuantity, LotID: lotID, Shortfall: shortfall}
}

// LotNotFound lote inexistente o de otro ítem.
func LotNotFound(itemID, lotID string) *IssueError {
	return &IssueError{Kind: KindLotNotFound, ItemID: itemID, LotID: lotID}
}

// ItemNotFound ítem inexistente o de otra empresa.
func ItemNotFound(itemID string) *IssueError {
	return &IssueError{Kind: KindItemNotFound, ItemID: itemID, Detail: itemID}
}

// ConcurrencyConflict el estado del lote cambió entre lectura y escritura.
func ConcurrencyConflict(lotID string) *IssueError {
	return &IssueError{Kind: KindConcurrencyConflict, LotID: lotID}
}

// AsIssueError extrae el IssueError de una cadena de errores.
func AsIssueError(err error) (*IssueError, bool) {
	var ie *IssueError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
