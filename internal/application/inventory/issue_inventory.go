package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Etapas de una llamada a IssueInventory. Failed es alcanzable desde cualquiera.
const (
	StageValidating = "validating"
	StagePlanning   = "planning"
	StageSplitting  = "splitting"
	StageRecording  = "recording"
	StageCommitted  = "committed"
	StageFailed     = "failed"
)

// IssueConfig parámetros del orquestador.
type IssueConfig struct {
	MaxAttempts          int  // intentos ante conflicto de concurrencia (mínimo 1)
	RequireDisposeReason bool // exigir motivo en desechos
	Now                  func() time.Time
}

// IssueInventoryUseCase punto de entrada del motor: Planner → Splitter → Recorder en una sola transacción.
// No guarda estado entre llamadas.
type IssueInventoryUseCase struct {
	txRunner TxRunner
	recorder *MovementRecorder
	cfg      IssueConfig
	log      zerolog.Logger
}

// NewIssueInventoryUseCase construye el caso de uso.
func NewIssueInventoryUseCase(txRunner TxRunner, cfg IssueConfig, log zerolog.Logger) *IssueInventoryUseCase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &IssueInventoryUseCase{
		txRunner: txRunner,
		recorder: NewMovementRecorder(),
		cfg:      cfg,
		log:      log,
	}
}

// IssueInventory valida, planifica, divide y registra de forma atómica.
// Ante ConcurrencyConflict reintenta la llamada completa hasta MaxAttempts.
func (uc *IssueInventoryUseCase) IssueInventory(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	req.Intent = normalizeIntent(req.Intent)
	if err := uc.validate(req); err != nil {
		return nil, uc.fail(req, stageError(err, StageValidating))
	}

	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		res, err := uc.runOnce(ctx, req)
		if err == nil {
			uc.log.Info().
				Str("item_id", req.ItemID).
				Str("movement_type", string(res.MovementType)).
				Str("transaction_id", res.TransactionID).
				Int("movements", len(res.Movements)).
				Int("attempt", attempt).
				Str("stage", StageCommitted).
				Msg("movimiento de inventario confirmado")
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrConcurrencyConflict) || ctx.Err() != nil {
			break
		}
		uc.log.Warn().
			Str("item_id", req.ItemID).
			Int("attempt", attempt).
			Err(err).
			Msg("conflicto de concurrencia, reintentando")
	}
	return nil, uc.fail(req, lastErr)
}

func (uc *IssueInventoryUseCase) runOnce(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	stage := StagePlanning
	var result *IssueResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		repos := txRepos{items: itemRepo, lots: lotRepo, movs: movRepo}

		// Bloquea el ítem: frontera de serialización de leer-asignar-mutar.
		item, err := itemRepo.GetForUpdate(ctx, req.CompanyID, req.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ItemNotFound(req.ItemID)
		}
		if !item.IsActive {
			return domain.Validation("el ítem %s está desactivado", item.ID)
		}

		in := recordInput{
			TransactionID: uuid.New().String(),
			CompanyID:     req.CompanyID,
			PerformedBy:   req.PerformedBy,
			Reason:        req.Reason,
			Notes:         req.Notes,
			Now:           uc.cfg.Now(),
		}
		result = &IssueResult{
			TransactionID: in.TransactionID,
			ItemID:        item.ID,
			MovementType:  req.Intent.MovementType(),
		}

		var movements []*entity.Movement
		var applied []inventory.Allocation

		switch intent := req.Intent.(type) {
		case Consume, Dispose:
			if c, ok := intent.(Consume); ok {
				in.BatchID, in.TaskID = c.BatchID, c.TaskID
			}
			plan, err := uc.plan(ctx, repos, item, req, "")
			if err != nil {
				return err
			}
			stage = StageRecording
			movements, err = uc.recorder.RecordOutbound(ctx, repos, item, plan, intent.MovementType(), in)
			if err != nil {
				return err
			}
			applied = plan.Allocations

		case Transfer:
			plan, err := uc.plan(ctx, repos, item, req, intent.ToLocation)
			if err != nil {
				return err
			}
			stage = StageSplitting
			var created []string
			movements, created, err = uc.recorder.RecordTransfer(ctx, repos, item, plan, intent.ToLocation, in)
			if err != nil {
				return err
			}
			result.CreatedLotIDs = created
			applied = plan.Allocations

		case Adjust:
			stage = StageRecording
			mov, err := uc.recorder.RecordAdjust(ctx, repos, item, intent, req.Quantity, in)
			if err != nil {
				return err
			}
			movements = []*entity.Movement{mov}
			applied = []inventory.Allocation{{LotID: intent.LotID, Quantity: req.Quantity}}

		case Return:
			stage = StageRecording
			mov, err := uc.recorder.RecordReturn(ctx, repos, item, intent, req.Quantity, in)
			if err != nil {
				return err
			}
			movements = []*entity.Movement{mov}
			applied = []inventory.Allocation{{LotID: intent.LotID, Quantity: req.Quantity}}

		case Reserve, Unreserve:
			stage = StageRecording
			mov, err := uc.recorder.RecordReservation(ctx, repos, item, intent.MovementType(), req.Quantity, in)
			if err != nil {
				return err
			}
			movements = []*entity.Movement{mov}
			applied = []inventory.Allocation{{Quantity: req.Quantity}}
		}

		result.Movements = movements
		result.AllocationsApplied = applied
		result.MovementsCreated = make([]string, 0, len(movements))
		for _, m := range movements {
			result.MovementsCreated = append(result.MovementsCreated, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, stage, req.ItemID)
	}
	return result, nil
}

// plan arma la solicitud al Allocation Planner con el estado leído dentro de la transacción.
func (uc *IssueInventoryUseCase) plan(ctx context.Context, repos txRepos, item *entity.Item, req IssueRequest, exclude string) (inventory.Plan, error) {
	preq := inventory.PlanRequest{
		ItemID:          item.ID,
		Quantity:        req.Quantity,
		Method:          req.Method,
		Location:        req.FromLocation,
		ExcludeLocation: exclude,
	}
	if len(req.ExplicitAllocations) > 0 {
		byID := make(map[string]*entity.Lot, len(req.ExplicitAllocations))
		for _, a := range req.ExplicitAllocations {
			if a.LotID == "" {
				continue
			}
			lot, err := repos.lots.GetByID(ctx, a.LotID)
			if err != nil {
				return inventory.Plan{}, err
			}
			if lot != nil {
				byID[lot.ID] = lot
			}
		}
		return inventory.PlanExplicit(preq, req.ExplicitAllocations, byID)
	}

	active, err := repos.lots.ListActiveByItem(ctx, item.ID, req.FromLocation)
	if err != nil {
		return inventory.Plan{}, err
	}
	hasLots := len(active) > 0
	if !hasLots {
		n, err := repos.lots.CountByItem(ctx, item.ID)
		if err != nil {
			return inventory.Plan{}, err
		}
		hasLots = n > 0
	}
	return inventory.PlanAutomatic(preq, inventory.StockSnapshot{
		Lots:           active,
		HasLots:        hasLots,
		LegacyQuantity: item.CurrentQuantity,
		LegacyLocation: item.StorageLocation,
	})
}

func (uc *IssueInventoryUseCase) validate(req IssueRequest) error {
	if strings.TrimSpace(req.CompanyID) == "" || strings.TrimSpace(req.ItemID) == "" {
		return domain.Validation("company_id e item_id son obligatorios")
	}
	if strings.TrimSpace(req.PerformedBy) == "" {
		return domain.Validation("performed_by es obligatorio")
	}
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return domain.Validation("la cantidad debe ser mayor que cero")
	}
	if !entity.WithinScale(req.Quantity) {
		return domain.Validation("la cantidad admite a lo sumo %d decimales", entity.QuantityScale)
	}
	if req.Intent == nil {
		return domain.Validation("tipo de movimiento obligatorio")
	}

	if usesPlanner(req.Intent) {
		switch req.Method {
		case inventory.MethodFIFO, inventory.MethodLIFO, inventory.MethodFEFO:
		case inventory.MethodManual:
			if len(req.ExplicitAllocations) == 0 {
				return domain.Validation("el método manual requiere asignaciones explícitas")
			}
		case "":
			if len(req.ExplicitAllocations) == 0 {
				return domain.Validation("allocation_method es obligatorio")
			}
		default:
			return domain.Validation("método de asignación desconocido %q", req.Method)
		}
	} else if len(req.ExplicitAllocations) > 0 {
		return domain.Validation("%s no admite asignaciones explícitas", req.Intent.MovementType())
	}

	switch intent := req.Intent.(type) {
	case Transfer:
		if strings.TrimSpace(intent.ToLocation) == "" {
			return domain.Validation("to_location es obligatorio en traslados")
		}
		if intent.ToLocation == req.FromLocation {
			return domain.Validation("origen y destino son iguales")
		}
	case Dispose:
		if uc.cfg.RequireDisposeReason && strings.TrimSpace(req.Reason) == "" {
			return domain.Validation("el desecho requiere un motivo")
		}
	case Adjust:
		if intent.Direction != AdjustIncrease && intent.Direction != AdjustDecrease {
			return domain.Validation("dirección de ajuste inválida %q", intent.Direction)
		}
	}
	return nil
}

// fail registra el fallo con el nivel según su tipo y lo devuelve.
func (uc *IssueInventoryUseCase) fail(req IssueRequest, err error) error {
	ie, ok := domain.AsIssueError(err)
	if !ok {
		ie = &domain.IssueError{Kind: domain.KindPersistence, ItemID: req.ItemID, Err: err}
	}
	stage := ie.Stage
	if stage == "" {
		stage = StageFailed
	}
	ev := uc.log.Debug()
	if ie.Kind == domain.KindPersistence || ie.Kind == domain.KindConcurrencyConflict {
		ev = uc.log.Error()
	}
	ev.Str("item_id", req.ItemID).
		Str("kind", string(ie.Kind)).
		Str("stage", stage).
		Err(err).
		Msg("movimiento de inventario rechazado")
	return ie
}

// classify convierte cualquier error de la transacción en IssueError con la etapa donde ocurrió.
func classify(err error, stage, itemID string) error {
	if ie, ok := domain.AsIssueError(err); ok {
		if ie.Stage == "" {
			ie.Stage = stage
		}
		if ie.ItemID == "" {
			ie.ItemID = itemID
		}
		return ie
	}
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		return &domain.IssueError{Kind: domain.KindConcurrencyConflict, Stage: stage, ItemID: itemID, Err: err}
	}
	return &domain.IssueError{Kind: domain.KindPersistence, Stage: stage, ItemID: itemID, Err: err}
}

func stageError(err error, stage string) error {
	if ie, ok := domain.AsIssueError(err); ok && ie.Stage == "" {
		ie.Stage = stage
	}
	return err
}

// normalizeIntent acepta punteros a las variantes y devuelve el valor.
func normalizeIntent(intent Intent) Intent {
	switch v := intent.(type) {
	case *Consume:
		if v != nil {
			return *v
		}
	case *Transfer:
		if v != nil {
			return *v
		}
	case *Dispose:
		if v != nil {
			return *v
		}
	case *Adjust:
		if v != nil {
			return *v
		}
	case *Return:
		if v != nil {
			return *v
		}
	case *Reserve:
		if v != nil {
			return *v
		}
	case *Unreserve:
		if v != nil {
			return *v
		}
	default:
		return intent
	}
	return nil
}
