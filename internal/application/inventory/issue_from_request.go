package inventory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// IssueFromRequest adapta el request HTTP al caso de uso IssueInventory(ctx, IssueRequest).
// companyID y userID vienen del token; userID queda como performed_by.
func (uc *IssueInventoryUseCase) IssueFromRequest(ctx context.Context, companyID, userID string, in dto.IssueInventoryRequest) (*IssueResult, error) {
	req, err := BuildIssueRequest(companyID, userID, in)
	if err != nil {
		return nil, uc.fail(req, stageError(err, StageValidating))
	}
	return uc.IssueInventory(ctx, req)
}

// BuildIssueRequest arma la variante de intención a partir del movement_type declarado.
func BuildIssueRequest(companyID, userID string, in dto.IssueInventoryRequest) (IssueRequest, error) {
	req := IssueRequest{
		CompanyID:    companyID,
		ItemID:       in.ItemID,
		Quantity:     in.Quantity,
		FromLocation: in.FromLocation,
		Reason:       in.Reason,
		Notes:        in.Notes,
		PerformedBy:  userID,
	}
	if in.AllocationMethod != "" {
		method, err := inventory.ParseAllocationMethod(in.AllocationMethod)
		if err != nil {
			return req, err
		}
		req.Method = method
	}
	for _, a := range in.ExplicitAllocations {
		req.ExplicitAllocations = append(req.ExplicitAllocations, inventory.Allocation{LotID: a.LotID, Quantity: a.Quantity})
	}

	switch entity.MovementType(in.MovementType) {
	case entity.MovementTypeConsume:
		req.Intent = Consume{BatchID: in.BatchID, TaskID: in.TaskID}
	case entity.MovementTypeTransfer:
		req.Intent = Transfer{ToLocation: in.ToLocation}
	case entity.MovementTypeDispose:
		req.Intent = Dispose{}
	case entity.MovementTypeAdjust:
		req.Intent = Adjust{LotID: in.LotID, Direction: AdjustDirection(in.AdjustDirection)}
	case entity.MovementTypeReturn:
		req.Intent = Return{LotID: in.LotID}
	case entity.MovementTypeReserve:
		req.Intent = Reserve{}
	case entity.MovementTypeUnreserve:
		req.Intent = Unreserve{}
	default:
		return req, domain.Validation("movement_type inválido %q", in.MovementType)
	}
	return req, nil
}
