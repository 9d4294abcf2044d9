package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	appinv "github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

func TestBuildIssueRequest_MapeaIntenciones(t *testing.T) {
	base := dto.IssueInventoryRequest{ItemID: testItemID, Quantity: qty("5")}

	cases := []struct {
		movementType string
		mutate       func(in *dto.IssueInventoryRequest)
		want         appinv.Intent
	}{
		{"consume", func(in *dto.IssueInventoryRequest) { in.BatchID, in.TaskID = "b", "t" }, appinv.Consume{BatchID: "b", TaskID: "t"}},
		{"transfer", func(in *dto.IssueInventoryRequest) { in.ToLocation = "Vault-2" }, appinv.Transfer{ToLocation: "Vault-2"}},
		{"dispose", nil, appinv.Dispose{}},
		{"adjust", func(in *dto.IssueInventoryRequest) { in.LotID, in.AdjustDirection = "A", "decrease" }, appinv.Adjust{LotID: "A", Direction: appinv.AdjustDecrease}},
		{"return", func(in *dto.IssueInventoryRequest) { in.LotID = "A" }, appinv.Return{LotID: "A"}},
		{"reserve", nil, appinv.Reserve{}},
		{"unreserve", nil, appinv.Unreserve{}},
	}
	for _, tc := range cases {
		t.Run(tc.movementType, func(t *testing.T) {
			in := base
			in.MovementType = tc.movementType
			if tc.mutate != nil {
				tc.mutate(&in)
			}
			req, err := appinv.BuildIssueRequest(testCompanyID, testUserID, in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, req.Intent)
			assert.Equal(t, testUserID, req.PerformedBy)
			assert.Equal(t, testCompanyID, req.CompanyID)
		})
	}
}

func TestBuildIssueRequest_MetodoYAsignaciones(t *testing.T) {
	req, err := appinv.BuildIssueRequest(testCompanyID, testUserID, dto.IssueInventoryRequest{
		ItemID:           testItemID,
		Quantity:         qty("5"),
		MovementType:     "consume",
		AllocationMethod: "fefo",
		ExplicitAllocations: []dto.LotAllocationRequest{
			{LotID: "A", Quantity: qty("5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.MethodFEFO, req.Method)
	assert.Equal(t, []inventory.Allocation{{LotID: "A", Quantity: qty("5")}}, req.ExplicitAllocations)
}

func TestBuildIssueRequest_RechazaTipos(t *testing.T) {
	for _, mt := range []string{"receive", "", "teleport"} {
		_, err := appinv.BuildIssueRequest(testCompanyID, testUserID, dto.IssueInventoryRequest{
			ItemID: testItemID, Quantity: qty("1"), MovementType: mt,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "movement_type %q", mt)
	}

	_, err := appinv.BuildIssueRequest(testCompanyID, testUserID, dto.IssueInventoryRequest{
		ItemID: testItemID, Quantity: qty("1"), MovementType: "consume", AllocationMethod: "random",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssueFromRequest_ErrorConEtapa(t *testing.T) {
	f := newFixture(t, nil)
	f.seedABC()

	_, err := f.uc.IssueFromRequest(context.Background(), testCompanyID, testUserID, dto.IssueInventoryRequest{
		ItemID: testItemID, Quantity: qty("1"), MovementType: "receive",
	})
	ie, ok := domain.AsIssueError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, ie.Kind)
	assert.Equal(t, appinv.StageValidating, ie.Stage)

	res, err := f.uc.IssueFromRequest(context.Background(), testCompanyID, testUserID, dto.IssueInventoryRequest{
		ItemID: testItemID, Quantity: qty("1"), MovementType: "consume", AllocationMethod: "LIFO",
	})
	require.NoError(t, err)
	assert.Equal(t, "C", res.AllocationsApplied[0].LotID)
}
