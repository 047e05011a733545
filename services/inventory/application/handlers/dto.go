package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
)

// ItemRequest is the request body for POST /inventory/items and
// PUT /inventory/items/{id}.
type ItemRequest struct {
	LedgerNo        string `json:"ledgerNo"        validate:"required,ledgerno,max=50"         example:"AB123"`
	ItemName        string `json:"itemName"        validate:"required,itemname,max=100"        example:"Chair"`
	Quantity        *int   `json:"quantity"        validate:"required,gte=0,lte=2147483647"    example:"5"`
	Unit            string `json:"unit"            validate:"required,unit"                    example:"piece"`
	ProcurementDate string `json:"procurementDate" validate:"required,isodate"                 example:"2024-01-01"`
	Custodian       string `json:"custodian"       validate:"omitempty,uuid"`
} // @name ItemRequest

func (req *ItemRequest) input() appsvcs.ItemInput {
	in := appsvcs.ItemInput{
		LedgerNo: req.LedgerNo,
		ItemName: req.ItemName,
		Quantity: *req.Quantity,
		Unit:     req.Unit,
	}
	// formats already checked by the isodate and uuid tags
	in.ProcurementDate, _ = time.Parse(validator.DateLayout, req.ProcurementDate)
	if req.Custodian != "" {
		id := uuid.MustParse(req.Custodian)
		in.Custodian = &id
	}
	return in
}

// CustodianRequest is the request body for PUT /inventory/items/{id}/custodian.
type CustodianRequest struct {
	Custodian string `json:"custodian" validate:"required,uuid"`
} // @name CustodianRequest

// CondemnRequest is the request body for POST /inventory/items/condemn.
type CondemnRequest struct {
	ItemIDs []string `json:"itemIds" validate:"dive,uuid"`
} // @name CondemnRequest

func (req *CondemnRequest) ids() []uuid.UUID {
	ids := make([]uuid.UUID, len(req.ItemIDs))
	for i, raw := range req.ItemIDs {
		ids[i] = uuid.MustParse(raw)
	}
	return ids
}

// ItemResponse is the public view of an item. Account references are
// resolved to display fields and are null when the account no longer exists.
type ItemResponse struct {
	ID              uuid.UUID             `json:"id"`
	LedgerNo        string                `json:"ledgerNo"        example:"AB123"`
	ItemName        string                `json:"itemName"        example:"Chair"`
	Quantity        int                   `json:"quantity"        example:"5"`
	Unit            string                `json:"unit"            example:"piece"`
	Group           string                `json:"group"           example:"IT"`
	ProcurementDate string                `json:"procurementDate" example:"2024-01-01"`
	Status          string                `json:"status"          example:"available"`
	CustodianID     *uuid.UUID            `json:"custodianId"`
	Custodian       *repositories.UserRef `json:"custodian"`
	IssuedTo        *repositories.UserRef `json:"issuedTo"`
	IssuedDate      *time.Time            `json:"issuedDate"`
	AssignedDate    *time.Time            `json:"assignedDate"`
	CreatedBy       *repositories.UserRef `json:"createdBy"`
	DeletedAt       *time.Time            `json:"deletedAt,omitempty"`
	CondemnedAt     *time.Time            `json:"condemnedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
} // @name ItemResponse

func toItemResponse(v *appsvcs.ItemView) ItemResponse {
	return ItemResponse{
		ID:              v.ID,
		LedgerNo:        v.LedgerNo.String(),
		ItemName:        v.ItemName.String(),
		Quantity:        v.Quantity,
		Unit:            v.Unit.String(),
		Group:           v.Group,
		ProcurementDate: v.ProcurementDate.Format(validator.DateLayout),
		Status:          string(v.Status()),
		CustodianID:     v.CustodianID,
		Custodian:       v.Custodian,
		IssuedTo:        v.IssuedTo,
		IssuedDate:      v.IssuedDate,
		AssignedDate:    v.AssignedDate,
		CreatedBy:       v.Creator,
		DeletedAt:       v.DeletedAt,
		CondemnedAt:     v.CondemnedAt,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func toItemResponses(views []*appsvcs.ItemView) []ItemResponse {
	out := make([]ItemResponse, len(views))
	for i, v := range views {
		out[i] = toItemResponse(v)
	}
	return out
}

// ItemEnvelope wraps a single item.
type ItemEnvelope struct {
	Item ItemResponse `json:"item"`
} // @name ItemEnvelope

// ItemsEnvelope wraps a list of items.
type ItemsEnvelope struct {
	Items []ItemResponse `json:"items"`
} // @name ItemsEnvelope

// CustodiansEnvelope lists custodian candidates.
type CustodiansEnvelope struct {
	Users []repositories.UserRef `json:"users"`
} // @name CustodiansEnvelope

// CondemnResponse reports how many items were condemned.
type CondemnResponse struct {
	Success   bool `json:"success"   example:"true"`
	Condemned int  `json:"condemned" example:"2"`
} // @name CondemnResponse

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
} // @name ItemSuccessResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error  string            `json:"error"            example:"Item not found"`
	Fields map[string]string `json:"fields,omitempty"`
} // @name ItemErrorResponse
