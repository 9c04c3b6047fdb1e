package leave

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const auditSheet = "Audit Log"

var auditHeader = []any{"Occurred At", "Leave Request", "Action", "From", "To", "Actor Kind", "Actor ID", "Actor", "Role"}

// WriteAuditWorkbook renders audit entries, newest first as given, into a
// single-sheet workbook.
func WriteAuditWorkbook(records []TransitionResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", auditSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(auditSheet, "A1", &auditHeader); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(auditSheet, 1, 1, style); err != nil {
		return nil, err
	}

	for i, r := range records {
		actorID := ""
		if r.ActorID != nil {
			actorID = *r.ActorID
		}
		row := []any{r.OccurredAt, r.LeaveRequestID, r.Action, r.FromStatus, r.ToStatus, r.ActorKind, actorID, r.Actor.Name, r.Actor.Role}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(auditSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(auditSheet, "A", "I", 22); err != nil {
		return nil, err
	}
	return f, nil
}
