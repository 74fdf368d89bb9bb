package config

import "github.com/danmuck/sib1ctl/internal/rrc"

// Plan converts the file form into builder input.
func (c PlanConfig) Plan() rrc.Plan {
	var plan rrc.Plan
	if c.CellSelection != nil {
		q := c.CellSelection.QRxLevMin
		plan.QRxLevMin = &q
	}
	plan.PLMNInfos = make([][]rrc.PLMNSpec, 0, len(c.PLMNInfo))
	for _, info := range c.PLMNInfo {
		ids := make([]rrc.PLMNSpec, 0, len(info.Identity))
		for _, id := range info.Identity {
			ids = append(ids, rrc.PLMNSpec{MCC: id.MCC, MNC: id.MNC})
		}
		plan.PLMNInfos = append(plan.PLMNInfos, ids)
	}
	return plan
}
