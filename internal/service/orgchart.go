package service

import (
	"github.com/google/uuid"

	"github.com/pribylovaa/school-site/internal/models"
)

// buildOrgChart связывает сотрудников по ReportsTo, сохраняя входной порядок среди соседей.
// Сотрудники с неизвестным руководителем или на цикле подчинения становятся корнями.
func buildOrgChart(members []models.StaffMember) []*models.OrgNode {
	nodes := make(map[uuid.UUID]*models.OrgNode, len(members))
	for i := range members {
		nodes[members[i].ID] = &models.OrgNode{StaffMember: members[i]}
	}

	parentOf := func(m *models.StaffMember) (*models.OrgNode, bool) {
		if m.ReportsTo == nil || *m.ReportsTo == m.ID {
			return nil, false
		}
		p, ok := nodes[*m.ReportsTo]
		return p, ok
	}

	roots := make([]*models.OrgNode, 0)
	for i := range members {
		m := &members[i]
		node := nodes[m.ID]

		parent, ok := parentOf(m)
		if !ok || onCycle(m.ID, nodes) {
			roots = append(roots, node)
			continue
		}

		parent.Reports = append(parent.Reports, node)
	}

	return roots
}

// onCycle сообщает, возвращает ли цепочка ReportsTo от id обратно в id.
func onCycle(id uuid.UUID, nodes map[uuid.UUID]*models.OrgNode) bool {
	seen := make(map[uuid.UUID]struct{})
	cur := id

	for {
		n, ok := nodes[cur]
		if !ok || n.ReportsTo == nil {
			return false
		}

		next := *n.ReportsTo
		if next == id {
			return true
		}

		if _, dup := seen[next]; dup {
			// Цикл выше по цепочке, в который id не входит.
			return false
		}
		seen[next] = struct{}{}
		cur = next
	}
}
