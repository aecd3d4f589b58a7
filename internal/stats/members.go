package stats

import "github.com/magabrotheeeer/church-dashboard/internal/models"

// Members — изменение численности общины.
type Members struct {
	ChangePercent float64 // один знак после запятой
	NewMembers    int     // может быть отрицательным
}

// MemberChange сравнивает текущее и прошлое число членов общины.
func MemberChange(mc models.MemberCount) Members {
	return Members{
		ChangePercent: changePercent1(mc.CurrentTotal, mc.PreviousTotal),
		NewMembers:    mc.CurrentTotal - mc.PreviousTotal,
	}
}
