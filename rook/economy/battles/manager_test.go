package battles

import (
	"testing"

	"github.com/rookgg/rook/rook/database/models"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		winnerID int64
		viewerID int64
		want     string
	}{
		{name: "viewer won", status: models.BattleCompleted, winnerID: 1, viewerID: 1, want: "won"},
		{name: "viewer lost", status: models.BattleCompleted, winnerID: 2, viewerID: 1, want: "lost"},
		{name: "active battle", status: models.BattleActive, viewerID: 1, want: "you are WINNING (review pending)"},
		{name: "pending battle", status: models.BattlePending, viewerID: 1, want: "waiting for challenger"},
		{name: "unknown passes through", status: "cancelled", viewerID: 1, want: "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLabel(tt.status, tt.winnerID, tt.viewerID); got != tt.want {
				t.Errorf("statusLabel(%q, %d, %d) = %q, want %q",
					tt.status, tt.winnerID, tt.viewerID, got, tt.want)
			}
		})
	}
}
