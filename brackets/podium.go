package brackets

import "github.com/Dosada05/tournament-client/models"

// Podium is the final standing once the final (and bronze match) are decided.
type Podium struct {
	Champion *models.Competitor `json:"champion,omitempty"`
	RunnerUp *models.Competitor `json:"runner_up,omitempty"`
	Third    *models.Competitor `json:"third,omitempty"`
}

func (p Podium) Decided() bool { return p.Champion != nil }

// FinalResult reads the podium from the FINAL and BRONZE matches.
func FinalResult(matches []models.Match) Podium {
	var p Podium
	for _, m := range matches {
		if !m.HasWinner() || !m.Playable() {
			continue
		}
		winner, loser := split(m)
		switch m.Round {
		case models.RoundFinal:
			p.Champion, p.RunnerUp = winner, loser
		case models.RoundBronze:
			p.Third = winner
		}
	}
	return p
}

func split(m models.Match) (winner, loser *models.Competitor) {
	a, b := *m.CompetitorA, *m.CompetitorB
	if a.ID == m.WinnerID {
		return &a, &b
	}
	return &b, &a
}
