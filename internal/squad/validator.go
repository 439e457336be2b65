package squad

import (
	"context"
	"fmt"
	"strings"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// Pick is one player in a submitted squad.
type Pick struct {
	PlayerID      uint
	IsStarter     bool
	IsCaptain     bool
	IsViceCaptain bool
}

type Validator struct {
	rules rules.Rules
}

func NewValidator(r rules.Rules) *Validator {
	return &Validator{rules: r}
}

// ValidateSelection checks a full squad submission. The first failing rule
// is reported, in order: size, players, team limit, position quotas,
// starters, captaincy. The resolved players are returned keyed by id.
func (v *Validator) ValidateSelection(ctx context.Context, roster storage.RosterStore, picks []Pick) (map[uint]models.Player, error) {
	if len(picks) != v.rules.SquadSize {
		return nil, apperror.Validation(apperror.CodeInvalidSquadSize,
			"Squad must contain exactly %d players (%d starters and %d substitutes)",
			v.rules.SquadSize, v.rules.Starters, v.rules.SquadSize-v.rules.Starters)
	}

	ids := make([]uint, len(picks))
	seen := make(map[uint]bool, len(picks))
	duplicate := false
	for i, p := range picks {
		ids[i] = p.PlayerID
		if seen[p.PlayerID] {
			duplicate = true
		}
		seen[p.PlayerID] = true
	}
	players, err := roster.ListPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve players: %w", err)
	}
	if duplicate || len(players) != len(picks) {
		return nil, apperror.Validation(apperror.CodeInvalidPlayers, "Invalid player IDs or duplicates provided")
	}

	if err := v.CheckComposition(ctx, roster, players); err != nil {
		return nil, err
	}

	starters, captains, vices := 0, 0, 0
	for _, p := range picks {
		if p.IsStarter {
			starters++
		}
		if p.IsCaptain {
			captains++
		}
		if p.IsViceCaptain {
			vices++
		}
	}
	if starters != v.rules.Starters {
		return nil, apperror.Validation(apperror.CodeStarterCount, "There must be exactly %d starters", v.rules.Starters)
	}
	if captains > 1 || vices > 1 {
		return nil, apperror.Validation(apperror.CodeCaptaincy, "Captain and vice-captain are optional but must be at most one each")
	}

	byID := make(map[uint]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

// CheckComposition enforces the per-team cap and exact position quotas on
// a set of players.
func (v *Validator) CheckComposition(ctx context.Context, roster storage.RosterStore, players []models.Player) error {
	teamCounts := make(map[uint]int)
	posCounts := make(map[models.PositionID]int)
	for _, p := range players {
		teamCounts[p.TeamID]++
		posCounts[p.PositionID]++
		if teamCounts[p.TeamID] > v.rules.MaxPlayersPerTeam {
			name := fmt.Sprintf("%d", p.TeamID)
			if team, err := roster.GetTeam(ctx, p.TeamID); err == nil && team != nil {
				name = team.Name
			}
			return apperror.Validation(apperror.CodeTeamLimitExceeded,
				"No more than %d players from the same team. Team %s has %d players",
				v.rules.MaxPlayersPerTeam, name, teamCounts[p.TeamID]).
				WithDetails("team_id", p.TeamID)
		}
	}

	var missing []string
	for _, pos := range models.Positions {
		if have, want := posCounts[pos], v.rules.Quotas[pos]; have != want {
			missing = append(missing, fmt.Sprintf("%s: %d/%d", pos.Name(), have, want))
		}
	}
	if len(missing) > 0 {
		return apperror.Validation(apperror.CodePositionQuota,
			"Position quotas not satisfied. Required: %s", strings.Join(missing, ", "))
	}
	return nil
}

// checkFormation enforces the starter count and per-position starter range.
func (v *Validator) checkFormation(starters map[models.PositionID]int) error {
	total := 0
	for _, n := range starters {
		total += n
	}
	if total != v.rules.Starters {
		return apperror.Validation(apperror.CodeFormation,
			"Invalid formation after substitution. Expected %d starters, got %d", v.rules.Starters, total)
	}

	var few, many []string
	for _, pos := range models.Positions {
		have, lo, hi := starters[pos], v.rules.FormationMin[pos], v.rules.FormationMax(pos)
		switch {
		case have < lo:
			few = append(few, fmt.Sprintf("%s: have %d, need %d", pos.Name(), have, lo))
		case have > hi:
			many = append(many, fmt.Sprintf("%s: have %d, max %d", pos.Name(), have, hi))
		}
	}
	if len(few) > 0 {
		return apperror.Validation(apperror.CodeFormation,
			"Formation invalid after substitution - too few: %s", strings.Join(few, ", "))
	}
	if len(many) > 0 {
		return apperror.Validation(apperror.CodeFormation,
			"Formation invalid after substitution - too many: %s", strings.Join(many, ", "))
	}
	return nil
}
