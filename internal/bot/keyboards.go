package bot

import (
	"git.home.luguber.info/inful/homebot/internal/config"
	"git.home.luguber.info/inful/homebot/internal/feedlog"
)

// mainKeyboardRows is the top-level menu layout.
func mainKeyboardRows() [][]string {
	return [][]string{
		{btnHome, btnAway},
		{btnWhoHome, btnCatsStatus},
		{btnCatsMenu},
	}
}

// catsKeyboardRows builds the feeding submenu from the roster: one row per
// pet with wet and dry buttons, dry only for ineligible pets, then Back.
func catsKeyboardRows(roster []config.Pet) [][]string {
	rows := make([][]string, 0, len(roster)+1)
	for _, pet := range roster {
		if pet.WetEligible {
			rows = append(rows, []string{
				feedButtonText(pet.Label, feedlog.FoodWet),
				feedButtonText(pet.Label, feedlog.FoodDry),
			})
		} else {
			rows = append(rows, []string{feedButtonText(pet.Label, feedlog.FoodDry)})
		}
	}
	rows = append(rows, []string{btnBack})
	return rows
}
