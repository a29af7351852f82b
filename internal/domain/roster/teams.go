package roster

import "github.com/okian/kickoff/internal/domain/model"

// Built-in team ids.
const (
	HomeTeamID = "rb_leipzig"
	AwayTeamID = "frankfurt"
)

func player(id, name string, number int, x, y, r float64, role model.Role) model.Player {
	pos := model.Position{X: x, Y: y}
	return model.Player{ID: id, Name: name, Number: number, Role: role, Position: pos, Base: pos, Rating: r}
}

// Default returns RB Leipzig (home) against Eintracht Frankfurt (away).
func Default() Fixture {
	return Fixture{
		Home: model.Team{
			ID:             HomeTeamID,
			Name:           "RB Leipzig",
			Abbreviation:   "RBL",
			Color:          "#FFFFFF",
			SecondaryColor: "#DD0033",
			Formation:      "4-2-2-2",
			Coach:          "Marco Rose",
			Value:          "€515.00M",
			Players: []model.Player{
				player("h1", "Gulácsi", 1, 8, 50, 7.2, model.RoleGoalkeeper),
				player("h2", "Henrichs", 39, 25, 15, 6.9, model.RoleDefender),
				player("h3", "Orbán", 4, 22, 38, 7.3, model.RoleDefender),
				player("h4", "Lukeba", 23, 22, 62, 7.5, model.RoleDefender),
				player("h5", "Raum", 22, 25, 85, 7.1, model.RoleDefender),
				player("h6", "Haidara", 8, 38, 35, 7.0, model.RoleMidfielder),
				player("h7", "Seiwald", 13, 38, 65, 6.8, model.RoleMidfielder),
				player("h8", "Baumgartner", 14, 55, 20, 7.0, model.RoleMidfielder),
				player("h9", "Xavi", 20, 55, 80, 8.1, model.RoleMidfielder),
				player("h10", "Openda", 17, 70, 40, 7.8, model.RoleForward),
				player("h11", "Šeško", 30, 70, 60, 7.6, model.RoleForward),
			},
		},
		Away: model.Team{
			ID:             AwayTeamID,
			Name:           "Eintracht Frankfurt",
			Abbreviation:   "EFF",
			Color:          "#000000",
			SecondaryColor: "#E1000F",
			Formation:      "3-4-2-1",
			Coach:          "Dino Toppmöller",
			Value:          "€285.00M",
			Players: []model.Player{
				player("a1", "Trapp", 1, 92, 50, 7.4, model.RoleGoalkeeper),
				player("a2", "Tuta", 35, 82, 25, 6.9, model.RoleDefender),
				player("a3", "Koch", 4, 82, 50, 7.2, model.RoleDefender),
				player("a4", "Theate", 3, 82, 75, 7.0, model.RoleDefender),
				player("a5", "Kristensen", 13, 65, 10, 6.8, model.RoleMidfielder),
				player("a6", "Skhiri", 15, 65, 40, 7.1, model.RoleMidfielder),
				player("a7", "Larsson", 16, 65, 60, 7.3, model.RoleMidfielder),
				player("a8", "Nkounkou", 29, 65, 90, 6.7, model.RoleMidfielder),
				player("a9", "Marmoush", 7, 50, 30, 8.2, model.RoleForward),
				player("a10", "Götze", 27, 50, 70, 7.0, model.RoleForward),
				player("a11", "Ekitiké", 11, 45, 50, 7.5, model.RoleForward),
			},
		},
	}
}
