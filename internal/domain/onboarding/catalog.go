package onboarding

import (
	"fmt"
	"sort"
)

type moduleTemplate struct {
	title       string
	description string
	duration    int
	maxScore    float64
}

type positionInfo struct {
	name    string
	modules []moduleTemplate
}

var positionOrder = []Position{PositionServer, PositionCookHelper}

var positions = map[Position]positionInfo{
	PositionServer: {
		name: "Server",
		modules: []moduleTemplate{
			{"Order-taking vocabulary", "Basic English vocabulary for taking orders", 7, 10},
			{"Menu knowledge", "Memorise at least 10 signature dishes", 10, 10},
			{"Table setting", "Laying tables and service equipment", 5, 10},
			{"Plate service technique", "Serving dishes correctly and safely", 7, 10},
			{"Guest communication", "Communication and customer service techniques", 5, 10},
			{"Table management", "Allocating and managing guest tables", 5, 10},
			{"Taking payment", "Accepting payment and issuing receipts", 3, 10},
			{"Cleaning", "Keeping the work area clean", 3, 10},
			{"Complaint handling", "Responding to guest complaints", 5, 10},
			{"Teamwork", "Working alongside colleagues", 5, 10},
		},
	},
	PositionCookHelper: {
		name: "Cook Helper",
		modules: []moduleTemplate{
			{"Ingredient selection", "Choosing quality ingredients", 7, 10},
			{"Ingredient preparation", "Preparing and trimming ingredients", 10, 10},
			{"Plate inspection", "Checking dishes before they leave the pass", 5, 10},
			{"Kitchen equipment", "Using kitchen equipment safely", 7, 10},
			{"Food storage", "Storing food correctly", 5, 10},
			{"Kitchen cleaning", "Cleaning the kitchen area", 5, 10},
			{"Waste handling", "Sorting and disposing of kitchen waste", 3, 10},
			{"Kitchen safety", "Safety rules for kitchen work", 5, 10},
			{"Working under pressure", "Managing ticket times during peak service", 7, 10},
			{"Team communication", "Communicating with the chef and kitchen team", 5, 10},
		},
	},
}

type PositionSummary struct {
	Position    Position `json:"position"`
	Name        string   `json:"name"`
	ModuleCount int      `json:"moduleCount"`
}

// Positions lists the positions that have a curriculum.
func Positions() []PositionSummary {
	out := make([]PositionSummary, 0, len(positionOrder))
	for _, position := range positionOrder {
		info := positions[position]
		out = append(out, PositionSummary{Position: position, Name: info.name, ModuleCount: len(info.modules)})
	}
	return out
}

func PositionName(position Position) string {
	if info, ok := positions[position]; ok {
		return info.name
	}
	return string(position)
}

// CatalogModules builds the static module catalog for every position.
// Module IDs are "<position>_<order>".
func CatalogModules() []TrainingModule {
	var modules []TrainingModule
	for _, position := range positionOrder {
		for i, tmpl := range positions[position].modules {
			modules = append(modules, TrainingModule{
				ID:          fmt.Sprintf("%s_%d", position, i+1),
				Position:    position,
				Title:       tmpl.title,
				Description: tmpl.description,
				Duration:    tmpl.duration,
				MaxScore:    tmpl.maxScore,
				Order:       i + 1,
			})
		}
	}
	return modules
}

func sortModules(modules []TrainingModule) {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})
}
