package domain

import "github.com/hperssn/buildcalc/internal/catalog"

type Stage string

const (
	StageIdle               Stage = "idle"
	StageAwaitingArea       Stage = "awaiting_area"
	StageChoosingFoundation Stage = "choosing_foundation"
	StageChoosingWalls      Stage = "choosing_walls"
	StageChoosingFloors     Stage = "choosing_floors"
	StageChoosingRoof       Stage = "choosing_roof"
	StageChoosingExtras     Stage = "choosing_extras"
	StageShowingResult      Stage = "showing_result"

	StageAdminIdle            Stage = "admin_idle"
	StageAdminChoosingSection Stage = "admin_choosing_section"
	StageAdminChoosingItem    Stage = "admin_choosing_item"
	StageAdminItemMenu        Stage = "admin_item_menu"
	StageAdminCoefficientMenu Stage = "admin_coefficient_menu"
	StageAdminWaitingValue    Stage = "admin_waiting_value"
	StageAdminImporting       Stage = "admin_importing"
)

var choosingStages = map[catalog.Section]Stage{
	catalog.SectionFoundation: StageChoosingFoundation,
	catalog.SectionWalls:      StageChoosingWalls,
	catalog.SectionFloors:     StageChoosingFloors,
	catalog.SectionRoof:       StageChoosingRoof,
	catalog.SectionExtras:     StageChoosingExtras,
}

// ChoosingStage returns the stage in which a section is offered.
func ChoosingStage(s catalog.Section) Stage {
	return choosingStages[s]
}

// Section reports which section a choosing stage offers.
func (s Stage) Section() (catalog.Section, bool) {
	for sec, st := range choosingStages {
		if st == s {
			return sec, true
		}
	}
	return "", false
}

func (s Stage) IsChoosing() bool {
	_, ok := s.Section()
	return ok
}

func (s Stage) IsAdmin() bool {
	switch s {
	case StageAdminIdle, StageAdminChoosingSection, StageAdminChoosingItem,
		StageAdminItemMenu, StageAdminCoefficientMenu, StageAdminWaitingValue,
		StageAdminImporting:
		return true
	}
	return false
}
