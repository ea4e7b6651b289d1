package seed

// Stage is one step of the seeding pipeline (§4.12: "documents -> concepts
// -> summaries -> categories -> complete").
type Stage string

const (
	StageDocuments  Stage = "documents"
	StageConcepts   Stage = "concepts"
	StageSummaries  Stage = "summaries"
	StageCategories Stage = "categories"
	StageComplete   Stage = "complete"
)

// stageOrder is the fixed sequence a resumed run advances through.
var stageOrder = []Stage{StageDocuments, StageConcepts, StageSummaries, StageCategories, StageComplete}

// NextStage returns the stage following s, or StageComplete if s is
// already the last stage or unrecognized.
func NextStage(s Stage) Stage {
	for i, stage := range stageOrder {
		if stage == s && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return StageComplete
}

// IsBefore reports whether a occurs strictly before b in the stage order.
// An unrecognized stage sorts after every known stage.
func IsBefore(a, b Stage) bool {
	ai, bi := indexOf(a), indexOf(b)
	if ai < 0 {
		return false
	}
	if bi < 0 {
		return true
	}
	return ai < bi
}

func indexOf(s Stage) int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}
