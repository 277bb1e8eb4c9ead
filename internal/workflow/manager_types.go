package workflow

import (
	"log/slog"

	"stockmate/internal/catalog"
	"stockmate/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Analyzer  stage.Handler
	Generator stage.Handler
	Curator   stage.Handler
	Embedder  stage.Handler
	Exporter  stage.Handler
	Uploader  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      catalog.Status
	processingStatus catalog.Status
	doneStatus       catalog.Status
}

type laneKind string

const (
	laneForeground laneKind = "foreground"
	laneBackground laneKind = "background"
)

type laneState struct {
	kind                 laneKind
	name                 string
	stages               []pipelineStage
	statusOrder          []catalog.Status
	stageByStart         map[catalog.Status]pipelineStage
	processingStatuses   []catalog.Status
	logger               *slog.Logger
	notificationsEnabled bool
	runReclaimer         bool
}

func (l *laneState) finalize() {
	if l == nil {
		return
	}
	l.stageByStart = make(map[catalog.Status]pipelineStage, len(l.stages))
	l.statusOrder = make([]catalog.Status, 0, len(l.stages))
	seenProcessing := make(map[catalog.Status]struct{})
	for _, stg := range l.stages {
		l.stageByStart[stg.startStatus] = stg
		l.statusOrder = append(l.statusOrder, stg.startStatus)
		if stg.processingStatus != "" {
			if _, ok := seenProcessing[stg.processingStatus]; !ok {
				l.processingStatuses = append(l.processingStatuses, stg.processingStatus)
				seenProcessing[stg.processingStatus] = struct{}{}
			}
		}
	}
}

func (l *laneState) stageForStatus(status catalog.Status) (pipelineStage, bool) {
	if l == nil {
		return pipelineStage{}, false
	}
	stg, ok := l.stageByStart[status]
	return stg, ok
}
